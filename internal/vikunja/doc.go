// Package vikunja provides a client for the Vikunja task-management API.
//
// This package wraps the Vikunja REST API (api/v1) and provides
// functionality for:
//   - Listing projects and their tasks (with pagination)
//   - Managing tasks (get, create, update, delete)
//
// Authentication uses a static Vikunja API token sent as a Bearer token,
// typically provided through the VIKUNJA_URL and VIKUNJA_TOKEN environment
// variables.
//
// The client deliberately does not forward Vikunja's own filter parameter:
// the upstream implementation applies it unreliably, so callers fetch tasks
// unfiltered and evaluate filters locally with the filter package.
//
// # Example Usage
//
//	client, err := vikunja.NewClient("https://try.vikunja.io", token)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tasks, err := client.ListTasks(ctx, projectID)
//	if err != nil {
//	    log.Fatal(err)
//	}
package vikunja
