package vikunja

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	apiPrefix = "/api/v1"

	// defaultPerPage is the page size requested when listing tasks. Vikunja
	// reports the total page count in a response header.
	defaultPerPage = 50

	defaultTimeout = 30 * time.Second

	paginationHeader = "x-pagination-total-pages"
)

// Client talks to a single Vikunja instance over its REST API using a
// static API token. It only fetches and mutates tasks; filtering is done
// client-side by the filter package because the upstream filter parameter
// is unreliable.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	perPage int
}

// NewClient creates a client for the Vikunja instance at baseURL. The
// token is sent as a Bearer token on every request.
func NewClient(baseURL, token string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("vikunja base URL is required")
	}
	if token == "" {
		return nil, fmt.Errorf("vikunja API token is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid vikunja base URL %q: %w", baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid vikunja base URL %q: scheme must be http or https", baseURL)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: defaultTimeout},
		perPage: defaultPerPage,
	}, nil
}

// BaseURL returns the configured instance URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError is an error response from the Vikunja API.
type APIError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("vikunja API error: %s (status %d)", e.Message, e.StatusCode)
}

// ListProjects lists all projects visible to the token's user.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if _, err := c.do(ctx, http.MethodGet, "/projects", nil, nil, &projects); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// ListTasks lists every task in a project, following pagination until the
// last page.
func (c *Client) ListTasks(ctx context.Context, projectID int64) ([]Task, error) {
	var tasks []Task
	for page := 1; ; page++ {
		query := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(c.perPage)},
		}

		var batch []Task
		header, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d/tasks", projectID), query, nil, &batch)
		if err != nil {
			return nil, fmt.Errorf("failed to list tasks for project %d: %w", projectID, err)
		}
		tasks = append(tasks, batch...)

		totalPages, _ := strconv.Atoi(header.Get(paginationHeader))
		if totalPages > 0 {
			if page >= totalPages {
				break
			}
			continue
		}
		// No pagination header: a short page means we are done.
		if len(batch) < c.perPage {
			break
		}
	}
	return tasks, nil
}

// GetTask retrieves a single task by id.
func (c *Client) GetTask(ctx context.Context, taskID int64) (*Task, error) {
	var task Task
	if _, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%d", taskID), nil, nil, &task); err != nil {
		return nil, fmt.Errorf("failed to get task %d: %w", taskID, err)
	}
	return &task, nil
}

// CreateTask creates a task in a project. Vikunja uses PUT for creation.
func (c *Client) CreateTask(ctx context.Context, projectID int64, input TaskInput) (*Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}

	var task Task
	if _, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/projects/%d/tasks", projectID), nil, input.payload(), &task); err != nil {
		return nil, fmt.Errorf("failed to create task in project %d: %w", projectID, err)
	}
	return &task, nil
}

// UpdateTask applies the set fields of input to an existing task.
func (c *Client) UpdateTask(ctx context.Context, taskID int64, input TaskInput) (*Task, error) {
	var task Task
	if _, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/tasks/%d", taskID), nil, input.payload(), &task); err != nil {
		return nil, fmt.Errorf("failed to update task %d: %w", taskID, err)
	}
	return &task, nil
}

// DeleteTask deletes a task by id.
func (c *Client) DeleteTask(ctx context.Context, taskID int64) error {
	if _, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", taskID), nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete task %d: %w", taskID, err)
	}
	return nil
}

// do performs one API request, decoding a JSON response into out when out
// is non-nil. The response header is returned for pagination.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (http.Header, error) {
	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apiErrorFromResponse(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
		}
	}
	return resp.Header, nil
}

// apiErrorFromResponse extracts the upstream error message, falling back to
// the HTTP status text.
func apiErrorFromResponse(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil && body.Message != "" {
		apiErr.Message = body.Message
	}
	return apiErr
}
