package vikunja

import "time"

// Task represents a Vikunja task. Zero time values mean the date is unset;
// Vikunja reports unset dates as "0001-01-01T00:00:00Z", which unmarshals
// to exactly that.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Done        bool      `json:"done"`
	DoneAt      time.Time `json:"done_at,omitempty"`
	Priority    int       `json:"priority"`
	PercentDone float64   `json:"percent_done"`
	DueDate     time.Time `json:"due_date,omitempty"`
	Assignees   []User    `json:"assignees,omitempty"`
	Labels      []Label   `json:"labels,omitempty"`
	ProjectID   int64     `json:"project_id"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

// AssigneeIDs returns the ids of all assigned users.
func (t *Task) AssigneeIDs() []int64 {
	ids := make([]int64, len(t.Assignees))
	for i, u := range t.Assignees {
		ids[i] = u.ID
	}
	return ids
}

// LabelIDs returns the ids of all attached labels.
func (t *Task) LabelIDs() []int64 {
	ids := make([]int64, len(t.Labels))
	for i, l := range t.Labels {
		ids[i] = l.ID
	}
	return ids
}

// User represents a Vikunja user as it appears on task assignees.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// Label represents a Vikunja label.
type Label struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	HexColor string `json:"hex_color,omitempty"`
}

// Project represents a Vikunja project.
type Project struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	IsArchived  bool   `json:"is_archived"`
}

// TaskInput carries the fields for creating or updating a task. Zero-valued
// fields are omitted from the request payload; Done is a pointer so "mark
// as not done" is distinguishable from "leave unchanged".
type TaskInput struct {
	Title       string
	Description string
	Priority    int
	PercentDone float64
	DueDate     time.Time
	Done        *bool
}

// payload converts the input into the JSON body for the upstream API,
// skipping unset fields.
func (in TaskInput) payload() map[string]any {
	body := make(map[string]any)
	if in.Title != "" {
		body["title"] = in.Title
	}
	if in.Description != "" {
		body["description"] = in.Description
	}
	if in.Priority != 0 {
		body["priority"] = in.Priority
	}
	if in.PercentDone != 0 {
		body["percent_done"] = in.PercentDone
	}
	if !in.DueDate.IsZero() {
		body["due_date"] = in.DueDate.Format(time.RFC3339)
	}
	if in.Done != nil {
		body["done"] = *in.Done
	}
	return body
}
