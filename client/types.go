package client

import "time"

// User mirrors the sanitized user payload returned by the auth
// endpoints. The password hash never crosses the wire.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse is the body of a successful register or login.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Task mirrors the server-side task resource.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	UserID      string     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskStats is the dashboard aggregate. Priorities without tasks are
// absent from ByPriority.
type TaskStats struct {
	Total      int            `json:"total"`
	Completed  int            `json:"completed"`
	Pending    int            `json:"pending"`
	ByPriority map[string]int `json:"byPriority"`
}

// ListOptions narrows a task listing; empty or "all" values apply no
// filter.
type ListOptions struct {
	Status   string
	Priority string
	Search   string
}

// CreateTaskData carries the fields for a new task. Title is the only
// required field; the server fills in defaults for the rest.
type CreateTaskData struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
}

// UpdateTaskData is a partial patch; nil fields are left untouched by
// the server.
type UpdateTaskData struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}
