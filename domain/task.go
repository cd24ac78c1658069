package domain

// Priority is the urgency level carried by a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Column is a derived board bucket. Placement always follows a task's
// completion percentage; columns are never stored independently.
type Column string

const (
	ColumnTodo       Column = "to-do"
	ColumnInProgress Column = "in-progress"
	ColumnDone       Column = "done"
)

// Valid reports whether c names one of the three board columns.
func (c Column) Valid() bool {
	switch c {
	case ColumnTodo, ColumnInProgress, ColumnDone:
		return true
	}
	return false
}

// ValidationStatus is the externally managed review outcome for a task.
// It only means something once the task reaches 100% completion.
type ValidationStatus string

const (
	ValidationNotStarted ValidationStatus = "not_started"
	ValidationPending    ValidationStatus = "completed_pending_validation"
	ValidationValidated  ValidationStatus = "validated"
	ValidationRejected   ValidationStatus = "rejected"
)

// Task represents a single board item within one project.
type Task struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	Description       string           `json:"description,omitempty"`
	DueDate           Date             `json:"due_date"`
	AssigneeID        string           `json:"assignee_id,omitempty"`
	PercentCompletion int              `json:"percent_completion"`
	Priority          Priority         `json:"priority"`
	Sprint            string           `json:"sprint,omitempty"`
	FileURL           string           `json:"file_url,omitempty"`
	FileName          string           `json:"file_name,omitempty"`
	Validation        ValidationStatus `json:"validation_status,omitempty"`
}

// Role describes a member's function within a project.
type Role string

const (
	RoleFullStack Role = "FullStack"
	RoleBackEnd   Role = "BackEnd"
	RoleFrontEnd  Role = "FrontEnd"
	RoleDesigner  Role = "Designer"
)

// Member is a project participant as reported by the planification service.
type Member struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   Role   `json:"role"`
}
