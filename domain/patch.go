package domain

import "strings"

// TaskDraft carries the fields needed to create a task. The planification
// service assigns the ID and creation always starts at 0% completion.
type TaskDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	DueDate     Date     `json:"due_date"`
	AssigneeID  string   `json:"assignee_id,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	Sprint      string   `json:"sprint,omitempty"`
	FileURL     string   `json:"file_url,omitempty"`
	FileName    string   `json:"file_name,omitempty"`
}

// Validate checks the draft before it is sent anywhere.
func (d TaskDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if d.DueDate.IsZero() {
		return &ValidationError{Field: "due_date", Reason: "must be a calendar date"}
	}
	if d.Priority != "" && !d.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: "must be low, medium or high"}
	}
	return nil
}

// TaskPatch is a partial update. Nil fields leave the current value
// untouched, so an edit never silently resets what it did not mention.
type TaskPatch struct {
	Title             *string   `json:"title,omitempty"`
	Description       *string   `json:"description,omitempty"`
	DueDate           *Date     `json:"due_date,omitempty"`
	AssigneeID        *string   `json:"assignee_id,omitempty"`
	PercentCompletion *int      `json:"percent_completion,omitempty"`
	Priority          *Priority `json:"priority,omitempty"`
	Sprint            *string   `json:"sprint,omitempty"`
	FileURL           *string   `json:"file_url,omitempty"`
	FileName          *string   `json:"file_name,omitempty"`
}

// IsZero reports whether the patch changes nothing.
func (p TaskPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.DueDate == nil &&
		p.AssigneeID == nil && p.PercentCompletion == nil && p.Priority == nil &&
		p.Sprint == nil && p.FileURL == nil && p.FileName == nil
}

// Validate checks the populated fields of the patch.
func (p TaskPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if p.DueDate != nil && p.DueDate.IsZero() {
		return &ValidationError{Field: "due_date", Reason: "must be a calendar date"}
	}
	if p.PercentCompletion != nil && (*p.PercentCompletion < 0 || *p.PercentCompletion > 100) {
		return &ValidationError{Field: "percent_completion", Reason: "must be between 0 and 100"}
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: "must be low, medium or high"}
	}
	return nil
}

// ApplyTo returns a copy of t with the populated fields of the patch applied.
func (p TaskPatch) ApplyTo(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.AssigneeID != nil {
		t.AssigneeID = *p.AssigneeID
	}
	if p.PercentCompletion != nil {
		t.PercentCompletion = *p.PercentCompletion
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Sprint != nil {
		t.Sprint = *p.Sprint
	}
	if p.FileURL != nil {
		t.FileURL = *p.FileURL
	}
	if p.FileName != nil {
		t.FileName = *p.FileName
	}
	return t
}
