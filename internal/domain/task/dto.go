package task

import (
	"time"

	"github.com/officecorner/officecorner-backend-go/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	AssigneeID  *string `json:"assignee_id,omitempty" validate:"omitempty,uuid"`
	Status      string  `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress done"`
	Priority    string  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (r *CreateTaskRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}
	if r.Status == "" {
		r.Status = string(StatusTodo)
	}
	if r.Priority == "" {
		r.Priority = string(PriorityMedium)
	}
	return nil
}

func (r CreateTaskRequest) ToTask(createdBy string) Task {
	return Task{
		Title:       r.Title,
		Description: r.Description,
		AssigneeID:  r.AssigneeID,
		CreatedBy:   createdBy,
		Status:      Status(r.Status),
		Priority:    Priority(r.Priority),
		DueDate:     parseDate(r.DueDate),
	}
}

// UpdateTaskRequest is a partial update; nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	AssigneeID  *string `json:"assignee_id,omitempty" validate:"omitempty,uuid"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress done"`
	Priority    *string `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

func (r *UpdateTaskRequest) Validate() error {
	return validator.Struct(r)
}

// StatusOnly reports whether the request touches nothing but the status.
func (r UpdateTaskRequest) StatusOnly() bool {
	return r.Title == nil && r.Description == nil && r.AssigneeID == nil &&
		r.Priority == nil && r.DueDate == nil
}

func (r UpdateTaskRequest) Apply(t Task) Task {
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.AssigneeID != nil {
		t.AssigneeID = r.AssigneeID
		t.AssigneeName = nil
	}
	if r.Status != nil {
		t.Status = Status(*r.Status)
	}
	if r.Priority != nil {
		t.Priority = Priority(*r.Priority)
	}
	if r.DueDate != nil {
		t.DueDate = parseDate(r.DueDate)
	}
	return t
}

func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	d, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &d
}

type TaskFilter struct {
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=todo in_progress done"`
	AssigneeID *string `json:"assignee_id,omitempty" validate:"omitempty,uuid"`

	// Pagination
	Page  int `json:"page" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=0,lte=100"`
}

func (f *TaskFilter) Validate() error {
	if err := validator.Struct(f); err != nil {
		return err
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	return nil
}

type TaskResponse struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	AssigneeID   *string `json:"assignee_id"`
	AssigneeName *string `json:"assignee_name,omitempty"`
	CreatedBy    string  `json:"created_by"`
	Status       string  `json:"status"`
	Priority     string  `json:"priority"`
	DueDate      *string `json:"due_date"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func NewTaskResponse(t Task) TaskResponse {
	resp := TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		AssigneeID:   t.AssigneeID,
		AssigneeName: t.AssigneeName,
		CreatedBy:    t.CreatedBy,
		Status:       string(t.Status),
		Priority:     string(t.Priority),
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(dateLayout)
		resp.DueDate = &d
	}
	return resp
}

type ListTaskResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Tasks      []TaskResponse `json:"tasks"`
}
