package event

import (
	"time"

	"github.com/officecorner/officecorner-backend-go/internal/pkg/validator"
)

type CreateEventRequest struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=5000"`
	Location    string   `json:"location" validate:"max=255"`
	StartsAt    string   `json:"starts_at" validate:"required"`
	EndsAt      string   `json:"ends_at" validate:"required"`
	AllDay      bool     `json:"all_day"`
	AttendeeIDs []string `json:"attendee_ids" validate:"omitempty,max=200,dive,uuid"`

	startsAt time.Time
	endsAt   time.Time
}

func (r *CreateEventRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}

	var errs validator.ValidationErrors
	var ok bool
	if r.startsAt, ok = validator.IsValidDateTime(r.StartsAt); !ok {
		errs = append(errs, validator.ValidationError{Field: "starts_at", Message: "starts_at must be an RFC3339 timestamp"})
	}
	if r.endsAt, ok = validator.IsValidDateTime(r.EndsAt); !ok {
		errs = append(errs, validator.ValidationError{Field: "ends_at", Message: "ends_at must be an RFC3339 timestamp"})
	}
	if len(errs) > 0 {
		return errs
	}
	if r.endsAt.Before(r.startsAt) {
		return validator.ValidationErrors{{Field: "ends_at", Message: "ends_at must not be before starts_at"}}
	}
	return nil
}

// ToEvent must be called after a successful Validate.
func (r CreateEventRequest) ToEvent(createdBy string) Event {
	attendees := r.AttendeeIDs
	if attendees == nil {
		attendees = []string{}
	}
	return Event{
		Title:       r.Title,
		Description: r.Description,
		Location:    r.Location,
		StartsAt:    r.startsAt.UTC(),
		EndsAt:      r.endsAt.UTC(),
		AllDay:      r.AllDay,
		CreatedBy:   createdBy,
		AttendeeIDs: attendees,
	}
}

// UpdateEventRequest is a partial update; nil fields are left unchanged.
type UpdateEventRequest struct {
	Title       *string   `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	Location    *string   `json:"location,omitempty" validate:"omitempty,max=255"`
	StartsAt    *string   `json:"starts_at,omitempty"`
	EndsAt      *string   `json:"ends_at,omitempty"`
	AllDay      *bool     `json:"all_day,omitempty"`
	AttendeeIDs *[]string `json:"attendee_ids,omitempty" validate:"omitempty,max=200,dive,uuid"`
}

func (r *UpdateEventRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}

	var errs validator.ValidationErrors
	if r.StartsAt != nil {
		if _, ok := validator.IsValidDateTime(*r.StartsAt); !ok {
			errs = append(errs, validator.ValidationError{Field: "starts_at", Message: "starts_at must be an RFC3339 timestamp"})
		}
	}
	if r.EndsAt != nil {
		if _, ok := validator.IsValidDateTime(*r.EndsAt); !ok {
			errs = append(errs, validator.ValidationError{Field: "ends_at", Message: "ends_at must be an RFC3339 timestamp"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply merges the request into e. The range invariant is checked by the caller.
func (r UpdateEventRequest) Apply(e Event) Event {
	if r.Title != nil {
		e.Title = *r.Title
	}
	if r.Description != nil {
		e.Description = *r.Description
	}
	if r.Location != nil {
		e.Location = *r.Location
	}
	if r.StartsAt != nil {
		t, _ := validator.IsValidDateTime(*r.StartsAt)
		e.StartsAt = t.UTC()
	}
	if r.EndsAt != nil {
		t, _ := validator.IsValidDateTime(*r.EndsAt)
		e.EndsAt = t.UTC()
	}
	if r.AllDay != nil {
		e.AllDay = *r.AllDay
	}
	if r.AttendeeIDs != nil {
		e.AttendeeIDs = append([]string{}, *r.AttendeeIDs...)
	}
	return e
}

type EventFilter struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	FromTime time.Time `json:"-"`
	ToTime   time.Time `json:"-"`
}

// Validate accepts dates (YYYY-MM-DD) or RFC3339 timestamps. A date-only To covers the whole day.
func (f *EventFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.From != "" {
		if d, ok := validator.IsValidDate(f.From); ok {
			f.FromTime = d
		} else if t, ok := validator.IsValidDateTime(f.From); ok {
			f.FromTime = t
		} else {
			errs = append(errs, validator.ValidationError{Field: "from", Message: "from must be a date or RFC3339 timestamp"})
		}
	}
	if f.To != "" {
		if d, ok := validator.IsValidDate(f.To); ok {
			f.ToTime = d.Add(24*time.Hour - time.Nanosecond)
		} else if t, ok := validator.IsValidDateTime(f.To); ok {
			f.ToTime = t
		} else {
			errs = append(errs, validator.ValidationError{Field: "to", Message: "to must be a date or RFC3339 timestamp"})
		}
	}
	if len(errs) == 0 && !f.FromTime.IsZero() && !f.ToTime.IsZero() && f.ToTime.Before(f.FromTime) {
		errs = append(errs, validator.ValidationError{Field: "to", Message: "to must not be before from"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EventResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	StartsAt    string   `json:"starts_at"`
	EndsAt      string   `json:"ends_at"`
	AllDay      bool     `json:"all_day"`
	CreatedBy   string   `json:"created_by"`
	AttendeeIDs []string `json:"attendee_ids"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func NewEventResponse(e Event) EventResponse {
	attendees := e.AttendeeIDs
	if attendees == nil {
		attendees = []string{}
	}
	return EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartsAt:    e.StartsAt.Format(time.RFC3339),
		EndsAt:      e.EndsAt.Format(time.RFC3339),
		AllDay:      e.AllDay,
		CreatedBy:   e.CreatedBy,
		AttendeeIDs: attendees,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}
