package event

import "time"

type Event struct {
	ID          string
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	AllDay      bool
	CreatedBy   string
	AttendeeIDs []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Overlaps reports whether the event intersects [from, to]; a zero bound is open.
func (e Event) Overlaps(from, to time.Time) bool {
	if !to.IsZero() && e.StartsAt.After(to) {
		return false
	}
	if !from.IsZero() && e.EndsAt.Before(from) {
		return false
	}
	return true
}
