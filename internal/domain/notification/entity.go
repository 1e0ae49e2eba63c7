package notification

import "time"

// EventType names the events carried on a user's room.
type EventType string

const (
	TypeApproval  EventType = "approval"
	TypeRejection EventType = "rejection"
)

// Decision is the payload of approval and rejection events.
type Decision struct {
	UserID    string    `json:"user_id"`
	Status    string    `json:"status"`
	Reason    *string   `json:"reason,omitempty"`
	DecidedAt time.Time `json:"decided_at"`
}
