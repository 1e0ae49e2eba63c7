package event

import (
	"context"
	"time"
)

type EventRepository interface {
	Create(ctx context.Context, e Event) (Event, error)
	GetByID(ctx context.Context, id string) (Event, error)
	Update(ctx context.Context, e Event) (Event, error)
	Delete(ctx context.Context, id string) error
	// ListRange returns events overlapping [from, to], ordered by start. Zero bounds are open.
	ListRange(ctx context.Context, from, to time.Time) ([]Event, error)
}
