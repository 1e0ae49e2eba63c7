package event

import "context"

type EventService interface {
	ListEvents(ctx context.Context, filter EventFilter) ([]EventResponse, error)
	GetEvent(ctx context.Context, id string) (EventResponse, error)
	CreateEvent(ctx context.Context, req CreateEventRequest) (EventResponse, error)
	UpdateEvent(ctx context.Context, id string, req UpdateEventRequest) (EventResponse, error)
	DeleteEvent(ctx context.Context, id string) error
}
