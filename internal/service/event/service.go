package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/officecorner/officecorner-backend-go/internal/domain/event"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt"
	"github.com/officecorner/officecorner-backend-go/internal/repository/postgresql"
)

type EventServiceImpl struct {
	tx     postgresql.TxManager
	events event.EventRepository
}

func NewEventService(tx postgresql.TxManager, eventRepo event.EventRepository) event.EventService {
	return &EventServiceImpl{tx: tx, events: eventRepo}
}

func canManage(claims jwt.Claims, e event.Event) bool {
	return claims.IsAdmin() || e.CreatedBy == claims.UserID
}

func (s *EventServiceImpl) ListEvents(ctx context.Context, filter event.EventFilter) ([]event.EventResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	events, err := s.events.ListRange(ctx, filter.FromTime, filter.ToTime)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	resp := make([]event.EventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, event.NewEventResponse(e))
	}
	return resp, nil
}

func (s *EventServiceImpl) GetEvent(ctx context.Context, id string) (event.EventResponse, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		return event.EventResponse{}, err
	}
	return event.NewEventResponse(e), nil
}

func (s *EventServiceImpl) CreateEvent(ctx context.Context, req event.CreateEventRequest) (event.EventResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return event.EventResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return event.EventResponse{}, err
	}

	created, err := s.events.Create(ctx, req.ToEvent(claims.UserID))
	if err != nil {
		return event.EventResponse{}, fmt.Errorf("failed to create event: %w", err)
	}
	return event.NewEventResponse(created), nil
}

func (s *EventServiceImpl) UpdateEvent(ctx context.Context, id string, req event.UpdateEventRequest) (event.EventResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return event.EventResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return event.EventResponse{}, err
	}

	var updated event.Event
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		current, err := s.events.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if !canManage(claims, current) {
			return event.ErrEventForbidden
		}

		next := req.Apply(current)
		// a partial update can move one end past the stored other end
		if next.EndsAt.Before(next.StartsAt) {
			return event.ErrInvalidRange
		}

		updated, err = s.events.Update(txCtx, next)
		if err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}
		return nil
	})
	if err != nil {
		return event.EventResponse{}, err
	}
	return event.NewEventResponse(updated), nil
}

func (s *EventServiceImpl) DeleteEvent(ctx context.Context, id string) error {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		current, err := s.events.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if !canManage(claims, current) {
			return event.ErrEventForbidden
		}
		if err := s.events.Delete(txCtx, id); err != nil {
			if errors.Is(err, event.ErrEventNotFound) {
				return err
			}
			return fmt.Errorf("failed to delete event: %w", err)
		}
		return nil
	})
}
