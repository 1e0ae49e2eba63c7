package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/officecorner/officecorner-backend-go/internal/domain/notification"
	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jobs"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/realtime"
)

// Hub is the room registry behind the notification channel.
type Hub interface {
	realtime.Publisher
	Subscribe(userID string) (<-chan realtime.Event, func())
}

type NotificationServiceImpl struct {
	hub   Hub
	queue jobs.Enqueuer
	now   func() time.Time
}

func NewNotificationService(hub Hub, queue jobs.Enqueuer) notification.Service {
	return &NotificationServiceImpl{
		hub:   hub,
		queue: queue,
		now:   time.Now,
	}
}

// NotifyDecision implements notification.Service.
func (s *NotificationServiceImpl) NotifyDecision(ctx context.Context, u user.User, reason *string) {
	eventType := notification.TypeRejection
	if u.Status == user.StatusApproved {
		eventType = notification.TypeApproval
	}

	decidedAt := s.now().UTC()
	s.hub.Publish(u.ID, realtime.Event{
		Type: string(eventType),
		Data: notification.Decision{
			UserID:    u.ID,
			Status:    string(u.Status),
			Reason:    reason,
			DecidedAt: decidedAt,
		},
		At: decidedAt,
	})

	err := s.queue.EnqueueAccountDecision(ctx, jobs.AccountDecisionPayload{
		To:       u.Email,
		Name:     u.Name,
		Approved: u.Status == user.StatusApproved,
	})
	if err != nil {
		slog.Error("failed to queue account decision email", "user_id", u.ID, "error", err)
	}
}

// Subscribe implements notification.Service.
func (s *NotificationServiceImpl) Subscribe(userID string) (<-chan realtime.Event, func()) {
	return s.hub.Subscribe(userID)
}
