package notification

import (
	"context"

	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/realtime"
)

// Service delivers account decisions to the affected user.
type Service interface {
	// NotifyDecision publishes to the user's room and queues the decision email.
	// Delivery is best effort and never fails the caller's operation.
	NotifyDecision(ctx context.Context, u user.User, reason *string)

	// Subscribe joins the user's room until cleanup is called.
	Subscribe(userID string) (<-chan realtime.Event, func())
}
