package user

import (
	"context"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	LinkGoogleAccount(ctx context.Context, googleID string, email string) (User, error)
	VerifyEmail(ctx context.Context, userID string) error
	UpdateStatus(ctx context.Context, userID string, status Status) (User, error)
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
}
