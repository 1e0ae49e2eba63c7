package auth

import (
	"context"

	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
)

type AuthService interface {
	Signup(ctx context.Context, req SignupRequest) (SignupResponse, error)
	VerifyOTP(ctx context.Context, req VerifyOTPRequest, session SessionTrackingRequest) (AuthResponse, error)
	ResendOTP(ctx context.Context, req ResendOTPRequest) (ResendOTPResponse, error)
	Login(ctx context.Context, req LoginRequest, session SessionTrackingRequest) (AuthResponse, error)
	LoginWithGoogle(ctx context.Context, code string, session SessionTrackingRequest) (AuthResponse, error)
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (AccessTokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context) (user.UserResponse, error)
}
