package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/officecorner/officecorner-backend-go/internal/domain/auth"
	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jobs"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/oauth"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/otp"
	"github.com/officecorner/officecorner-backend-go/internal/repository/postgresql"
	"golang.org/x/crypto/bcrypt"
)

// OTPStore issues and checks email verification codes.
type OTPStore interface {
	Issue(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) error
	CooldownRemaining(ctx context.Context, email string) (time.Duration, error)
	TTL() time.Duration
}

type AuthServiceImpl struct {
	tx     postgresql.TxManager
	users  user.UserRepository
	tokens auth.TokenRepository
	jwt    jwt.Service
	otp    OTPStore
	google oauth.GoogleService
	queue  jobs.Enqueuer
}

func NewAuthService(
	tx postgresql.TxManager,
	userRepository user.UserRepository,
	tokenRepository auth.TokenRepository,
	jwtService jwt.Service,
	otpStore OTPStore,
	googleService oauth.GoogleService,
	queue jobs.Enqueuer,
) auth.AuthService {
	return &AuthServiceImpl{
		tx:     tx,
		users:  userRepository,
		tokens: tokenRepository,
		jwt:    jwtService,
		otp:    otpStore,
		google: googleService,
		queue:  queue,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Signup implements auth.AuthService.
func (a *AuthServiceImpl) Signup(ctx context.Context, req auth.SignupRequest) (auth.SignupResponse, error) {
	_, err := a.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return auth.SignupResponse{}, auth.ErrEmailAlreadyExists
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return auth.SignupResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	hashedPassword, err := a.hashPassword(req.Password)
	if err != nil {
		return auth.SignupResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := a.users.Create(ctx, user.User{
		Email:         req.Email,
		Name:          req.Name,
		PasswordHash:  &hashedPassword,
		Role:          user.RoleEmployee,
		Status:        user.StatusPending,
		EmailVerified: false,
	})
	if err != nil {
		if errors.Is(err, user.ErrUserEmailExists) {
			return auth.SignupResponse{}, auth.ErrEmailAlreadyExists
		}
		return auth.SignupResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	// The account exists from here on; a failed send can be recovered with a resend.
	if err := a.sendOTP(ctx, newUser); err != nil {
		slog.Warn("signup otp not sent", "user_id", newUser.ID, "error", err)
	}

	cooldown, _ := a.otp.CooldownRemaining(ctx, newUser.Email)
	return auth.SignupResponse{
		User:              user.NewUserResponse(newUser),
		OTPExpiresIn:      int64(a.otp.TTL().Seconds()),
		ResendAvailableIn: int64(cooldown.Seconds()),
	}, nil
}

func (a *AuthServiceImpl) sendOTP(ctx context.Context, u user.User) error {
	code, err := a.otp.Issue(ctx, u.Email)
	if err != nil {
		if errors.Is(err, otp.ErrCooldown) {
			return auth.ErrOTPCooldown
		}
		return fmt.Errorf("failed to issue otp: %w", err)
	}

	err = a.queue.EnqueueSendOTP(ctx, jobs.SendOTPPayload{
		To:        u.Email,
		Name:      u.Name,
		Code:      code,
		ExpiresIn: a.otp.TTL(),
	})
	if err != nil {
		return fmt.Errorf("failed to queue otp email: %w", err)
	}
	return nil
}

// VerifyOTP implements auth.AuthService.
func (a *AuthServiceImpl) VerifyOTP(ctx context.Context, req auth.VerifyOTPRequest, session auth.SessionTrackingRequest) (auth.AuthResponse, error) {
	userData, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AuthResponse{}, auth.ErrOTPInvalid
		}
		return auth.AuthResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if userData.EmailVerified {
		return auth.AuthResponse{}, auth.ErrEmailAlreadyVerified
	}

	if err := a.otp.Verify(ctx, req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, otp.ErrNotFound):
			return auth.AuthResponse{}, auth.ErrOTPExpired
		case errors.Is(err, otp.ErrInvalid):
			return auth.AuthResponse{}, auth.ErrOTPInvalid
		case errors.Is(err, otp.ErrTooManyAttempts):
			return auth.AuthResponse{}, auth.ErrOTPAttemptsExceeded
		}
		return auth.AuthResponse{}, fmt.Errorf("failed to verify otp: %w", err)
	}

	var resp auth.AuthResponse
	err = a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := a.users.VerifyEmail(txCtx, userData.ID); err != nil {
			return fmt.Errorf("failed to mark email verified: %w", err)
		}
		userData.EmailVerified = true

		resp, err = a.issueSession(txCtx, userData, session)
		return err
	})
	if err != nil {
		return auth.AuthResponse{}, err
	}

	slog.Info("email verified", "user_id", userData.ID)
	return resp, nil
}

// ResendOTP implements auth.AuthService.
func (a *AuthServiceImpl) ResendOTP(ctx context.Context, req auth.ResendOTPRequest) (auth.ResendOTPResponse, error) {
	userData, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.ResendOTPResponse{}, auth.ErrUserNotFound
		}
		return auth.ResendOTPResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if userData.EmailVerified {
		return auth.ResendOTPResponse{}, auth.ErrEmailAlreadyVerified
	}

	if err := a.sendOTP(ctx, userData); err != nil {
		return auth.ResendOTPResponse{}, err
	}

	cooldown, _ := a.otp.CooldownRemaining(ctx, userData.Email)
	return auth.ResendOTPResponse{
		OTPExpiresIn:      int64(a.otp.TTL().Seconds()),
		ResendAvailableIn: int64(cooldown.Seconds()),
	}, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.AuthResponse, error) {
	userData, err := a.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AuthResponse{}, auth.ErrInvalidCredentials
		}
		return auth.AuthResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if userData.PasswordHash == nil {
		return auth.AuthResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.AuthResponse{}, auth.ErrInvalidCredentials
	}

	if !userData.EmailVerified {
		return auth.AuthResponse{}, auth.ErrEmailNotVerified
	}
	if userData.Status == user.StatusRejected {
		return auth.AuthResponse{}, auth.ErrAccountRejected
	}

	var resp auth.AuthResponse
	err = a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		resp, err = a.issueSession(txCtx, userData, session)
		return err
	})
	if err != nil {
		return auth.AuthResponse{}, err
	}
	return resp, nil
}

// LoginWithGoogle implements auth.AuthService.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, code string, session auth.SessionTrackingRequest) (auth.AuthResponse, error) {
	info, err := a.google.FetchUser(ctx, code)
	if err != nil {
		return auth.AuthResponse{}, fmt.Errorf("failed to fetch google user: %w", err)
	}
	if !info.VerifiedEmail {
		return auth.AuthResponse{}, auth.ErrOAuthEmailUnverified
	}

	var resp auth.AuthResponse
	err = a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		userData, err := a.users.GetByEmail(txCtx, info.Email)
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			provider := "google"
			userData, err = a.users.Create(txCtx, user.User{
				Email:           info.Email,
				Name:            info.Name,
				Role:            user.RoleEmployee,
				Status:          user.StatusPending,
				OAuthProvider:   &provider,
				OAuthProviderID: &info.GoogleID,
				EmailVerified:   true,
			})
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			slog.Info("user created from google sign-in", "user_id", userData.ID)
		case err != nil:
			return fmt.Errorf("failed to get user by email: %w", err)
		case userData.OAuthProviderID == nil:
			userData, err = a.users.LinkGoogleAccount(txCtx, info.GoogleID, userData.Email)
			if err != nil {
				return fmt.Errorf("failed to link google account: %w", err)
			}
		}

		if userData.Status == user.StatusRejected {
			return auth.ErrAccountRejected
		}

		resp, err = a.issueSession(txCtx, userData, session)
		return err
	})
	if err != nil {
		return auth.AuthResponse{}, err
	}
	return resp, nil
}

// RefreshToken implements auth.AuthService. The new access token carries the
// current approval status, so clients refresh after an approval event.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	token, err := jwtauth.VerifyToken(a.jwt.JWTAuth(), req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	tokenType, ok := token.Get("type")
	if !ok || tokenType != jwt.TokenTypeRefresh {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	userID, isRevoked, err := a.tokens.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if isRevoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	userData, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrUserNotFound
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	if userData.Status == user.StatusRejected {
		return auth.AccessTokenResponse{}, auth.ErrAccountRejected
	}

	var resp auth.AccessTokenResponse
	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.jwt.GenerateAccessToken(userData.ID, userData.Email, userData.Role, userData.Status)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return resp, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	return a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		_, isRevoked, err := a.tokens.IsRefreshTokenRevoked(txCtx, refreshToken)
		if err != nil {
			return fmt.Errorf("failed to check if refresh token is revoked: %w", err)
		}
		if isRevoked {
			return nil
		}
		if err := a.tokens.RevokeRefreshToken(txCtx, refreshToken); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		return nil
	})
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (user.UserResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, auth.ErrInvalidToken
	}

	userData, err := a.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.UserResponse{}, auth.ErrUserNotFound
		}
		return user.UserResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	return user.NewUserResponse(userData), nil
}

func (a *AuthServiceImpl) issueSession(ctx context.Context, u user.User, session auth.SessionTrackingRequest) (auth.AuthResponse, error) {
	var resp auth.AuthResponse
	var err error

	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.jwt.GenerateAccessToken(u.ID, u.Email, u.Role, u.Status)
	if err != nil {
		return auth.AuthResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	resp.RefreshToken, resp.RefreshTokenExpiresIn, err = a.jwt.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.AuthResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}
	if err := a.tokens.CreateRefreshToken(ctx, u.ID, resp.RefreshToken, resp.RefreshTokenExpiresIn, session); err != nil {
		return auth.AuthResponse{}, fmt.Errorf("failed to save refresh token to database: %w", err)
	}

	resp.User = user.NewUserResponse(u)
	return resp, nil
}
