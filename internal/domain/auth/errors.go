package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrEmailAlreadyExists  = errors.New("email already registered")
	ErrAccountRejected     = errors.New("account has been rejected")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrTokenExpired        = errors.New("token has expired")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
	ErrUserNotFound        = errors.New("user not found")

	// OTP errors
	ErrOTPInvalid           = errors.New("invalid verification code")
	ErrOTPExpired           = errors.New("verification code expired or not requested")
	ErrOTPAttemptsExceeded  = errors.New("too many invalid attempts, request a new code")
	ErrOTPCooldown          = errors.New("please wait before requesting a new code")
	ErrEmailAlreadyVerified = errors.New("email already verified")

	// OAuth errors
	ErrOAuthStateMismatch   = errors.New("oauth state mismatch")
	ErrOAuthEmailUnverified = errors.New("google account email is not verified")
)
