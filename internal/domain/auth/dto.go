package auth

import (
	"strings"

	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/validator"
)

func validateEmail(errs validator.ValidationErrors, email string) validator.ValidationErrors {
	if validator.IsEmpty(email) {
		return append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	}
	if len(email) > 254 {
		return append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must not exceed 254 characters",
		})
	}
	if !validator.IsValidEmail(email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email must be a valid email address, e.g. user@example.com",
		})
	}
	return errs
}

func validatePassword(errs validator.ValidationErrors, password string) validator.ValidationErrors {
	if validator.IsEmpty(password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	} else if len(password) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must be at least 8 characters long",
		})
	} else if len(password) > 72 {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password must not exceed 72 characters",
		})
	}
	return errs
}

type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r *SignupRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	} else if len(r.Name) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 255 characters",
		})
	}

	errs = validateEmail(errs, r.Email)
	errs = validatePassword(errs, r.Password)

	if validator.IsEmpty(r.ConfirmPassword) {
		errs = append(errs, validator.ValidationError{
			Field:   "confirm_password",
			Message: "confirm_password is required",
		})
	} else if r.ConfirmPassword != r.Password {
		errs = append(errs, validator.ValidationError{
			Field:   "confirm_password",
			Message: "password and confirm_password do not match",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SignupResponse struct {
	User              user.UserResponse `json:"user"`
	OTPExpiresIn      int64             `json:"otp_expires_in"`
	ResendAvailableIn int64             `json:"resend_available_in"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (r *VerifyOTPRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Code = strings.TrimSpace(r.Code)

	errs = validateEmail(errs, r.Email)
	if !validator.IsValidOTP(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code must be 6 digits",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ResendOTPRequest struct {
	Email string `json:"email"`
}

func (r *ResendOTPRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if errs := validateEmail(nil, r.Email); len(errs) > 0 {
		return errs
	}
	return nil
}

type ResendOTPResponse struct {
	OTPExpiresIn      int64 `json:"otp_expires_in"`
	ResendAvailableIn int64 `json:"resend_available_in"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	errs = validateEmail(errs, r.Email)
	if validator.IsEmpty(r.Password) {
		errs = append(errs, validator.ValidationError{
			Field:   "password",
			Message: "password is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r *RefreshTokenRequest) Validate() error {
	var errs validator.ValidationErrors

	// Refresh Token
	if validator.IsEmpty(r.RefreshToken) {
		errs = append(errs, validator.ValidationError{
			Field:   "refresh_token",
			Message: "refresh_token is required",
		})
	}
	if len(r.RefreshToken) > 1024 {
		errs = append(errs, validator.ValidationError{
			Field:   "refresh_token",
			Message: "refresh_token must not exceed 1024 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SessionTrackingRequest struct {
	UserAgent string
	IPAddress string
}

type TokenResponse struct {
	AccessToken           string `json:"access_token"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

type AccessTokenResponse struct {
	AccessToken          string `json:"access_token"`
	AccessTokenExpiresIn int64  `json:"access_token_expires_in"`
}

// AuthResponse is returned by every flow that ends in a signed-in session.
type AuthResponse struct {
	TokenResponse
	User user.UserResponse `json:"user"`
}
