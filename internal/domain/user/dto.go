package user

import (
	"time"

	"github.com/officecorner/officecorner-backend-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Name          string  `json:"name"`
	Role          string  `json:"role"`
	Status        string  `json:"status"`
	OAuthProvider *string `json:"oauth_provider,omitempty"`
	EmailVerified bool    `json:"email_verified"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func NewUserResponse(u User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          string(u.Role),
		Status:        string(u.Status),
		OAuthProvider: u.OAuthProvider,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     u.UpdatedAt.Format(time.RFC3339),
	}
}

type UserFilter struct {
	Status *string `json:"status,omitempty"`
	Role   *string `json:"role,omitempty"`
	Search *string `json:"search,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *UserFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 || f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be between 1 and 100"})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}

	if f.Status != nil {
		valid := []string{string(StatusPending), string(StatusApproved), string(StatusRejected)}
		if !validator.IsInSlice(*f.Status, valid) {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: pending, approved, rejected"})
		}
	}
	if f.Role != nil {
		if !validator.IsInSlice(*f.Role, []string{string(RoleAdmin), string(RoleEmployee)}) {
			errs = append(errs, validator.ValidationError{Field: "role", Message: "role must be one of: admin, employee"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListUserResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Users      []UserResponse `json:"users"`
}
