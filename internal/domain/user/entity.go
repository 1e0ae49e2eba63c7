package user

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"    // Manages employees, payroll, tasks
	RoleEmployee Role = "employee" // Regular employee
)

// Status is the approval state of an account.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

type User struct {
	ID              string
	Email           string
	Name            string
	PasswordHash    *string
	Role            Role
	Status          Status
	OAuthProvider   *string
	OAuthProviderID *string
	EmailVerified   bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsAdmin checks if user is an administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsPending checks if user is still waiting for approval
func (u *User) IsPending() bool {
	return u.Status == StatusPending
}

func (u *User) IsApproved() bool {
	return u.Status == StatusApproved
}
