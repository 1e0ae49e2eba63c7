package employee

import (
	"context"

	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
)

// EmployeeService is the admin side of the signup approval workflow.
type EmployeeService interface {
	ListEmployees(ctx context.Context, filter user.UserFilter) (user.ListUserResponse, error)
	ApproveEmployee(ctx context.Context, id string) (user.UserResponse, error)
	RejectEmployee(ctx context.Context, id string, req RejectRequest) (user.UserResponse, error)
}
