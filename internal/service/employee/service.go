package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/officecorner/officecorner-backend-go/internal/domain/employee"
	"github.com/officecorner/officecorner-backend-go/internal/domain/notification"
	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt"
	"github.com/officecorner/officecorner-backend-go/internal/repository/postgresql"
)

type EmployeeServiceImpl struct {
	tx       postgresql.TxManager
	users    user.UserRepository
	notifier notification.Service
}

func NewEmployeeService(tx postgresql.TxManager, users user.UserRepository, notifier notification.Service) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:       tx,
		users:    users,
		notifier: notifier,
	}
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter user.UserFilter) (user.ListUserResponse, error) {
	if filter.Role == nil {
		role := string(user.RoleEmployee)
		filter.Role = &role
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return user.ListUserResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	resp := user.ListUserResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Users:      make([]user.UserResponse, 0, len(users)),
	}
	for _, u := range users {
		resp.Users = append(resp.Users, user.NewUserResponse(u))
	}
	return resp, nil
}

// ApproveEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ApproveEmployee(ctx context.Context, id string) (user.UserResponse, error) {
	return s.decide(ctx, id, user.StatusApproved, nil)
}

// RejectEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) RejectEmployee(ctx context.Context, id string, req employee.RejectRequest) (user.UserResponse, error) {
	return s.decide(ctx, id, user.StatusRejected, req.Reason)
}

func (s *EmployeeServiceImpl) decide(ctx context.Context, id string, status user.Status, reason *string) (user.UserResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}
	if !claims.IsAdmin() {
		return user.UserResponse{}, user.ErrAdminPrivilegeRequired
	}

	var updated user.User
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		target, err := s.users.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return employee.ErrEmployeeNotFound
			}
			return fmt.Errorf("failed to get employee: %w", err)
		}
		if target.Role != user.RoleEmployee {
			return employee.ErrNotAnEmployee
		}
		if !target.IsPending() {
			return user.ErrUserNotPending
		}

		updated, err = s.users.UpdateStatus(txCtx, id, status)
		if err != nil {
			return fmt.Errorf("failed to update employee status: %w", err)
		}
		return nil
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.Info("employee decision recorded", "employee_id", id, "status", status, "admin_id", claims.UserID)
	s.notifier.NotifyDecision(ctx, updated, reason)

	return user.NewUserResponse(updated), nil
}
