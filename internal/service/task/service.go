package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/officecorner/officecorner-backend-go/internal/domain/task"
	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt"
	"github.com/officecorner/officecorner-backend-go/internal/repository/postgresql"
)

type TaskServiceImpl struct {
	tx    postgresql.TxManager
	tasks task.TaskRepository
	users user.UserRepository
}

func NewTaskService(tx postgresql.TxManager, taskRepo task.TaskRepository, userRepo user.UserRepository) task.TaskService {
	return &TaskServiceImpl{
		tx:    tx,
		tasks: taskRepo,
		users: userRepo,
	}
}

// checkAssignee requires the assignee to be an approved account.
func (s *TaskServiceImpl) checkAssignee(ctx context.Context, assigneeID *string) error {
	if assigneeID == nil {
		return nil
	}
	assignee, err := s.users.GetByID(ctx, *assigneeID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return task.ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to get assignee: %w", err)
	}
	if !assignee.IsApproved() {
		return task.ErrAssigneeNotActive
	}
	return nil
}

// ListTasks implements task.TaskService.
func (s *TaskServiceImpl) ListTasks(ctx context.Context, filter task.TaskFilter) (task.ListTaskResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return task.ListTaskResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return task.ListTaskResponse{}, err
	}
	if !claims.IsAdmin() {
		filter.AssigneeID = &claims.UserID
	}

	tasks, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return task.ListTaskResponse{}, fmt.Errorf("failed to list tasks: %w", err)
	}

	resp := task.ListTaskResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
		Tasks:      make([]task.TaskResponse, 0, len(tasks)),
	}
	for _, t := range tasks {
		resp.Tasks = append(resp.Tasks, task.NewTaskResponse(t))
	}
	return resp, nil
}

// GetTask implements task.TaskService.
func (s *TaskServiceImpl) GetTask(ctx context.Context, id string) (task.TaskResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return task.TaskResponse{}, err
	}

	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return task.TaskResponse{}, err
	}
	if !claims.IsAdmin() && !t.IsAssignedTo(claims.UserID) {
		return task.TaskResponse{}, task.ErrTaskForbidden
	}
	return task.NewTaskResponse(t), nil
}

// CreateTask implements task.TaskService.
func (s *TaskServiceImpl) CreateTask(ctx context.Context, req task.CreateTaskRequest) (task.TaskResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return task.TaskResponse{}, err
	}
	if !claims.IsAdmin() {
		return task.TaskResponse{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return task.TaskResponse{}, err
	}

	var created task.Task
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if err := s.checkAssignee(txCtx, req.AssigneeID); err != nil {
			return err
		}
		created, err = s.tasks.Create(txCtx, req.ToTask(claims.UserID))
		if err != nil {
			return fmt.Errorf("failed to create task: %w", err)
		}
		return nil
	})
	if err != nil {
		return task.TaskResponse{}, err
	}

	slog.Info("task created", "task_id", created.ID, "created_by", claims.UserID)
	return task.NewTaskResponse(created), nil
}

// UpdateTask implements task.TaskService. Admins may change any field;
// the assignee may only move the status.
func (s *TaskServiceImpl) UpdateTask(ctx context.Context, id string, req task.UpdateTaskRequest) (task.TaskResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return task.TaskResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return task.TaskResponse{}, err
	}

	var updated task.Task
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		current, err := s.tasks.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		if !claims.IsAdmin() {
			if !current.IsAssignedTo(claims.UserID) {
				return task.ErrTaskForbidden
			}
			if !req.StatusOnly() {
				return task.ErrStatusOnlyUpdate
			}
		}

		if req.AssigneeID != nil {
			if err := s.checkAssignee(txCtx, req.AssigneeID); err != nil {
				return err
			}
		}

		updated, err = s.tasks.Update(txCtx, req.Apply(current))
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return nil
	})
	if err != nil {
		return task.TaskResponse{}, err
	}

	return task.NewTaskResponse(updated), nil
}

// DeleteTask implements task.TaskService.
func (s *TaskServiceImpl) DeleteTask(ctx context.Context, id string) error {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	if !claims.IsAdmin() {
		return user.ErrAdminPrivilegeRequired
	}

	if err := s.tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, task.ErrTaskNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}
