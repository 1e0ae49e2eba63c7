package task

import "context"

type TaskRepository interface {
	Create(ctx context.Context, t Task) (Task, error)
	GetByID(ctx context.Context, id string) (Task, error)
	Update(ctx context.Context, t Task) (Task, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter TaskFilter) ([]Task, int64, error)
}
