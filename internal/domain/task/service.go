package task

import "context"

// TaskService scopes every call to the authenticated user: admins manage all
// tasks, employees see and progress the tasks assigned to them.
type TaskService interface {
	ListTasks(ctx context.Context, filter TaskFilter) (ListTaskResponse, error)
	GetTask(ctx context.Context, id string) (TaskResponse, error)
	CreateTask(ctx context.Context, req CreateTaskRequest) (TaskResponse, error)
	UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (TaskResponse, error)
	DeleteTask(ctx context.Context, id string) error
}
