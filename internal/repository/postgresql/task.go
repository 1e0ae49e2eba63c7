package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/officecorner/officecorner-backend-go/internal/domain/task"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/database"
)

const taskColumns = `t.id, t.title, t.description, t.assignee_id, t.created_by, t.status, t.priority,
		t.due_date, t.created_at, t.updated_at, u.name`

type taskRepositoryImpl struct {
	db *database.DB
}

func NewTaskRepository(db *database.DB) task.TaskRepository {
	return &taskRepositoryImpl{db: db}
}

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.AssigneeID,
		&t.CreatedBy,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.AssigneeName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return task.Task{}, task.ErrTaskNotFound
	}
	return t, err
}

func (r *taskRepositoryImpl) Create(ctx context.Context, t task.Task) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH inserted AS (
			INSERT INTO tasks (title, description, assignee_id, created_by, status, priority, due_date)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING *
		)
		SELECT ` + taskColumns + `
		FROM inserted t
		LEFT JOIN users u ON u.id = t.assignee_id
	`

	created, err := scanTask(q.QueryRow(ctx, query,
		t.Title, t.Description, t.AssigneeID, t.CreatedBy, t.Status, t.Priority, t.DueDate,
	))
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

func (r *taskRepositoryImpl) GetByID(ctx context.Context, id string) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + taskColumns + `
		FROM tasks t
		LEFT JOIN users u ON u.id = t.assignee_id
		WHERE t.id = $1
	`
	return scanTask(q.QueryRow(ctx, query, id))
}

func (r *taskRepositoryImpl) Update(ctx context.Context, t task.Task) (task.Task, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH updated AS (
			UPDATE tasks
			SET title = $1, description = $2, assignee_id = $3, status = $4, priority = $5,
				due_date = $6, updated_at = NOW()
			WHERE id = $7
			RETURNING *
		)
		SELECT ` + taskColumns + `
		FROM updated t
		LEFT JOIN users u ON u.id = t.assignee_id
	`
	return scanTask(q.QueryRow(ctx, query,
		t.Title, t.Description, t.AssigneeID, t.Status, t.Priority, t.DueDate, t.ID,
	))
}

func (r *taskRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return task.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepositoryImpl) List(ctx context.Context, filter task.TaskFilter) ([]task.Task, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1 = 1"}
	args := []interface{}{}
	argIdx := 1

	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("t.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.AssigneeID != nil && *filter.AssigneeID != "" {
		conditions = append(conditions, fmt.Sprintf("t.assignee_id = $%d", argIdx))
		args = append(args, *filter.AssigneeID)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM tasks t WHERE "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT %s
		FROM tasks t
		LEFT JOIN users u ON u.id = t.assignee_id
		WHERE %s
		ORDER BY t.due_date ASC NULLS LAST, t.created_at DESC
		LIMIT $%d OFFSET $%d
	`, taskColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}
