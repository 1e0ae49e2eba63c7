package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/officecorner/officecorner-backend-go/internal/domain/event"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/database"
)

const eventColumns = `id, title, description, location, starts_at, ends_at, all_day, created_by,
		attendee_ids, created_at, updated_at`

type eventRepositoryImpl struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) event.EventRepository {
	return &eventRepositoryImpl{db: db}
}

func scanEvent(row pgx.Row) (event.Event, error) {
	var e event.Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Location,
		&e.StartsAt,
		&e.EndsAt,
		&e.AllDay,
		&e.CreatedBy,
		&e.AttendeeIDs,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return event.Event{}, event.ErrEventNotFound
	}
	return e, err
}

func (r *eventRepositoryImpl) Create(ctx context.Context, e event.Event) (event.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO events (title, description, location, starts_at, ends_at, all_day, created_by, attendee_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::uuid[])
		RETURNING ` + eventColumns

	created, err := scanEvent(q.QueryRow(ctx, query,
		e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt, e.AllDay, e.CreatedBy, e.AttendeeIDs,
	))
	if err != nil {
		return event.Event{}, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

func (r *eventRepositoryImpl) GetByID(ctx context.Context, id string) (event.Event, error) {
	q := GetQuerier(ctx, r.db)
	return scanEvent(q.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

func (r *eventRepositoryImpl) Update(ctx context.Context, e event.Event) (event.Event, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE events
		SET title = $1, description = $2, location = $3, starts_at = $4, ends_at = $5,
			all_day = $6, attendee_ids = $7::uuid[], updated_at = NOW()
		WHERE id = $8
		RETURNING ` + eventColumns

	return scanEvent(q.QueryRow(ctx, query,
		e.Title, e.Description, e.Location, e.StartsAt, e.EndsAt, e.AllDay, e.AttendeeIDs, e.ID,
	))
}

func (r *eventRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return event.ErrEventNotFound
	}
	return nil
}

func (r *eventRepositoryImpl) ListRange(ctx context.Context, from, to time.Time) ([]event.Event, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1 = 1"}
	args := []interface{}{}
	if !from.IsZero() {
		args = append(args, from)
		conditions = append(conditions, fmt.Sprintf("ends_at >= $%d", len(args)))
	}
	if !to.IsZero() {
		args = append(args, to)
		conditions = append(conditions, fmt.Sprintf("starts_at <= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM events WHERE %s ORDER BY starts_at, id`,
		eventColumns, strings.Join(conditions, " AND "))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]event.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
