package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/officecorner/officecorner-backend-go/internal/domain/attendance"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/database"
)

const attendanceColumns = `a.id, a.employee_id, a.date, a.clock_in, a.clock_out, a.status,
		a.is_late, a.is_overtime, a.notes, a.created_by, a.created_at, a.updated_at, u.name`

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var a attendance.Attendance
	err := row.Scan(
		&a.ID,
		&a.EmployeeID,
		&a.Date,
		&a.ClockIn,
		&a.ClockOut,
		&a.Status,
		&a.IsLate,
		&a.IsOvertime,
		&a.Notes,
		&a.CreatedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.EmployeeName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, err
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		WITH inserted AS (
			INSERT INTO attendances (
				employee_id, date, clock_in, clock_out, status, is_late, is_overtime, notes, created_by
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING *
		)
		SELECT ` + attendanceColumns + `
		FROM inserted a
		LEFT JOIN users u ON u.id = a.employee_id
	`

	created, err := scanAttendance(q.QueryRow(ctx, query,
		a.EmployeeID,
		a.Date,
		a.ClockIn,
		a.ClockOut,
		a.Status,
		a.IsLate,
		a.IsOvertime,
		a.Notes,
		a.CreatedBy,
	))
	if isUniqueViolation(err, "attendances_one_open_per_day") {
		return attendance.Attendance{}, attendance.ErrOpenRecordExists
	}
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return created, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		LEFT JOIN users u ON u.id = a.employee_id
		WHERE a.id = $1
	`
	return scanAttendance(q.QueryRow(ctx, query, id))
}

// GetOpenSession implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetOpenSession(ctx context.Context, employeeID string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		LEFT JOIN users u ON u.id = a.employee_id
		WHERE a.employee_id = $1 AND a.clock_in IS NOT NULL AND a.clock_out IS NULL
		ORDER BY a.clock_in DESC
		LIMIT 1
	`
	return scanAttendance(q.QueryRow(ctx, query, employeeID))
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Update(ctx context.Context, a attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET clock_in = $1, clock_out = $2, status = $3, is_late = $4, is_overtime = $5,
			notes = $6, updated_at = NOW()
		WHERE id = $7
	`
	tag, err := q.Exec(ctx, query, a.ClockIn, a.ClockOut, a.Status, a.IsLate, a.IsOvertime, a.Notes, a.ID)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"1 = 1"}
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		conditions = append(conditions, fmt.Sprintf("a.employee_id = $%d", argIdx))
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", argIdx))
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", argIdx))
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", argIdx))
		args = append(args, *filter.EndDate)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := "SELECT COUNT(*) FROM attendances a WHERE " + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := fmt.Sprintf(`
		SELECT %s
		FROM attendances a
		LEFT JOIN users u ON u.id = a.employee_id
		WHERE %s
		ORDER BY a.date DESC, a.clock_in DESC NULLS LAST
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, whereClause, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	records, err := r.query(ctx, q, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListByEmployeeRange implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	conditions := []string{"a.employee_id = $1"}
	args := []interface{}{employeeID}
	if !from.IsZero() {
		args = append(args, from)
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)))
	}
	if !to.IsZero() {
		args = append(args, to)
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM attendances a
		LEFT JOIN users u ON u.id = a.employee_id
		WHERE %s
		ORDER BY a.date, a.clock_in NULLS LAST
	`, attendanceColumns, strings.Join(conditions, " AND "))

	return r.query(ctx, q, query, args...)
}

// Delete implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// CountStaleOpen counts records still open from before the given work day.
func (r *attendanceRepositoryImpl) CountStaleOpen(ctx context.Context, before time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM attendances WHERE clock_in IS NOT NULL AND clock_out IS NULL AND date < $1`,
		before,
	).Scan(&count)
	return count, err
}

func (r *attendanceRepositoryImpl) query(ctx context.Context, q database.Querier, sql string, args ...interface{}) ([]attendance.Attendance, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Attendance, 0)
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
