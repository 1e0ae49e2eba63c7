package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// Create creates a new attendance record
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByID retrieves attendance by ID
	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetOpenSession returns the most recent record without a clock-out
	GetOpenSession(ctx context.Context, employeeID string) (Attendance, error)

	// Update updates an existing attendance record
	Update(ctx context.Context, attendance Attendance) error

	// List retrieves attendance records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ListByEmployeeRange returns every record of an employee between two work days, inclusive
	ListByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)

	Delete(ctx context.Context, id string) error

	// CountStaleOpen counts records still open from work days before the given day
	CountStaleOpen(ctx context.Context, before time.Time) (int64, error)
}
