package attendance

import (
	"context"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// ClockIn opens a record for the authenticated employee
	ClockIn(ctx context.Context, req ClockInRequest) (AttendanceResponse, error)

	// ClockOut closes the authenticated employee's open record
	ClockOut(ctx context.Context, req ClockOutRequest) (AttendanceResponse, error)

	// GetMyAttendance retrieves attendance records for authenticated employee
	GetMyAttendance(ctx context.Context, filter MyAttendanceFilter) (ListAttendanceResponse, error)

	// ListAttendance retrieves attendance records with filters (admin)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// CreateAttendance records a manual entry with both timestamps (admin)
	CreateAttendance(ctx context.Context, req CreateAttendanceRequest) (AttendanceResponse, error)

	DeleteAttendance(ctx context.Context, id string) error
}
