package attendance

import "errors"

// Attendance domain errors
var (
	// Clock-in/out errors
	ErrAlreadyCheckedIn = errors.New("you are already clocked in")
	ErrNotCheckedIn     = errors.New("you have not clocked in yet")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrOpenRecordExists   = errors.New("employee already has an open attendance record for this day")
	ErrInvalidTimeRange   = errors.New("time out must be after time in")
	ErrInvalidTimestamp   = errors.New("time in and time out must be HH:MM or RFC3339 timestamps")
	ErrEmployeeNotFound   = errors.New("employee not found")
)
