package attendance

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
	StatusHoliday Status = "holiday"
)

var validStatuses = []string{string(StatusPresent), string(StatusAbsent), string(StatusLeave), string(StatusHoliday)}

// ParseStatus accepts any casing of a known status.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case StatusPresent, StatusAbsent, StatusLeave, StatusHoliday:
		return st, true
	}
	return "", false
}

type Attendance struct {
	ID         string
	EmployeeID string
	Date       time.Time
	ClockIn    *time.Time
	ClockOut   *time.Time
	Status     Status
	IsLate     bool
	IsOvertime bool
	Notes      *string
	CreatedBy  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// DTO
	EmployeeName *string
}

// IsOpen reports whether the employee is still clocked in on this record.
func (a Attendance) IsOpen() bool {
	return a.ClockIn != nil && a.ClockOut == nil
}

var nanosPerHour = decimal.NewFromInt(int64(time.Hour))

// WorkedHours returns the hours between timeIn and timeOut. A missing
// timestamp yields zero. A negative span is treated as one midnight
// crossing; anything still negative after that is zero.
func WorkedHours(timeIn, timeOut *time.Time) decimal.Decimal {
	if timeIn == nil || timeOut == nil {
		return decimal.Zero
	}

	d := timeOut.Sub(*timeIn)
	if d < 0 {
		d = timeOut.Add(24 * time.Hour).Sub(*timeIn)
	}
	if d < 0 {
		return decimal.Zero
	}

	return decimal.NewFromInt(d.Nanoseconds()).Div(nanosPerHour)
}
