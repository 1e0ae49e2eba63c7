package payroll

import (
	"fmt"
	"strings"

	"github.com/officecorner/officecorner-backend-go/internal/domain/attendance"
	"github.com/officecorner/officecorner-backend-go/internal/domain/payroll"
)

// FromAttendance converts stored attendance records for the calculator.
func FromAttendance(records []attendance.Attendance) []payroll.WorkRecord {
	out := make([]payroll.WorkRecord, 0, len(records))
	for _, a := range records {
		out = append(out, payroll.WorkRecord{
			ID:         a.ID,
			EmployeeID: a.EmployeeID,
			Date:       a.Date,
			TimeIn:     a.ClockIn,
			TimeOut:    a.ClockOut,
			Status:     string(a.Status),
		})
	}
	return out
}

// NormalizeRaw converts client-side records whose timestamps are still
// strings. Unparseable values become absent and are noted in Warning.
func NormalizeRaw(records []attendance.RawRecord) []payroll.WorkRecord {
	out := make([]payroll.WorkRecord, 0, len(records))
	for _, raw := range records {
		var warnings []string

		day, ok := raw.WorkDay()
		if !ok {
			if t, parsed := ParseTimestamp(raw.TimeIn, day); parsed {
				day = dateOnly(t)
			} else {
				warnings = append(warnings, fmt.Sprintf("unparseable date %q", raw.Date))
			}
		}

		rec := payroll.WorkRecord{
			ID:         raw.ID,
			EmployeeID: raw.EmployeeID,
			Date:       day,
			Status:     strings.ToLower(raw.Status),
		}

		if raw.TimeIn != "" {
			if t, parsed := ParseTimestamp(raw.TimeIn, day); parsed {
				rec.TimeIn = &t
			} else {
				warnings = append(warnings, fmt.Sprintf("unparseable time in %q", raw.TimeIn))
			}
		}
		if raw.TimeOut != "" {
			if t, parsed := ParseTimestamp(raw.TimeOut, day); parsed {
				rec.TimeOut = &t
			} else {
				warnings = append(warnings, fmt.Sprintf("unparseable time out %q", raw.TimeOut))
			}
		}

		rec.Warning = strings.Join(warnings, "; ")
		out = append(out, rec)
	}
	return out
}
