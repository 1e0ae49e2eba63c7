package attendance

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/officecorner/officecorner-backend-go/internal/pkg/validator"
)

// ========================================
// RAW RECORDS
// ========================================

// RawRecord is an attendance record as sent by clients. Timestamps stay
// unparsed; clock-in/out accept several field-name aliases.
type RawRecord struct {
	ID         string  `json:"id,omitempty"`
	EmployeeID string  `json:"employee_id"`
	Date       string  `json:"date"`
	TimeIn     string  `json:"time_in,omitempty"`
	TimeOut    string  `json:"time_out,omitempty"`
	Status     string  `json:"status,omitempty"`
	IsLate     *bool   `json:"is_late,omitempty"`
	IsOvertime *bool   `json:"is_overtime,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

func (r *RawRecord) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID              string  `json:"id"`
		EmployeeID      string  `json:"employeeId"`
		EmployeeIDSnake string  `json:"employee_id"`
		Date            string  `json:"date"`
		TimeIn          *string `json:"timeIn"`
		ClockIn         *string `json:"clockIn"`
		TimeInSnake     *string `json:"time_in"`
		ClockInSnake    *string `json:"clock_in"`
		TimeOut         *string `json:"timeOut"`
		ClockOut        *string `json:"clockOut"`
		TimeOutSnake    *string `json:"time_out"`
		ClockOutSnake   *string `json:"clock_out"`
		Status          string  `json:"status"`
		IsLate          *bool   `json:"isLate"`
		IsLateSnake     *bool   `json:"is_late"`
		IsOvertime      *bool   `json:"isOvertime"`
		IsOvertimeSnake *bool   `json:"is_overtime"`
		Notes           *string `json:"notes"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = RawRecord{
		ID:         aux.ID,
		EmployeeID: firstNonEmpty(&aux.EmployeeID, &aux.EmployeeIDSnake),
		Date:       aux.Date,
		TimeIn:     firstNonEmpty(aux.TimeIn, aux.ClockIn, aux.TimeInSnake, aux.ClockInSnake),
		TimeOut:    firstNonEmpty(aux.TimeOut, aux.ClockOut, aux.TimeOutSnake, aux.ClockOutSnake),
		Status:     aux.Status,
		IsLate:     firstBool(aux.IsLate, aux.IsLateSnake),
		IsOvertime: firstBool(aux.IsOvertime, aux.IsOvertimeSnake),
		Notes:      aux.Notes,
	}
	return nil
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return strings.TrimSpace(*v)
		}
	}
	return ""
}

func firstBool(values ...*bool) *bool {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// WorkDay parses Date, falling back to the date part of a full timestamp.
func (r RawRecord) WorkDay() (time.Time, bool) {
	if d, ok := validator.IsValidDate(r.Date); ok {
		return d, true
	}
	if t, ok := validator.IsValidDateTime(r.Date); ok {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// ========================================
// ATTENDANCE DTOs
// ========================================

type ClockInRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type ClockOutRequest struct {
	Notes *string `json:"notes,omitempty"`
}

// CreateAttendanceRequest is a manual record entered by an admin.
type CreateAttendanceRequest struct {
	RawRecord
}

func (r *CreateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidUUID(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if _, ok := r.WorkDay(); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if r.Status == "" {
		r.Status = string(StatusPresent)
	}
	status, ok := ParseStatus(r.Status)
	if !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(validStatuses, ", "),
		})
	}

	if status == StatusPresent {
		if validator.IsEmpty(r.TimeIn) {
			errs = append(errs, validator.ValidationError{
				Field:   "time_in",
				Message: "time_in is required for present records",
			})
		}
		if validator.IsEmpty(r.TimeOut) {
			errs = append(errs, validator.ValidationError{
				Field:   "time_out",
				Message: "time_out is required for present records",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	r.Status = string(status)
	return nil
}

type AttendanceResponse struct {
	ID           string   `json:"id"`
	EmployeeID   string   `json:"employee_id"`
	EmployeeName string   `json:"employee_name,omitempty"`
	Date         string   `json:"date"`
	TimeIn       *string  `json:"time_in,omitempty"`
	TimeOut      *string  `json:"time_out,omitempty"`
	WorkedHours  *float64 `json:"worked_hours,omitempty"`
	Status       string   `json:"status"`
	IsLate       bool     `json:"is_late"`
	IsOvertime   bool     `json:"is_overtime"`
	Notes        *string  `json:"notes,omitempty"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func NewAttendanceResponse(a Attendance) AttendanceResponse {
	resp := AttendanceResponse{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Date:       a.Date.Format("2006-01-02"),
		Status:     string(a.Status),
		IsLate:     a.IsLate,
		IsOvertime: a.IsOvertime,
		Notes:      a.Notes,
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  a.UpdatedAt.Format(time.RFC3339),
	}
	if a.EmployeeName != nil {
		resp.EmployeeName = *a.EmployeeName
	}
	if a.ClockIn != nil {
		s := a.ClockIn.Format(time.RFC3339)
		resp.TimeIn = &s
	}
	if a.ClockOut != nil {
		s := a.ClockOut.Format(time.RFC3339)
		resp.TimeOut = &s
	}
	if a.ClockIn != nil && a.ClockOut != nil {
		hours := WorkedHours(a.ClockIn, a.ClockOut).Round(2).InexactFloat64()
		resp.WorkedHours = &hours
	}
	return resp
}

type AttendanceFilter struct {
	// Search & Filter
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status     *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	// Page validation
	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1 // Default page
	}

	// Limit validation
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id must be a valid UUID",
		})
	}

	if f.Status != nil {
		status, ok := ParseStatus(*f.Status)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: " + strings.Join(validStatuses, ", "),
			})
		} else {
			s := string(status)
			f.Status = &s
		}
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MyAttendanceFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status    *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ForEmployee widens the filter to the admin form scoped to employeeID.
func (f MyAttendanceFilter) ForEmployee(employeeID string) AttendanceFilter {
	return AttendanceFilter{
		EmployeeID: &employeeID,
		StartDate:  f.StartDate,
		EndDate:    f.EndDate,
		Status:     f.Status,
		Page:       f.Page,
		Limit:      f.Limit,
	}
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}
