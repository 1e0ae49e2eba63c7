package payroll

import (
	"time"

	"github.com/officecorner/officecorner-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== SETTINGS DTOs ==========

type SettingsResponse struct {
	ID                         string          `json:"id,omitempty"`
	RegularRate                decimal.Decimal `json:"regular_rate"`
	OvertimeRate               decimal.Decimal `json:"overtime_rate"`
	RegularHoursLimit          decimal.Decimal `json:"regular_hours_limit"`
	DailyRegularHoursLimit     decimal.Decimal `json:"daily_regular_hours_limit"`
	DailyOvertimeRatePerMinute decimal.Decimal `json:"daily_overtime_rate_per_minute"`
	UpdatedAt                  *string         `json:"updated_at,omitempty"`
}

func NewSettingsResponse(s Settings) SettingsResponse {
	resp := SettingsResponse{
		ID:                         s.ID,
		RegularRate:                s.RegularRate,
		OvertimeRate:               s.OvertimeRate,
		RegularHoursLimit:          s.RegularHoursLimit,
		DailyRegularHoursLimit:     s.DailyRegularHoursLimit,
		DailyOvertimeRatePerMinute: s.DailyOvertimeRatePerMinute,
	}
	if !s.UpdatedAt.IsZero() {
		updatedAt := s.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &updatedAt
	}
	return resp
}

type UpdateSettingsRequest struct {
	RegularRate                *decimal.Decimal `json:"regular_rate,omitempty"`
	OvertimeRate               *decimal.Decimal `json:"overtime_rate,omitempty"`
	RegularHoursLimit          *decimal.Decimal `json:"regular_hours_limit,omitempty"`
	DailyRegularHoursLimit     *decimal.Decimal `json:"daily_regular_hours_limit,omitempty"`
	DailyOvertimeRatePerMinute *decimal.Decimal `json:"daily_overtime_rate_per_minute,omitempty"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	fields := []struct {
		name  string
		value *decimal.Decimal
	}{
		{"regular_rate", r.RegularRate},
		{"overtime_rate", r.OvertimeRate},
		{"regular_hours_limit", r.RegularHoursLimit},
		{"daily_regular_hours_limit", r.DailyRegularHoursLimit},
		{"daily_overtime_rate_per_minute", r.DailyOvertimeRatePerMinute},
	}
	for _, f := range fields {
		if f.value != nil && f.value.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: f.name, Message: "must be non-negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply copies the set fields of the request onto s.
func (r *UpdateSettingsRequest) Apply(s Settings) Settings {
	if r.RegularRate != nil {
		s.RegularRate = *r.RegularRate
	}
	if r.OvertimeRate != nil {
		s.OvertimeRate = *r.OvertimeRate
	}
	if r.RegularHoursLimit != nil {
		s.RegularHoursLimit = *r.RegularHoursLimit
	}
	if r.DailyRegularHoursLimit != nil {
		s.DailyRegularHoursLimit = *r.DailyRegularHoursLimit
	}
	if r.DailyOvertimeRatePerMinute != nil {
		s.DailyOvertimeRatePerMinute = *r.DailyOvertimeRatePerMinute
	}
	return s
}

// ========== SUMMARY DTOs ==========

type SummaryFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  string  `json:"start_date"` // YYYY-MM-DD
	EndDate    string  `json:"end_date"`   // YYYY-MM-DD

	From time.Time `json:"-"`
	To   time.Time `json:"-"`
}

// Validate parses the date range into From/To.
func (f *SummaryFilter) Validate() error {
	var errs validator.ValidationErrors

	from, ok := validator.IsValidDate(f.StartDate)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	to, ok := validator.IsValidDate(f.EndDate)
	if !ok {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}
	if len(errs) == 0 && to.Before(from) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
	}
	if f.EmployeeID != nil && validator.IsEmpty(*f.EmployeeID) {
		f.EmployeeID = nil
	}

	if len(errs) > 0 {
		return errs
	}
	f.From, f.To = from, to
	return nil
}

type BreakdownRowResponse struct {
	RecordID           string          `json:"record_id,omitempty"`
	Date               string          `json:"date"`
	TimeIn             *string         `json:"time_in,omitempty"`
	TimeOut            *string         `json:"time_out,omitempty"`
	Hours              decimal.Decimal `json:"hours"`
	DailyRegularHours  decimal.Decimal `json:"daily_regular_hours"`
	DailyOvertimeHours decimal.Decimal `json:"daily_overtime_hours"`
	DailyRegularPay    decimal.Decimal `json:"daily_regular_pay"`
	DailyOvertimePay   decimal.Decimal `json:"daily_overtime_pay"`
	WeekKey            string          `json:"week_key"`
	DataWarning        string          `json:"data_warning,omitempty"`
}

type SummaryResponse struct {
	EmployeeID           string                 `json:"employee_id,omitempty"`
	StartDate            string                 `json:"start_date"`
	EndDate              string                 `json:"end_date"`
	TotalHours           decimal.Decimal        `json:"total_hours"`
	RegularHours         decimal.Decimal        `json:"regular_hours"`
	OvertimeHours        decimal.Decimal        `json:"overtime_hours"`
	DailyOvertimeMinutes decimal.Decimal        `json:"daily_overtime_minutes"`
	WeeklyOvertimeHours  decimal.Decimal        `json:"weekly_overtime_hours"`
	RegularPay           decimal.Decimal        `json:"regular_pay"`
	DailyOvertimePay     decimal.Decimal        `json:"daily_overtime_pay"`
	WeeklyOvertimePay    decimal.Decimal        `json:"weekly_overtime_pay"`
	OvertimePay          decimal.Decimal        `json:"overtime_pay"`
	TotalPay             decimal.Decimal        `json:"total_pay"`
	RecordCount          int                    `json:"record_count"`
	WarningCount         int                    `json:"warning_count"`
	Breakdown            []BreakdownRowResponse `json:"breakdown"`
}

// NewSummaryResponse rounds a calculation to 2 decimal places for display.
func NewSummaryResponse(c Calculation) SummaryResponse {
	t := c.Totals
	resp := SummaryResponse{
		EmployeeID:           c.EmployeeID,
		TotalHours:           t.TotalHours().Round(2),
		RegularHours:         t.RegularHours.Round(2),
		OvertimeHours:        t.OvertimeHours().Round(2),
		DailyOvertimeMinutes: t.DailyOvertimeMinutes.Round(2),
		WeeklyOvertimeHours:  t.WeeklyOvertimeHours.Round(2),
		RegularPay:           t.RegularPay.Round(2),
		DailyOvertimePay:     t.DailyOvertimePay.Round(2),
		WeeklyOvertimePay:    t.WeeklyOvertimePay.Round(2),
		OvertimePay:          t.OvertimePay().Round(2),
		TotalPay:             t.TotalPay().Round(2),
		RecordCount:          t.RecordCount,
		WarningCount:         t.WarningCount,
		Breakdown:            make([]BreakdownRowResponse, 0, len(c.Breakdown)),
	}
	if !c.From.IsZero() {
		resp.StartDate = c.From.Format("2006-01-02")
	}
	if !c.To.IsZero() {
		resp.EndDate = c.To.Format("2006-01-02")
	}

	for _, row := range c.Breakdown {
		resp.Breakdown = append(resp.Breakdown, BreakdownRowResponse{
			RecordID:           row.RecordID,
			Date:               row.Date.Format("2006-01-02"),
			TimeIn:             formatTimePtr(row.TimeIn),
			TimeOut:            formatTimePtr(row.TimeOut),
			Hours:              row.Hours.Round(2),
			DailyRegularHours:  row.DailyRegularHours.Round(2),
			DailyOvertimeHours: row.DailyOvertimeHours.Round(2),
			DailyRegularPay:    row.DailyRegularPay.Round(2),
			DailyOvertimePay:   row.DailyOvertimePay.Round(2),
			WeekKey:            row.WeekKey.String(),
			DataWarning:        row.DataWarning,
		})
	}
	return resp
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
