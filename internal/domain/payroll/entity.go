package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Settings - Organisation payroll configuration (single row)
type Settings struct {
	ID                         string
	RegularRate                decimal.Decimal // currency per hour
	OvertimeRate               decimal.Decimal // currency per hour, weekly overtime
	RegularHoursLimit          decimal.Decimal // hours per ISO week
	DailyRegularHoursLimit     decimal.Decimal // hours per record
	DailyOvertimeRatePerMinute decimal.Decimal // currency per minute, daily overtime
	UpdatedBy                  *string
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// DefaultSettings returns the rates used until an admin saves their own.
func DefaultSettings() Settings {
	return Settings{
		RegularRate:                decimal.NewFromInt(45),
		OvertimeRate:               decimal.RequireFromString("67.5"),
		RegularHoursLimit:          decimal.NewFromInt(40),
		DailyRegularHoursLimit:     decimal.NewFromInt(8),
		DailyOvertimeRatePerMinute: decimal.RequireFromString("1.1"),
	}
}

// WorkRecord is the calculator's view of one attendance record.
type WorkRecord struct {
	ID         string
	EmployeeID string
	Date       time.Time
	TimeIn     *time.Time
	TimeOut    *time.Time
	Status     string
	Warning    string // set when a raw timestamp could not be parsed
}

// WeekKey identifies an ISO-8601 week.
type WeekKey struct {
	Year int
	Week int
}

func (k WeekKey) String() string {
	return fmt.Sprintf("%04d-W%02d", k.Year, k.Week)
}

// Totals holds full-precision accumulators of one calculation.
type Totals struct {
	RegularHours         decimal.Decimal // accrued, after the weekly cap
	DailyOvertimeMinutes decimal.Decimal
	WeeklyOvertimeHours  decimal.Decimal
	RegularPay           decimal.Decimal
	DailyOvertimePay     decimal.Decimal
	WeeklyOvertimePay    decimal.Decimal
	RecordCount          int
	WarningCount         int
}

func (t Totals) OvertimeHours() decimal.Decimal {
	return t.DailyOvertimeMinutes.Div(decimal.NewFromInt(60)).Add(t.WeeklyOvertimeHours)
}

func (t Totals) TotalHours() decimal.Decimal {
	return t.RegularHours.Add(t.OvertimeHours())
}

func (t Totals) OvertimePay() decimal.Decimal {
	return t.DailyOvertimePay.Add(t.WeeklyOvertimePay)
}

func (t Totals) TotalPay() decimal.Decimal {
	return t.RegularPay.Add(t.DailyOvertimePay).Add(t.WeeklyOvertimePay)
}

// BreakdownRow is the per-record detail used by reports.
type BreakdownRow struct {
	RecordID           string
	Date               time.Time
	TimeIn             *time.Time
	TimeOut            *time.Time
	Hours              decimal.Decimal
	DailyRegularHours  decimal.Decimal
	DailyOvertimeHours decimal.Decimal
	DailyRegularPay    decimal.Decimal
	DailyOvertimePay   decimal.Decimal
	WeekKey            WeekKey
	DataWarning        string
}

// Calculation is the unrounded result of running the engine over a record set.
type Calculation struct {
	EmployeeID string
	From       time.Time
	To         time.Time
	Totals     Totals
	Breakdown  []BreakdownRow
}
