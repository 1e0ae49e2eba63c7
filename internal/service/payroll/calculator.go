package payroll

import (
	"sort"
	"strings"
	"time"

	"github.com/officecorner/officecorner-backend-go/internal/domain/attendance"
	"github.com/officecorner/officecorner-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

var minsPerHour = decimal.NewFromInt(60)

// Layouts accepted for full timestamps, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
}

// Full timestamps without an offset are wall-clock times in the day's location.
var localTimestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Layouts accepted for bare clock times, combined with the record date.
var clockLayouts = []string{"15:04", "15:04:05"}

// ParseTimestamp parses raw as a full timestamp or as a clock time on day.
// Input without an offset is read in day's location. It reports false for
// empty or unrecognised input.
func ParseTimestamp(raw string, day time.Time) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	loc := day.Location()
	if day.IsZero() {
		loc = time.UTC
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	for _, layout := range localTimestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}

	for _, layout := range clockLayouts {
		if c, err := time.Parse(layout, raw); err == nil {
			return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), c.Second(), 0, loc), true
		}
	}

	return time.Time{}, false
}

// WorkedHours returns the hours between timeIn and timeOut, with one
// midnight crossing allowed. Missing timestamps yield zero.
func WorkedHours(timeIn, timeOut *time.Time) decimal.Decimal {
	return attendance.WorkedHours(timeIn, timeOut)
}

// SplitDaily splits total into the part within limit and the excess.
func SplitDaily(total, limit decimal.Decimal) (regular, overtime decimal.Decimal) {
	if total.IsNegative() {
		total = decimal.Zero
	}
	if limit.IsNegative() {
		limit = decimal.Zero
	}
	regular = decimal.Min(total, limit)
	overtime = total.Sub(regular)
	return regular, overtime
}

// WeekKeyOf returns the ISO-8601 week of date.
func WeekKeyOf(date time.Time) payroll.WeekKey {
	year, week := date.ISOWeek()
	return payroll.WeekKey{Year: year, Week: week}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func workDay(r payroll.WorkRecord) time.Time {
	if r.Date.IsZero() && r.TimeIn != nil {
		return dateOnly(*r.TimeIn)
	}
	return dateOnly(r.Date)
}

// Calculate runs the payroll engine over records belonging to employeeID
// whose work day falls in [from, to]. A zero from or to leaves that side
// open. It never fails: records with unusable timestamps contribute zero
// hours and carry a DataWarning.
func Calculate(records []payroll.WorkRecord, settings payroll.Settings, employeeID string, from, to time.Time) payroll.Calculation {
	calc := payroll.Calculation{
		EmployeeID: employeeID,
		From:       from,
		To:         to,
		Totals: payroll.Totals{
			RegularHours:         decimal.Zero,
			DailyOvertimeMinutes: decimal.Zero,
			WeeklyOvertimeHours:  decimal.Zero,
			RegularPay:           decimal.Zero,
			DailyOvertimePay:     decimal.Zero,
			WeeklyOvertimePay:    decimal.Zero,
		},
		Breakdown: []payroll.BreakdownRow{},
	}
	if employeeID == "" {
		return calc
	}

	var lower, upper time.Time
	if !from.IsZero() {
		lower = dateOnly(from)
	}
	if !to.IsZero() {
		upper = dateOnly(to)
	}

	selected := make([]payroll.WorkRecord, 0, len(records))
	for _, r := range records {
		if r.EmployeeID != employeeID {
			continue
		}
		day := workDay(r)
		if !lower.IsZero() && day.Before(lower) {
			continue
		}
		if !upper.IsZero() && day.After(upper) {
			continue
		}
		selected = append(selected, r)
	}

	// Stable row order for reports; totals do not depend on it.
	sort.SliceStable(selected, func(i, j int) bool {
		di, dj := workDay(selected[i]), workDay(selected[j])
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		ti, tj := selected[i].TimeIn, selected[j].TimeIn
		if ti == nil || tj == nil {
			return ti != nil
		}
		return ti.Before(*tj)
	})

	weeks := make(map[payroll.WeekKey]decimal.Decimal)
	for _, r := range selected {
		day := workDay(r)
		hours := WorkedHours(r.TimeIn, r.TimeOut)
		regular, overtime := SplitDaily(hours, settings.DailyRegularHoursLimit)
		overtimeMinutes := overtime.Mul(minsPerHour)
		key := WeekKeyOf(day)

		weeks[key] = weeks[key].Add(regular)
		calc.Totals.DailyOvertimeMinutes = calc.Totals.DailyOvertimeMinutes.Add(overtimeMinutes)
		calc.Totals.RecordCount++

		row := payroll.BreakdownRow{
			RecordID:           r.ID,
			Date:               day,
			TimeIn:             r.TimeIn,
			TimeOut:            r.TimeOut,
			Hours:              hours,
			DailyRegularHours:  regular,
			DailyOvertimeHours: overtime,
			DailyRegularPay:    regular.Mul(settings.RegularRate),
			DailyOvertimePay:   overtimeMinutes.Mul(settings.DailyOvertimeRatePerMinute),
			WeekKey:            key,
			DataWarning:        dataWarning(r),
		}
		if row.DataWarning != "" {
			calc.Totals.WarningCount++
		}
		calc.Breakdown = append(calc.Breakdown, row)
	}

	for _, accumulated := range weeks {
		if accumulated.GreaterThan(settings.RegularHoursLimit) {
			calc.Totals.WeeklyOvertimeHours = calc.Totals.WeeklyOvertimeHours.Add(accumulated.Sub(settings.RegularHoursLimit))
			calc.Totals.RegularHours = calc.Totals.RegularHours.Add(settings.RegularHoursLimit)
		} else {
			calc.Totals.RegularHours = calc.Totals.RegularHours.Add(accumulated)
		}
	}

	calc.Totals.RegularPay = calc.Totals.RegularHours.Mul(settings.RegularRate)
	calc.Totals.DailyOvertimePay = calc.Totals.DailyOvertimeMinutes.Mul(settings.DailyOvertimeRatePerMinute)
	calc.Totals.WeeklyOvertimePay = calc.Totals.WeeklyOvertimeHours.Mul(settings.OvertimeRate)

	return calc
}

// BuildSummary is Calculate followed by display rounding.
func BuildSummary(records []payroll.WorkRecord, settings payroll.Settings, employeeID string, from, to time.Time) payroll.SummaryResponse {
	return payroll.NewSummaryResponse(Calculate(records, settings, employeeID, from, to))
}

func dataWarning(r payroll.WorkRecord) string {
	if r.Warning != "" {
		return r.Warning
	}
	switch {
	case r.TimeIn == nil && r.TimeOut != nil:
		return "missing time in"
	case r.TimeIn != nil && r.TimeOut != nil && r.TimeOut.Sub(*r.TimeIn) < -24*time.Hour:
		return "time out precedes time in by more than a day"
	}
	return ""
}
