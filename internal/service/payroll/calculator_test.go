package payroll

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/officecorner/officecorner-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const employeeID = "0193a4f2-1c2d-7e3f-8a9b-0c1d2e3f4a5b"

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

// rec builds a record on date with clock-time timestamps; empty strings mean absent.
func rec(t *testing.T, date, in, out string) payroll.WorkRecord {
	t.Helper()
	day := mustDate(t, date)
	r := payroll.WorkRecord{
		ID:         fmt.Sprintf("%s-%s", date, in),
		EmployeeID: employeeID,
		Date:       day,
		Status:     "present",
	}
	if in != "" {
		ts, ok := ParseTimestamp(in, day)
		require.True(t, ok)
		r.TimeIn = &ts
	}
	if out != "" {
		ts, ok := ParseTimestamp(out, day)
		require.True(t, ok)
		r.TimeOut = &ts
	}
	return r
}

func assertAmount(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Equal(t, want, got.StringFixed(2), field)
}

func TestParseTimestamp(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2024-03-04T09:00:00Z", time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), true},
		{"2024-03-04T09:00:00.123456789Z", time.Date(2024, 3, 4, 9, 0, 0, 123456789, time.UTC), true},
		{"2024-03-04T09:30:00", time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC), true},
		{"2024-03-04 17:45:10", time.Date(2024, 3, 4, 17, 45, 10, 0, time.UTC), true},
		{"08:15", time.Date(2024, 3, 4, 8, 15, 0, 0, time.UTC), true},
		{" 18:00:30 ", time.Date(2024, 3, 4, 18, 0, 30, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"not a time", time.Time{}, false},
		{"25:00", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.raw, day)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestParseTimestamp_OffsetlessInputUsesDayZone(t *testing.T) {
	zone := time.FixedZone("UTC+7", 7*60*60)
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, zone)
	want := time.Date(2024, 3, 4, 2, 0, 0, 0, time.UTC)

	for _, raw := range []string{"09:00", "2024-03-04T09:00:00", "2024-03-04 09:00:00", "2024-03-04T02:00:00Z", "2024-03-04T09:00:00+07:00"} {
		got, ok := ParseTimestamp(raw, day)
		require.True(t, ok, raw)
		assert.True(t, want.Equal(got), "%s parsed as %s", raw, got)
	}
}

func TestWorkedHours(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	at := func(h, m int) *time.Time {
		ts := day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
		return &ts
	}

	t.Run("missing timestamps yield zero", func(t *testing.T) {
		assert.True(t, WorkedHours(nil, nil).IsZero())
		assert.True(t, WorkedHours(at(9, 0), nil).IsZero())
		assert.True(t, WorkedHours(nil, at(17, 0)).IsZero())
	})

	t.Run("same day", func(t *testing.T) {
		assert.Equal(t, "8", WorkedHours(at(9, 0), at(17, 0)).String())
		assert.Equal(t, "7.50", WorkedHours(at(9, 0), at(16, 30)).StringFixed(2))
	})

	t.Run("overnight adds one day", func(t *testing.T) {
		// 22:00 -> 06:00 recorded on the same date
		got := WorkedHours(at(22, 0), at(6, 0))
		assert.Equal(t, "8", got.String())
	})

	t.Run("corrected duration is never negative", func(t *testing.T) {
		for in := 0; in < 24; in++ {
			for out := 0; out < 24; out++ {
				got := WorkedHours(at(in, 0), at(out, 0))
				assert.False(t, got.IsNegative(), "in=%d out=%d", in, out)
				if out < in {
					want := decimal.NewFromInt(int64(out + 24 - in))
					assert.True(t, want.Equal(got), "in=%d out=%d got=%s", in, out, got)
				}
			}
		}
	})

	t.Run("more than one midnight is not assumed", func(t *testing.T) {
		in := day.Add(72 * time.Hour)
		out := day
		assert.True(t, WorkedHours(&in, &out).IsZero())
	})
}

func TestSplitDaily(t *testing.T) {
	limits := []string{"0", "4", "8", "7.5", "12"}
	totals := []string{"0", "0.25", "7.9999", "8", "8.0001", "10", "13.333333"}

	for _, l := range limits {
		for _, tot := range totals {
			limit := decimal.RequireFromString(l)
			total := decimal.RequireFromString(tot)
			regular, overtime := SplitDaily(total, limit)

			assert.True(t, regular.Add(overtime).Equal(total), "total=%s limit=%s", tot, l)
			assert.False(t, overtime.IsNegative())
			assert.True(t, regular.LessThanOrEqual(limit))
		}
	}
}

func TestWeekKeyOf(t *testing.T) {
	t.Run("monday to sunday share a key", func(t *testing.T) {
		monday := mustDate(t, "2024-01-08")
		want := WeekKeyOf(monday)
		for i := 1; i < 7; i++ {
			assert.Equal(t, want, WeekKeyOf(monday.AddDate(0, 0, i)))
		}
		assert.NotEqual(t, want, WeekKeyOf(monday.AddDate(0, 0, 7)))
		assert.NotEqual(t, want, WeekKeyOf(monday.AddDate(0, 0, -1)))
	})

	t.Run("year boundary", func(t *testing.T) {
		assert.Equal(t, payroll.WeekKey{Year: 2024, Week: 1}, WeekKeyOf(mustDate(t, "2024-01-01")))
		assert.Equal(t, payroll.WeekKey{Year: 2023, Week: 52}, WeekKeyOf(mustDate(t, "2023-12-31")))
		assert.Equal(t, payroll.WeekKey{Year: 2020, Week: 53}, WeekKeyOf(mustDate(t, "2021-01-01")))
		assert.Equal(t, payroll.WeekKey{Year: 2025, Week: 1}, WeekKeyOf(mustDate(t, "2024-12-30")))
	})

	t.Run("string form", func(t *testing.T) {
		assert.Equal(t, "2020-W53", WeekKeyOf(mustDate(t, "2021-01-01")).String())
		assert.Equal(t, "2024-W05", WeekKeyOf(mustDate(t, "2024-02-01")).String())
	})
}

func TestCalculate_Scenarios(t *testing.T) {
	settings := payroll.DefaultSettings()
	from := mustDate(t, "2024-01-01")
	to := mustDate(t, "2024-01-31")

	t.Run("A: single 8h day", func(t *testing.T) {
		records := []payroll.WorkRecord{rec(t, "2024-01-08", "09:00", "17:00")}
		s := BuildSummary(records, settings, employeeID, from, to)

		assertAmount(t, "8.00", s.RegularHours, "regular_hours")
		assertAmount(t, "0.00", s.OvertimeHours, "overtime_hours")
		assertAmount(t, "360.00", s.TotalPay, "total_pay")
	})

	t.Run("B: single 10h day", func(t *testing.T) {
		records := []payroll.WorkRecord{rec(t, "2024-01-08", "09:00", "19:00")}
		calc := Calculate(records, settings, employeeID, from, to)
		s := payroll.NewSummaryResponse(calc)

		require.Len(t, calc.Breakdown, 1)
		assertAmount(t, "8.00", calc.Breakdown[0].DailyRegularHours, "daily_regular")
		assertAmount(t, "2.00", calc.Breakdown[0].DailyOvertimeHours, "daily_overtime")
		assertAmount(t, "120.00", s.DailyOvertimeMinutes, "daily_overtime_minutes")
		assertAmount(t, "132.00", s.DailyOvertimePay, "daily_overtime_pay")
		assertAmount(t, "360.00", s.RegularPay, "regular_pay")
		assertAmount(t, "492.00", s.TotalPay, "total_pay")
		assertAmount(t, "10.00", s.TotalHours, "total_hours")
	})

	t.Run("C: five 9h weekdays in one ISO week", func(t *testing.T) {
		var records []payroll.WorkRecord
		for _, d := range []string{"2024-01-08", "2024-01-09", "2024-01-10", "2024-01-11", "2024-01-12"} {
			records = append(records, rec(t, d, "08:00", "17:00"))
		}
		s := BuildSummary(records, settings, employeeID, from, to)

		assertAmount(t, "300.00", s.DailyOvertimeMinutes, "daily_overtime_minutes")
		assertAmount(t, "0.00", s.WeeklyOvertimeHours, "weekly_overtime_hours")
		assertAmount(t, "330.00", s.DailyOvertimePay, "daily_overtime_pay")
		assertAmount(t, "1800.00", s.RegularPay, "regular_pay")
		assertAmount(t, "2130.00", s.TotalPay, "total_pay")
		assertAmount(t, "40.00", s.RegularHours, "regular_hours")
		assertAmount(t, "5.00", s.OvertimeHours, "overtime_hours")
		assertAmount(t, "45.00", s.TotalHours, "total_hours")
	})

	t.Run("D: no records", func(t *testing.T) {
		s := BuildSummary(nil, settings, employeeID, from, to)

		for name, v := range map[string]decimal.Decimal{
			"total_hours": s.TotalHours, "regular_hours": s.RegularHours, "overtime_hours": s.OvertimeHours,
			"regular_pay": s.RegularPay, "overtime_pay": s.OvertimePay, "total_pay": s.TotalPay,
		} {
			assertAmount(t, "0.00", v, name)
		}
		assert.Equal(t, 0, s.RecordCount)
		assert.NotNil(t, s.Breakdown)
	})
}

func TestCalculate_WeeklyOvertime(t *testing.T) {
	settings := payroll.DefaultSettings()

	// Monday..Saturday, 8h each: 48 daily-regular hours in one week.
	var records []payroll.WorkRecord
	monday := mustDate(t, "2024-01-08")
	for i := 0; i < 6; i++ {
		records = append(records, rec(t, monday.AddDate(0, 0, i).Format("2006-01-02"), "09:00", "17:00"))
	}

	s := BuildSummary(records, settings, employeeID, time.Time{}, time.Time{})
	assertAmount(t, "40.00", s.RegularHours, "regular_hours")
	assertAmount(t, "8.00", s.WeeklyOvertimeHours, "weekly_overtime_hours")
	assertAmount(t, "540.00", s.WeeklyOvertimePay, "weekly_overtime_pay")
	assertAmount(t, "2340.00", s.TotalPay, "total_pay")
}

func TestCalculate_Filtering(t *testing.T) {
	settings := payroll.DefaultSettings()
	other := rec(t, "2024-01-09", "09:00", "17:00")
	other.EmployeeID = "someone-else"

	records := []payroll.WorkRecord{
		rec(t, "2024-01-07", "09:00", "17:00"), // before range
		rec(t, "2024-01-08", "09:00", "17:00"),
		rec(t, "2024-01-10", "09:00", "17:00"),
		rec(t, "2024-01-11", "09:00", "17:00"), // after range
		other,
	}

	// Time-of-day on the bounds must not matter.
	from := time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	calc := Calculate(records, settings, employeeID, from, to)
	assert.Equal(t, 2, calc.Totals.RecordCount)
	assertAmount(t, "16.00", calc.Totals.RegularHours, "regular_hours")

	t.Run("no employee selected", func(t *testing.T) {
		s := BuildSummary(records, settings, "", from, to)
		assertAmount(t, "0.00", s.TotalPay, "total_pay")
		assert.Equal(t, 0, s.RecordCount)
	})
}

func TestCalculate_DataWarnings(t *testing.T) {
	settings := payroll.DefaultSettings()

	missingIn := rec(t, "2024-01-08", "", "17:00")
	unparsed := rec(t, "2024-01-09", "", "")
	unparsed.Warning = `unparseable time in "9am"`
	open := rec(t, "2024-01-10", "09:00", "")

	calc := Calculate([]payroll.WorkRecord{missingIn, unparsed, open}, settings, employeeID, time.Time{}, time.Time{})

	assert.Equal(t, 3, calc.Totals.RecordCount)
	assert.Equal(t, 2, calc.Totals.WarningCount)
	assert.True(t, calc.Totals.TotalHours().IsZero())
	assert.Equal(t, "missing time in", calc.Breakdown[0].DataWarning)
	assert.Equal(t, `unparseable time in "9am"`, calc.Breakdown[1].DataWarning)
	assert.Empty(t, calc.Breakdown[2].DataWarning)
}

func TestCalculate_Properties(t *testing.T) {
	settings := payroll.DefaultSettings()
	rng := rand.New(rand.NewSource(42))

	start := mustDate(t, "2023-12-18")
	var records []payroll.WorkRecord
	for i := 0; i < 40; i++ {
		day := start.AddDate(0, 0, rng.Intn(35)).Format("2006-01-02")
		in := fmt.Sprintf("%02d:%02d", 6+rng.Intn(6), rng.Intn(60))
		out := fmt.Sprintf("%02d:%02d", rng.Intn(24), rng.Intn(60))
		records = append(records, rec(t, day, in, out))
	}

	base := Calculate(records, settings, employeeID, time.Time{}, time.Time{})

	t.Run("total pay is the sum of its parts", func(t *testing.T) {
		tot := base.Totals
		sum := tot.RegularPay.Add(tot.DailyOvertimePay).Add(tot.WeeklyOvertimePay)
		assert.True(t, sum.Equal(tot.TotalPay()))
	})

	t.Run("breakdown rows split exactly", func(t *testing.T) {
		for _, row := range base.Breakdown {
			assert.True(t, row.DailyRegularHours.Add(row.DailyOvertimeHours).Equal(row.Hours))
		}
	})

	t.Run("order does not matter", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			shuffled := append([]payroll.WorkRecord(nil), records...)
			rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

			got := Calculate(shuffled, settings, employeeID, time.Time{}, time.Time{})
			assert.True(t, base.Totals.RegularHours.Equal(got.Totals.RegularHours))
			assert.True(t, base.Totals.WeeklyOvertimeHours.Equal(got.Totals.WeeklyOvertimeHours))
			assert.True(t, base.Totals.TotalPay().Equal(got.Totals.TotalPay()))
		}
	})
}

func TestNewSummaryResponse_Rounding(t *testing.T) {
	settings := payroll.DefaultSettings()
	records := []payroll.WorkRecord{rec(t, "2024-01-08", "09:00", "16:20")}

	s := BuildSummary(records, settings, employeeID, time.Time{}, time.Time{})
	assertAmount(t, "7.33", s.TotalHours, "total_hours")
	assertAmount(t, "330.00", s.RegularPay, "regular_pay")
	require.Len(t, s.Breakdown, 1)
	assert.Equal(t, "2024-01-08", s.Breakdown[0].Date)
	assert.Equal(t, "2024-W02", s.Breakdown[0].WeekKey)
}
