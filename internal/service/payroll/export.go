package payroll

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/officecorner/officecorner-backend-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var reportHeader = []string{
	"date", "time_in", "time_out", "week",
	"hours", "regular_hours", "overtime_hours",
	"regular_pay", "overtime_pay", "warning",
}

// ExportCSV writes the per-record breakdown of summary followed by a totals footer.
func ExportCSV(w io.Writer, summary payroll.SummaryResponse) error {
	p := message.NewPrinter(language.English)
	amount := func(d decimal.Decimal) string {
		return p.Sprintf("%.2f", d.InexactFloat64())
	}
	optional := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}

	for _, row := range summary.Breakdown {
		record := []string{
			row.Date,
			optional(row.TimeIn),
			optional(row.TimeOut),
			row.WeekKey,
			amount(row.Hours),
			amount(row.DailyRegularHours),
			amount(row.DailyOvertimeHours),
			amount(row.DailyRegularPay),
			amount(row.DailyOvertimePay),
			row.DataWarning,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}

	footer := [][]string{
		{},
		{"employee_id", summary.EmployeeID},
		{"period", summary.StartDate, summary.EndDate},
		{"total_hours", amount(summary.TotalHours)},
		{"regular_hours", amount(summary.RegularHours)},
		{"overtime_hours", amount(summary.OvertimeHours)},
		{"regular_pay", amount(summary.RegularPay)},
		{"daily_overtime_pay", amount(summary.DailyOvertimePay)},
		{"weekly_overtime_pay", amount(summary.WeeklyOvertimePay)},
		{"total_pay", amount(summary.TotalPay)},
	}
	if err := cw.WriteAll(footer); err != nil {
		return fmt.Errorf("write report totals: %w", err)
	}

	return cw.Error()
}
