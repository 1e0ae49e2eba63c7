package payroll

import (
	"context"
	"io"
)

type PayrollService interface {
	GetSettings(ctx context.Context) (SettingsResponse, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)

	// GetSummary computes pay for one employee over an inclusive date range.
	GetSummary(ctx context.Context, filter SummaryFilter) (SummaryResponse, error)

	// ExportReport writes the same summary as CSV.
	ExportReport(ctx context.Context, filter SummaryFilter, w io.Writer) error
}
