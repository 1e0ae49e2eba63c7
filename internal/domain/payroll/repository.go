package payroll

import "context"

// PayrollRepository persists the organisation's payroll settings.
type PayrollRepository interface {
	GetSettings(ctx context.Context) (Settings, error)
	UpsertSettings(ctx context.Context, settings Settings) (Settings, error)
}
