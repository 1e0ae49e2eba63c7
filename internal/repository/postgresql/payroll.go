package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/officecorner/officecorner-backend-go/internal/domain/payroll"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/database"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

func (r *payrollRepository) GetSettings(ctx context.Context) (payroll.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, regular_rate, overtime_rate, regular_hours_limit,
			   daily_regular_hours_limit, daily_overtime_rate_per_minute,
			   updated_by, created_at, updated_at
		FROM payroll_settings
		WHERE singleton
	`

	var s payroll.Settings
	err := q.QueryRow(ctx, query).Scan(
		&s.ID, &s.RegularRate, &s.OvertimeRate, &s.RegularHoursLimit,
		&s.DailyRegularHoursLimit, &s.DailyOvertimeRatePerMinute,
		&s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Settings{}, payroll.ErrPayrollSettingsNotFound
		}
		return payroll.Settings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}

	return s, nil
}

func (r *payrollRepository) UpsertSettings(ctx context.Context, settings payroll.Settings) (payroll.Settings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_settings (
			singleton, regular_rate, overtime_rate, regular_hours_limit,
			daily_regular_hours_limit, daily_overtime_rate_per_minute, updated_by
		)
		VALUES (TRUE, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (singleton) DO UPDATE SET
			regular_rate = EXCLUDED.regular_rate,
			overtime_rate = EXCLUDED.overtime_rate,
			regular_hours_limit = EXCLUDED.regular_hours_limit,
			daily_regular_hours_limit = EXCLUDED.daily_regular_hours_limit,
			daily_overtime_rate_per_minute = EXCLUDED.daily_overtime_rate_per_minute,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING id, regular_rate, overtime_rate, regular_hours_limit,
				  daily_regular_hours_limit, daily_overtime_rate_per_minute,
				  updated_by, created_at, updated_at
	`

	var s payroll.Settings
	err := q.QueryRow(ctx, query,
		settings.RegularRate, settings.OvertimeRate, settings.RegularHoursLimit,
		settings.DailyRegularHoursLimit, settings.DailyOvertimeRatePerMinute, settings.UpdatedBy,
	).Scan(
		&s.ID, &s.RegularRate, &s.OvertimeRate, &s.RegularHoursLimit,
		&s.DailyRegularHoursLimit, &s.DailyOvertimeRatePerMinute,
		&s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("failed to upsert payroll settings: %w", err)
	}

	return s, nil
}
