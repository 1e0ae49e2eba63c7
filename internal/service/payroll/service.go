package payroll

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/officecorner/officecorner-backend-go/internal/domain/attendance"
	"github.com/officecorner/officecorner-backend-go/internal/domain/payroll"
	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt"
	"golang.org/x/sync/errgroup"
)

type PayrollServiceImpl struct {
	payrollRepo    payroll.PayrollRepository
	attendanceRepo attendance.AttendanceRepository
	userRepo       user.UserRepository
}

func NewPayrollService(
	payrollRepo payroll.PayrollRepository,
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		payrollRepo:    payrollRepo,
		attendanceRepo: attendanceRepo,
		userRepo:       userRepo,
	}
}

// ========== SETTINGS ==========

// loadSettings returns stored settings, or the defaults until an admin saves some.
func (s *PayrollServiceImpl) loadSettings(ctx context.Context) (payroll.Settings, error) {
	settings, err := s.payrollRepo.GetSettings(ctx)
	if errors.Is(err, payroll.ErrPayrollSettingsNotFound) {
		return payroll.DefaultSettings(), nil
	}
	if err != nil {
		return payroll.Settings{}, fmt.Errorf("failed to get payroll settings: %w", err)
	}
	return settings, nil
}

func (s *PayrollServiceImpl) GetSettings(ctx context.Context) (payroll.SettingsResponse, error) {
	settings, err := s.loadSettings(ctx)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}
	return payroll.NewSettingsResponse(settings), nil
}

func (s *PayrollServiceImpl) UpdateSettings(ctx context.Context, req payroll.UpdateSettingsRequest) (payroll.SettingsResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}
	if !claims.IsAdmin() {
		return payroll.SettingsResponse{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return payroll.SettingsResponse{}, err
	}

	current, err := s.loadSettings(ctx)
	if err != nil {
		return payroll.SettingsResponse{}, err
	}

	next := req.Apply(current)
	next.UpdatedBy = &claims.UserID

	saved, err := s.payrollRepo.UpsertSettings(ctx, next)
	if err != nil {
		return payroll.SettingsResponse{}, fmt.Errorf("failed to save payroll settings: %w", err)
	}

	slog.Info("payroll settings updated", "admin_id", claims.UserID)
	return payroll.NewSettingsResponse(saved), nil
}

// ========== SUMMARY ==========

// resolveEmployee picks whose payroll to compute. Employees only see their own.
func resolveEmployee(claims jwt.Claims, requested *string) (string, error) {
	if requested == nil || *requested == claims.UserID {
		return claims.UserID, nil
	}
	if !claims.IsAdmin() {
		return "", payroll.ErrForbiddenEmployee
	}
	return *requested, nil
}

func (s *PayrollServiceImpl) GetSummary(ctx context.Context, filter payroll.SummaryFilter) (payroll.SummaryResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return payroll.SummaryResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return payroll.SummaryResponse{}, err
	}

	employeeID, err := resolveEmployee(claims, filter.EmployeeID)
	if err != nil {
		return payroll.SummaryResponse{}, err
	}

	var (
		settings payroll.Settings
		records  []attendance.Attendance
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if _, err := s.userRepo.GetByID(gctx, employeeID); err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return payroll.ErrEmployeeNotFound
			}
			return fmt.Errorf("failed to get employee: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		settings, err = s.loadSettings(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListByEmployeeRange(gctx, employeeID, filter.From, filter.To)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return payroll.SummaryResponse{}, err
	}

	summary := BuildSummary(FromAttendance(records), settings, employeeID, filter.From, filter.To)
	if summary.WarningCount > 0 {
		slog.Warn("payroll summary has records with data warnings",
			"employee_id", employeeID,
			"warnings", summary.WarningCount,
			"start_date", summary.StartDate,
			"end_date", summary.EndDate,
		)
	}
	return summary, nil
}

func (s *PayrollServiceImpl) ExportReport(ctx context.Context, filter payroll.SummaryFilter, w io.Writer) error {
	summary, err := s.GetSummary(ctx, filter)
	if err != nil {
		return err
	}
	return ExportCSV(w, summary)
}
