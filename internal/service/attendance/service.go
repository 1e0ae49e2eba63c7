package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/officecorner/officecorner-backend-go/internal/domain/attendance"
	"github.com/officecorner/officecorner-backend-go/internal/domain/payroll"
	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt"
	"github.com/officecorner/officecorner-backend-go/internal/repository/postgresql"
	payrollsvc "github.com/officecorner/officecorner-backend-go/internal/service/payroll"
)

// Policy classifies clock-in times. WorkdayStart is HH:MM in Location.
type Policy struct {
	WorkdayStart string
	LateGrace    time.Duration
	Location     *time.Location
}

type AttendanceServiceImpl struct {
	tx          postgresql.TxManager
	attendances attendance.AttendanceRepository
	users       user.UserRepository
	settings    payroll.PayrollRepository
	policy      Policy
	now         func() time.Time
}

func NewAttendanceService(
	tx postgresql.TxManager,
	attendanceRepo attendance.AttendanceRepository,
	userRepo user.UserRepository,
	payrollRepo payroll.PayrollRepository,
	policy Policy,
) attendance.AttendanceService {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &AttendanceServiceImpl{
		tx:          tx,
		attendances: attendanceRepo,
		users:       userRepo,
		settings:    payrollRepo,
		policy:      policy,
		now:         time.Now,
	}
}

// workDay is the calendar day of t in the policy location, stored as a UTC date.
func (s *AttendanceServiceImpl) workDay(t time.Time) time.Time {
	local := t.In(s.policy.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *AttendanceServiceImpl) isLate(clockIn time.Time) bool {
	start, err := time.Parse("15:04", s.policy.WorkdayStart)
	if err != nil {
		return false
	}
	local := clockIn.In(s.policy.Location)
	deadline := time.Date(local.Year(), local.Month(), local.Day(), start.Hour(), start.Minute(), 0, 0, s.policy.Location).
		Add(s.policy.LateGrace)
	return local.After(deadline)
}

// overtime reports whether the span exceeds the daily regular hours limit.
func (s *AttendanceServiceImpl) overtime(ctx context.Context, in, out *time.Time) bool {
	if in == nil || out == nil {
		return false
	}
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		if !errors.Is(err, payroll.ErrPayrollSettingsNotFound) {
			slog.Warn("falling back to default payroll settings", "error", err)
		}
		settings = payroll.DefaultSettings()
	}
	return payrollsvc.WorkedHours(in, out).GreaterThan(settings.DailyRegularHoursLimit)
}

// ClockIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	today := s.workDay(now)

	var created attendance.Attendance
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		open, err := s.attendances.GetOpenSession(txCtx, claims.UserID)
		switch {
		case err == nil && open.Date.Equal(today):
			return attendance.ErrAlreadyCheckedIn
		case err == nil:
			slog.Warn("clocking in over a stale open record", "employee_id", claims.UserID, "open_date", open.Date.Format("2006-01-02"))
		case !errors.Is(err, attendance.ErrAttendanceNotFound):
			return fmt.Errorf("failed to get open attendance: %w", err)
		}

		created, err = s.attendances.Create(txCtx, attendance.Attendance{
			EmployeeID: claims.UserID,
			Date:       today,
			ClockIn:    &now,
			Status:     attendance.StatusPresent,
			IsLate:     s.isLate(now),
			Notes:      req.Notes,
			CreatedBy:  &claims.UserID,
		})
		if errors.Is(err, attendance.ErrOpenRecordExists) {
			return attendance.ErrAlreadyCheckedIn
		}
		if err != nil {
			return fmt.Errorf("failed to create attendance record: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.NewAttendanceResponse(created), nil
}

// ClockOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()

	var closed attendance.Attendance
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		open, err := s.attendances.GetOpenSession(txCtx, claims.UserID)
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.ErrNotCheckedIn
		}
		if err != nil {
			return fmt.Errorf("failed to get open attendance: %w", err)
		}

		open.ClockOut = &now
		open.IsOvertime = s.overtime(txCtx, open.ClockIn, open.ClockOut)
		if req.Notes != nil {
			open.Notes = req.Notes
		}

		if err := s.attendances.Update(txCtx, open); err != nil {
			return fmt.Errorf("failed to close attendance record: %w", err)
		}
		closed = open
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return attendance.NewAttendanceResponse(closed), nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.ListAttendanceResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	return s.list(ctx, filter.ForEmployee(claims.UserID))
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	return s.list(ctx, filter)
}

func (s *AttendanceServiceImpl) list(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.attendances.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, attendance.NewAttendanceResponse(r))
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int(math.Ceil(float64(total) / float64(filter.Limit))),
		Attendances: responses,
	}, nil
}

// CreateAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CreateAttendance(ctx context.Context, req attendance.CreateAttendanceRequest) (attendance.AttendanceResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !claims.IsAdmin() {
		return attendance.AttendanceResponse{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	day, _ := req.WorkDay()
	record := attendance.Attendance{
		EmployeeID: req.EmployeeID,
		Date:       day,
		Status:     attendance.Status(req.Status),
		Notes:      req.Notes,
		CreatedBy:  &claims.UserID,
	}

	localDay := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.policy.Location)
	if req.TimeIn != "" {
		in, ok := payrollsvc.ParseTimestamp(req.TimeIn, localDay)
		if !ok {
			return attendance.AttendanceResponse{}, attendance.ErrInvalidTimestamp
		}
		in = in.UTC()
		record.ClockIn = &in
	}
	if req.TimeOut != "" {
		out, ok := payrollsvc.ParseTimestamp(req.TimeOut, localDay)
		if !ok {
			return attendance.AttendanceResponse{}, attendance.ErrInvalidTimestamp
		}
		// a bare clock time earlier than time in belongs to the next day
		if record.ClockIn != nil && out.Before(*record.ClockIn) && isClockOnly(req.TimeOut) {
			out = out.Add(24 * time.Hour)
		}
		out = out.UTC()
		record.ClockOut = &out
	}
	if record.ClockIn != nil && record.ClockOut != nil && !record.ClockOut.After(*record.ClockIn) {
		return attendance.AttendanceResponse{}, attendance.ErrInvalidTimeRange
	}

	record.IsLate = record.ClockIn != nil && s.isLate(*record.ClockIn)
	if req.IsLate != nil {
		record.IsLate = *req.IsLate
	}
	record.IsOvertime = s.overtime(ctx, record.ClockIn, record.ClockOut)
	if req.IsOvertime != nil {
		record.IsOvertime = *req.IsOvertime
	}

	var created attendance.Attendance
	err = s.tx.WithinTx(ctx, func(txCtx context.Context) error {
		if _, err := s.users.GetByID(txCtx, req.EmployeeID); err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return attendance.ErrEmployeeNotFound
			}
			return fmt.Errorf("failed to get employee: %w", err)
		}

		created, err = s.attendances.Create(txCtx, record)
		if err != nil {
			if errors.Is(err, attendance.ErrOpenRecordExists) {
				return err
			}
			return fmt.Errorf("failed to create attendance record: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("manual attendance recorded", "attendance_id", created.ID, "employee_id", created.EmployeeID, "admin_id", claims.UserID)
	return attendance.NewAttendanceResponse(created), nil
}

// DeleteAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteAttendance(ctx context.Context, id string) error {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return err
	}
	if !claims.IsAdmin() {
		return user.ErrAdminPrivilegeRequired
	}

	if err := s.attendances.Delete(ctx, id); err != nil {
		if errors.Is(err, attendance.ErrAttendanceNotFound) {
			return attendance.ErrAttendanceNotFound
		}
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	return nil
}

func isClockOnly(raw string) bool {
	return !strings.ContainsAny(strings.TrimSpace(raw), "-T")
}
