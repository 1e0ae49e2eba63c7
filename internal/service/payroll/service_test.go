package payroll

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/officecorner/officecorner-backend-go/internal/domain/attendance"
	"github.com/officecorner/officecorner-backend-go/internal/domain/payroll"
	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt/jwttest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettingsRepo struct {
	stored *payroll.Settings
	err    error
}

func (r *fakeSettingsRepo) GetSettings(context.Context) (payroll.Settings, error) {
	if r.err != nil {
		return payroll.Settings{}, r.err
	}
	if r.stored == nil {
		return payroll.Settings{}, payroll.ErrPayrollSettingsNotFound
	}
	return *r.stored, nil
}

func (r *fakeSettingsRepo) UpsertSettings(_ context.Context, s payroll.Settings) (payroll.Settings, error) {
	s.ID = "settings"
	s.UpdatedAt = time.Now()
	r.stored = &s
	return s, nil
}

type fakeAttendanceRepo struct {
	attendance.AttendanceRepository
	records []attendance.Attendance
}

func (r *fakeAttendanceRepo) ListByEmployeeRange(_ context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, a := range r.records {
		if a.EmployeeID == employeeID && !a.Date.Before(from) && !a.Date.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	user.UserRepository
}

func (fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	if id == "ghost" {
		return user.User{}, user.ErrUserNotFound
	}
	return user.User{ID: id}, nil
}

func stored(t *testing.T, employee, date, in, out string) attendance.Attendance {
	t.Helper()
	r := rec(t, date, in, out)
	return attendance.Attendance{
		ID:         r.ID,
		EmployeeID: employee,
		Date:       r.Date,
		ClockIn:    r.TimeIn,
		ClockOut:   r.TimeOut,
		Status:     attendance.StatusPresent,
	}
}

func newPayrollFixture(t *testing.T) (*PayrollServiceImpl, *fakeSettingsRepo) {
	settings := &fakeSettingsRepo{}
	attendances := &fakeAttendanceRepo{records: []attendance.Attendance{
		stored(t, employeeID, "2024-01-08", "09:00", "17:00"),
		stored(t, employeeID, "2024-01-09", "09:00", "19:00"),
		stored(t, employeeID, "2024-02-01", "09:00", "17:00"),
		stored(t, "other", "2024-01-08", "09:00", "17:00"),
	}}
	svc := NewPayrollService(settings, attendances, fakeUserRepo{}).(*PayrollServiceImpl)
	return svc, settings
}

func TestGetSettings_DefaultsUntilSaved(t *testing.T) {
	svc, repo := newPayrollFixture(t)

	resp, err := svc.GetSettings(context.Background())
	require.NoError(t, err)
	assertAmount(t, "45.00", resp.RegularRate, "regular_rate")
	assert.Nil(t, resp.UpdatedAt)

	repo.err = errors.New("db down")
	_, err = svc.GetSettings(context.Background())
	assert.Error(t, err)
}

func TestUpdateSettings(t *testing.T) {
	svc, repo := newPayrollFixture(t)
	rate := decimal.NewFromInt(50)

	_, err := svc.UpdateSettings(jwttest.Employee(t, employeeID), payroll.UpdateSettingsRequest{RegularRate: &rate})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	resp, err := svc.UpdateSettings(jwttest.Admin(t, "adm-1"), payroll.UpdateSettingsRequest{RegularRate: &rate})
	require.NoError(t, err)
	assertAmount(t, "50.00", resp.RegularRate, "regular_rate")
	assertAmount(t, "67.50", resp.OvertimeRate, "overtime_rate kept from defaults")
	require.NotNil(t, repo.stored.UpdatedBy)
	assert.Equal(t, "adm-1", *repo.stored.UpdatedBy)

	negative := decimal.NewFromInt(-1)
	_, err = svc.UpdateSettings(jwttest.Admin(t, "adm-1"), payroll.UpdateSettingsRequest{OvertimeRate: &negative})
	assert.Error(t, err)
}

func TestGetSummary(t *testing.T) {
	svc, _ := newPayrollFixture(t)

	resp, err := svc.GetSummary(jwttest.Employee(t, employeeID), payroll.SummaryFilter{
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, employeeID, resp.EmployeeID)
	assert.Equal(t, 2, resp.RecordCount)
	assertAmount(t, "18.00", resp.TotalHours, "total_hours")
	assertAmount(t, "16.00", resp.RegularHours, "regular_hours")
	// 2h over the daily limit at 1.1 per minute
	assertAmount(t, "132.00", resp.DailyOvertimePay, "daily_overtime_pay")
	assertAmount(t, "852.00", resp.TotalPay, "total_pay")
}

func TestGetSummary_Access(t *testing.T) {
	svc, _ := newPayrollFixture(t)
	filter := func(id string) payroll.SummaryFilter {
		return payroll.SummaryFilter{EmployeeID: &id, StartDate: "2024-01-01", EndDate: "2024-01-31"}
	}

	_, err := svc.GetSummary(jwttest.Employee(t, employeeID), filter("other"))
	assert.ErrorIs(t, err, payroll.ErrForbiddenEmployee)

	resp, err := svc.GetSummary(jwttest.Admin(t, "adm-1"), filter("other"))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.RecordCount)

	_, err = svc.GetSummary(jwttest.Admin(t, "adm-1"), filter("ghost"))
	assert.ErrorIs(t, err, payroll.ErrEmployeeNotFound)

	_, err = svc.GetSummary(jwttest.Admin(t, "adm-1"), payroll.SummaryFilter{StartDate: "2024-02-01", EndDate: "2024-01-01"})
	assert.Error(t, err)
}

func TestExportReport(t *testing.T) {
	svc, _ := newPayrollFixture(t)

	var buf bytes.Buffer
	err := svc.ExportReport(jwttest.Employee(t, employeeID), payroll.SummaryFilter{StartDate: "2024-01-01", EndDate: "2024-01-31"}, &buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "date,time_in"))
	assert.Contains(t, buf.String(), "total_pay,852.00")
}
