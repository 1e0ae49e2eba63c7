package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/officecorner/officecorner-backend-go/internal/domain/attendance"
	"github.com/officecorner/officecorner-backend-go/internal/domain/payroll"
	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt/jwttest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const employeeID = "0193a4f2-1c2d-7e3f-8a9b-0c1d2e3f4a5b"

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeAttendanceRepo struct {
	attendance.AttendanceRepository
	records map[string]attendance.Attendance
}

func (r *fakeAttendanceRepo) Create(_ context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	for _, existing := range r.records {
		if existing.EmployeeID == a.EmployeeID && existing.Date.Equal(a.Date) && existing.IsOpen() && a.IsOpen() {
			return attendance.Attendance{}, attendance.ErrOpenRecordExists
		}
	}
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.records[a.ID] = a
	return a, nil
}

func (r *fakeAttendanceRepo) GetOpenSession(_ context.Context, employeeID string) (attendance.Attendance, error) {
	var latest *attendance.Attendance
	for _, a := range r.records {
		if a.EmployeeID == employeeID && a.IsOpen() {
			if latest == nil || a.ClockIn.After(*latest.ClockIn) {
				a := a
				latest = &a
			}
		}
	}
	if latest == nil {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return *latest, nil
}

func (r *fakeAttendanceRepo) Update(_ context.Context, a attendance.Attendance) error {
	if _, ok := r.records[a.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	r.records[a.ID] = a
	return nil
}

func (r *fakeAttendanceRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.records[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(r.records, id)
	return nil
}

type fakeUserRepo struct {
	user.UserRepository
}

func (fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	if id != employeeID {
		return user.User{}, user.ErrUserNotFound
	}
	return user.User{ID: id, Role: user.RoleEmployee, Status: user.StatusApproved}, nil
}

type fakePayrollRepo struct {
	settings *payroll.Settings
}

func (r fakePayrollRepo) GetSettings(context.Context) (payroll.Settings, error) {
	if r.settings == nil {
		return payroll.Settings{}, payroll.ErrPayrollSettingsNotFound
	}
	return *r.settings, nil
}

func (r fakePayrollRepo) UpsertSettings(_ context.Context, s payroll.Settings) (payroll.Settings, error) {
	return s, nil
}

func newService(t *testing.T, now *time.Time) (*AttendanceServiceImpl, *fakeAttendanceRepo) {
	t.Helper()
	repo := &fakeAttendanceRepo{records: make(map[string]attendance.Attendance)}
	svc := NewAttendanceService(fakeTx{}, repo, fakeUserRepo{}, fakePayrollRepo{}, Policy{
		WorkdayStart: "09:00",
		LateGrace:    5 * time.Minute,
	}).(*AttendanceServiceImpl)
	svc.now = func() time.Time { return *now }
	return svc, repo
}

func at(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return ts
}

func TestClockInClockOut(t *testing.T) {
	now := at(t, "2024-01-08T08:55:00Z")
	svc, _ := newService(t, &now)
	ctx := jwttest.Employee(t, employeeID)

	in, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-08", in.Date)
	assert.False(t, in.IsLate)
	assert.Nil(t, in.TimeOut)

	_, err = svc.ClockIn(ctx, attendance.ClockInRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	now = at(t, "2024-01-08T17:25:00Z")
	notes := "done"
	out, err := svc.ClockOut(ctx, attendance.ClockOutRequest{Notes: &notes})
	require.NoError(t, err)
	require.NotNil(t, out.WorkedHours)
	assert.InDelta(t, 8.5, *out.WorkedHours, 0.001)
	assert.True(t, out.IsOvertime, "8.5h exceeds the default 8h daily limit")
	assert.Equal(t, &notes, out.Notes)

	_, err = svc.ClockOut(ctx, attendance.ClockOutRequest{})
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)
}

func TestClockIn_Late(t *testing.T) {
	tests := []struct {
		at   string
		late bool
	}{
		{"2024-01-08T09:00:00Z", false},
		{"2024-01-08T09:05:00Z", false},
		{"2024-01-08T09:05:01Z", true},
		{"2024-01-08T13:00:00Z", true},
	}
	for _, tt := range tests {
		t.Run(tt.at, func(t *testing.T) {
			now := at(t, tt.at)
			svc, _ := newService(t, &now)
			resp, err := svc.ClockIn(jwttest.Employee(t, employeeID), attendance.ClockInRequest{})
			require.NoError(t, err)
			assert.Equal(t, tt.late, resp.IsLate)
		})
	}
}

func TestClockIn_StaleOpenRecordDoesNotBlock(t *testing.T) {
	now := at(t, "2024-01-08T09:00:00Z")
	svc, repo := newService(t, &now)
	ctx := jwttest.Employee(t, employeeID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	now = at(t, "2024-01-09T09:00:00Z")
	resp, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-09", resp.Date)
	assert.Len(t, repo.records, 2)
}

func TestClockOut_UsesStoredDailyLimit(t *testing.T) {
	now := at(t, "2024-01-08T09:00:00Z")
	svc, _ := newService(t, &now)
	settings := payroll.DefaultSettings()
	settings.DailyRegularHoursLimit = decimal.NewFromInt(10)
	svc.settings = fakePayrollRepo{settings: &settings}
	ctx := jwttest.Employee(t, employeeID)

	_, err := svc.ClockIn(ctx, attendance.ClockInRequest{})
	require.NoError(t, err)

	now = at(t, "2024-01-08T18:30:00Z")
	resp, err := svc.ClockOut(ctx, attendance.ClockOutRequest{})
	require.NoError(t, err)
	assert.False(t, resp.IsOvertime)
}

func TestCreateAttendance(t *testing.T) {
	now := at(t, "2024-01-10T12:00:00Z")
	svc, _ := newService(t, &now)
	admin := jwttest.Admin(t, "adm-1")

	t.Run("clock times on the record date", func(t *testing.T) {
		req := attendance.CreateAttendanceRequest{RawRecord: attendance.RawRecord{
			EmployeeID: employeeID, Date: "2024-01-08", TimeIn: "09:30", TimeOut: "17:30",
		}}
		resp, err := svc.CreateAttendance(admin, req)
		require.NoError(t, err)
		assert.Equal(t, "present", resp.Status)
		assert.True(t, resp.IsLate)
		assert.False(t, resp.IsOvertime)
		require.NotNil(t, resp.TimeIn)
		assert.Equal(t, "2024-01-08T09:30:00Z", *resp.TimeIn)
	})

	t.Run("night shift crosses midnight", func(t *testing.T) {
		req := attendance.CreateAttendanceRequest{RawRecord: attendance.RawRecord{
			EmployeeID: employeeID, Date: "2024-01-09", TimeIn: "22:00", TimeOut: "07:00",
		}}
		resp, err := svc.CreateAttendance(admin, req)
		require.NoError(t, err)
		require.NotNil(t, resp.WorkedHours)
		assert.InDelta(t, 9.0, *resp.WorkedHours, 0.001)
		assert.True(t, resp.IsOvertime)
	})

	t.Run("explicit flags win", func(t *testing.T) {
		late := false
		req := attendance.CreateAttendanceRequest{RawRecord: attendance.RawRecord{
			EmployeeID: employeeID, Date: "2024-01-05", TimeIn: "11:00", TimeOut: "15:00", IsLate: &late,
		}}
		resp, err := svc.CreateAttendance(admin, req)
		require.NoError(t, err)
		assert.False(t, resp.IsLate)
	})

	t.Run("full timestamps out of order", func(t *testing.T) {
		req := attendance.CreateAttendanceRequest{RawRecord: attendance.RawRecord{
			EmployeeID: employeeID, Date: "2024-01-04", TimeIn: "2024-01-04T17:00:00Z", TimeOut: "2024-01-04T09:00:00Z",
		}}
		_, err := svc.CreateAttendance(admin, req)
		assert.ErrorIs(t, err, attendance.ErrInvalidTimeRange)
	})

	t.Run("garbage timestamp", func(t *testing.T) {
		req := attendance.CreateAttendanceRequest{RawRecord: attendance.RawRecord{
			EmployeeID: employeeID, Date: "2024-01-03", TimeIn: "nine", TimeOut: "17:00",
		}}
		_, err := svc.CreateAttendance(admin, req)
		assert.ErrorIs(t, err, attendance.ErrInvalidTimestamp)
	})

	t.Run("unknown employee", func(t *testing.T) {
		req := attendance.CreateAttendanceRequest{RawRecord: attendance.RawRecord{
			EmployeeID: uuid.NewString(), Date: "2024-01-02", Status: "absent",
		}}
		_, err := svc.CreateAttendance(admin, req)
		assert.ErrorIs(t, err, attendance.ErrEmployeeNotFound)
	})

	t.Run("employees cannot create", func(t *testing.T) {
		req := attendance.CreateAttendanceRequest{RawRecord: attendance.RawRecord{
			EmployeeID: employeeID, Date: "2024-01-02", Status: "absent",
		}}
		_, err := svc.CreateAttendance(jwttest.Employee(t, employeeID), req)
		assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
	})
}

func TestCreateAttendance_OffsetlessTimesUsePolicyZone(t *testing.T) {
	now := at(t, "2024-01-10T12:00:00Z")
	svc, _ := newService(t, &now)
	svc.policy.Location = time.FixedZone("UTC+7", 7*60*60)
	admin := jwttest.Admin(t, "adm-1")

	tests := []struct {
		name    string
		date    string
		timeIn  string
		timeOut string
		wantIn  string
	}{
		{name: "clock times", date: "2024-01-08", timeIn: "09:00", timeOut: "17:00", wantIn: "2024-01-08T02:00:00Z"},
		{name: "timestamp without offset", date: "2024-01-09", timeIn: "2024-01-09T09:00:00", timeOut: "2024-01-09 17:00:00", wantIn: "2024-01-09T02:00:00Z"},
		{name: "timestamp with offset", date: "2024-01-10", timeIn: "2024-01-10T02:00:00Z", timeOut: "2024-01-10T10:00:00Z", wantIn: "2024-01-10T02:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.CreateAttendance(admin, attendance.CreateAttendanceRequest{RawRecord: attendance.RawRecord{
				EmployeeID: employeeID, Date: tt.date, TimeIn: tt.timeIn, TimeOut: tt.timeOut,
			}})
			require.NoError(t, err)
			require.NotNil(t, resp.TimeIn)
			assert.Equal(t, tt.wantIn, *resp.TimeIn)
			assert.False(t, resp.IsLate)
			require.NotNil(t, resp.WorkedHours)
			assert.InDelta(t, 8.0, *resp.WorkedHours, 0.001)
		})
	}
}

func TestDeleteAttendance(t *testing.T) {
	now := at(t, "2024-01-08T09:00:00Z")
	svc, repo := newService(t, &now)

	resp, err := svc.ClockIn(jwttest.Employee(t, employeeID), attendance.ClockInRequest{})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteAttendance(jwttest.Employee(t, employeeID), resp.ID), user.ErrAdminPrivilegeRequired)
	require.NoError(t, svc.DeleteAttendance(jwttest.Admin(t, "adm-1"), resp.ID))
	assert.Empty(t, repo.records)
	assert.ErrorIs(t, svc.DeleteAttendance(jwttest.Admin(t, "adm-1"), resp.ID), attendance.ErrAttendanceNotFound)
}
