package attendance

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/officecorner/officecorner-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawRecord_UnmarshalAliases(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		timeIn  string
		timeOut string
	}{
		{"camel time", `{"timeIn":"09:00","timeOut":"17:00"}`, "09:00", "17:00"},
		{"camel clock", `{"clockIn":"08:00","clockOut":"16:00"}`, "08:00", "16:00"},
		{"snake time", `{"time_in":"2024-01-08T09:00:00Z","time_out":"2024-01-08T17:00:00Z"}`, "2024-01-08T09:00:00Z", "2024-01-08T17:00:00Z"},
		{"snake clock", `{"clock_in":"07:30","clock_out":"15:30"}`, "07:30", "15:30"},
		{"mixed", `{"clockIn":"09:00","time_out":"18:00"}`, "09:00", "18:00"},
		{"first alias wins", `{"timeIn":"09:00","clockIn":"10:00"}`, "09:00", ""},
		{"blank alias skipped", `{"timeIn":"","clock_in":"10:00"}`, "10:00", ""},
		{"missing", `{"date":"2024-01-08"}`, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r RawRecord
			require.NoError(t, json.Unmarshal([]byte(tt.body), &r))
			assert.Equal(t, tt.timeIn, r.TimeIn)
			assert.Equal(t, tt.timeOut, r.TimeOut)
		})
	}
}

func TestRawRecord_UnmarshalOtherFields(t *testing.T) {
	body := `{"id":"a1","employeeId":"e1","date":"2024-01-08","status":"Present","isLate":true,"is_overtime":false,"notes":"ok"}`

	var r RawRecord
	require.NoError(t, json.Unmarshal([]byte(body), &r))
	assert.Equal(t, "a1", r.ID)
	assert.Equal(t, "e1", r.EmployeeID)
	assert.Equal(t, "Present", r.Status)
	require.NotNil(t, r.IsLate)
	assert.True(t, *r.IsLate)
	require.NotNil(t, r.IsOvertime)
	assert.False(t, *r.IsOvertime)

	day, ok := r.WorkDay()
	require.True(t, ok)
	assert.Equal(t, "2024-01-08", day.Format("2006-01-02"))
}

func TestRawRecord_RoundTripFromResponse(t *testing.T) {
	in := "2024-01-08T09:00:00Z"
	resp := AttendanceResponse{ID: "a1", EmployeeID: "e1", Date: "2024-01-08", TimeIn: &in, Status: "present"}
	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var r RawRecord
	require.NoError(t, json.Unmarshal(data, &r))
	assert.Equal(t, "e1", r.EmployeeID)
	assert.Equal(t, in, r.TimeIn)
	assert.Empty(t, r.TimeOut)
}

func TestCreateAttendanceRequest_Validate(t *testing.T) {
	const employeeID = "0193a4f2-1c2d-7e3f-8a9b-0c1d2e3f4a5b"

	t.Run("decodes aliases through the embedded record", func(t *testing.T) {
		var req CreateAttendanceRequest
		body := `{"employeeId":"` + employeeID + `","date":"2024-01-08","clockIn":"09:00","clockOut":"17:00"}`
		require.NoError(t, json.Unmarshal([]byte(body), &req))
		require.NoError(t, req.Validate())
		assert.Equal(t, "present", req.Status)
		assert.Equal(t, "09:00", req.TimeIn)
	})

	t.Run("present requires both timestamps", func(t *testing.T) {
		req := CreateAttendanceRequest{RawRecord{EmployeeID: employeeID, Date: "2024-01-08", TimeIn: "09:00"}}
		err := req.Validate()

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Contains(t, verrs.ToMap(), "time_out")
	})

	t.Run("holiday needs no timestamps", func(t *testing.T) {
		req := CreateAttendanceRequest{RawRecord{EmployeeID: employeeID, Date: "2024-01-08", Status: "Holiday"}}
		require.NoError(t, req.Validate())
		assert.Equal(t, "holiday", req.Status)
	})

	t.Run("rejects bad fields", func(t *testing.T) {
		req := CreateAttendanceRequest{RawRecord{EmployeeID: "x", Date: "08/01/2024", Status: "sick"}}
		err := req.Validate()

		var verrs validator.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		fields := verrs.ToMap()
		assert.Contains(t, fields, "employee_id")
		assert.Contains(t, fields, "date")
		assert.Contains(t, fields, "status")
	})
}

func TestAttendanceFilter_Validate(t *testing.T) {
	f := AttendanceFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)

	status := "LEAVE"
	f = AttendanceFilter{Status: &status}
	require.NoError(t, f.Validate())
	assert.Equal(t, "leave", *f.Status)

	f = AttendanceFilter{Limit: 500}
	assert.Error(t, f.Validate())
}

func TestNewAttendanceResponse_WorkedHours(t *testing.T) {
	day := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	ts := func(d time.Duration) *time.Time {
		v := day.Add(d)
		return &v
	}

	tests := []struct {
		name string
		in   *time.Time
		out  *time.Time
		want *float64
	}{
		{name: "half hundredth rounds up", in: ts(9 * time.Hour), out: ts(17*time.Hour + 18*time.Second), want: ptr(8.01)},
		{name: "twenty minutes", in: ts(9 * time.Hour), out: ts(9*time.Hour + 20*time.Minute), want: ptr(0.33)},
		{name: "crosses midnight", in: ts(22 * time.Hour), out: ts(6 * time.Hour), want: ptr(8.0)},
		{name: "open record", in: ts(9 * time.Hour), out: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewAttendanceResponse(Attendance{Date: day, ClockIn: tt.in, ClockOut: tt.out})
			assert.Equal(t, tt.want, resp.WorkedHours)
			if tt.want != nil {
				assert.Equal(t, WorkedHours(tt.in, tt.out).Round(2).StringFixed(2), decimal.NewFromFloat(*resp.WorkedHours).StringFixed(2))
			}
		})
	}
}

func ptr(v float64) *float64 {
	return &v
}
