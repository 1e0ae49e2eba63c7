package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/officecorner/officecorner-backend-go/internal/domain/attendance"
	"github.com/officecorner/officecorner-backend-go/internal/domain/payroll"
	"github.com/officecorner/officecorner-backend-go/internal/domain/task"
)

const attendancePageSize = 100

type TaskQuery struct {
	Status string
	Page   int
	Limit  int
}

func (c *Client) ListTasks(ctx context.Context, q TaskQuery) (task.ListTaskResponse, error) {
	query := url.Values{}
	if q.Status != "" {
		query.Set("status", q.Status)
	}
	if q.Page > 0 {
		query.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}

	var resp task.ListTaskResponse
	err := c.do(ctx, call{method: http.MethodGet, resource: ResourceTasks, query: query, auth: true}, &resp)
	return resp, err
}

type attendancePage struct {
	TotalPages  int                    `json:"total_pages"`
	Attendances []attendance.RawRecord `json:"attendances"`
}

// MyAttendance returns every own record in [startDate, endDate] with the
// timestamps left as the server sent them.
func (c *Client) MyAttendance(ctx context.Context, startDate, endDate string) ([]attendance.RawRecord, error) {
	var records []attendance.RawRecord
	for page := 1; ; page++ {
		query := url.Values{
			"start_date": {startDate},
			"end_date":   {endDate},
			"page":       {strconv.Itoa(page)},
			"limit":      {strconv.Itoa(attendancePageSize)},
		}
		var resp attendancePage
		if err := c.do(ctx, call{method: http.MethodGet, resource: ResourceMyAttendance, query: query, auth: true}, &resp); err != nil {
			return nil, err
		}
		records = append(records, resp.Attendances...)
		if page >= resp.TotalPages || len(resp.Attendances) == 0 {
			return records, nil
		}
	}
}

func (c *Client) PayrollSettings(ctx context.Context) (payroll.Settings, error) {
	var resp payroll.SettingsResponse
	if err := c.do(ctx, call{method: http.MethodGet, resource: ResourcePayrollSettings, auth: true}, &resp); err != nil {
		return payroll.Settings{}, err
	}
	return payroll.Settings{
		ID:                         resp.ID,
		RegularRate:                resp.RegularRate,
		OvertimeRate:               resp.OvertimeRate,
		RegularHoursLimit:          resp.RegularHoursLimit,
		DailyRegularHoursLimit:     resp.DailyRegularHoursLimit,
		DailyOvertimeRatePerMinute: resp.DailyOvertimeRatePerMinute,
	}, nil
}
