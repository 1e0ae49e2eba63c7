package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// TokenPurger deletes refresh tokens that expired or were revoked before cutoff.
type TokenPurger interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}

// OpenSessionCounter counts attendance records still open from before a day boundary.
type OpenSessionCounter interface {
	CountStaleOpen(ctx context.Context, before time.Time) (int64, error)
}

type MaintenanceJobs struct {
	tokens      TokenPurger
	attendances OpenSessionCounter
	location    *time.Location
	retention   time.Duration
	now         func() time.Time
}

// NewMaintenanceJobs keeps revoked/expired refresh tokens for retention
// before purging them. Day boundaries are computed in location.
func NewMaintenanceJobs(tokens TokenPurger, attendances OpenSessionCounter, location *time.Location, retention time.Duration) *MaintenanceJobs {
	if location == nil {
		location = time.UTC
	}
	return &MaintenanceJobs{
		tokens:      tokens,
		attendances: attendances,
		location:    location,
		retention:   retention,
		now:         time.Now,
	}
}

// Register adds the maintenance jobs to s.
func (j *MaintenanceJobs) Register(s *Scheduler) {
	s.AddJob("purge_refresh_tokens", time.Hour, j.PurgeRefreshTokens)
	s.AddJob("stale_open_attendance", 6*time.Hour, j.ReportStaleAttendance)
}

func (j *MaintenanceJobs) PurgeRefreshTokens(ctx context.Context) error {
	cutoff := j.now().Add(-j.retention)
	n, err := j.tokens.DeleteExpired(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge refresh tokens: %w", err)
	}
	if n > 0 {
		slog.Info("Purged refresh tokens", "count", n, "cutoff", cutoff)
	}
	return nil
}

// ReportStaleAttendance warns about clock-ins from earlier days that were
// never clocked out. Such records count as zero hours in payroll until an
// admin fixes them.
func (j *MaintenanceJobs) ReportStaleAttendance(ctx context.Context) error {
	local := j.now().In(j.location)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

	n, err := j.attendances.CountStaleOpen(ctx, today)
	if err != nil {
		return fmt.Errorf("count stale attendance: %w", err)
	}
	if n > 0 {
		slog.Warn("Open attendance records from previous days", "count", n, "before", today.Format("2006-01-02"))
	}
	return nil
}
