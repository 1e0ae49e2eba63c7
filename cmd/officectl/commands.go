package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/officecorner/officecorner-backend-go/internal/client/api"
	"github.com/officecorner/officecorner-backend-go/internal/client/session"
	"github.com/officecorner/officecorner-backend-go/internal/domain/notification"
	payrollService "github.com/officecorner/officecorner-backend-go/internal/service/payroll"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dateLayout = "2006-01-02"

// CLI holds the client and output streams shared by every command.
// Each command returns the process exit code.
type CLI struct {
	client *api.Client
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	watchBackoff    time.Duration
	watchMaxBackoff time.Duration
}

func NewCLI(client *api.Client, stdin io.Reader, stdout, stderr io.Writer) *CLI {
	return &CLI{
		client:          client,
		stdin:           stdin,
		stdout:          stdout,
		stderr:          stderr,
		now:             time.Now,
		watchBackoff:    time.Second,
		watchMaxBackoff: 30 * time.Second,
	}
}

func (c *CLI) fail(cmd string, err error) int {
	switch {
	case errors.Is(err, api.ErrNotLoggedIn), errors.Is(err, api.ErrSessionExpired):
		_, _ = fmt.Fprintf(c.stderr, "officectl %s: %v (run officectl login)\n", cmd, err)
		return 3
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		_, _ = fmt.Fprintf(c.stderr, "officectl %s: %s\n", cmd, apiErr.Message)
		for field, msg := range apiErr.Details {
			_, _ = fmt.Fprintf(c.stderr, "  %s: %s\n", field, msg)
		}
		return 1
	}
	_, _ = fmt.Fprintf(c.stderr, "officectl %s: %v\n", cmd, err)
	return 1
}

func printProfile(w io.Writer, p session.Profile) {
	_, _ = fmt.Fprintf(w, "%s <%s>\nrole: %s\nstatus: %s\n", p.Name, p.Email, p.Role, p.Status)
}

type LoginOptions struct {
	Email    string
	Password string
}

func (c *CLI) Login(ctx context.Context, opts LoginOptions) int {
	email := strings.TrimSpace(opts.Email)
	if email == "" {
		_, _ = fmt.Fprintln(c.stderr, "officectl login: --email is required")
		return 2
	}

	password := opts.Password
	if password == "" {
		password = os.Getenv("OFFICECTL_PASSWORD")
	}
	if password == "" {
		_, _ = fmt.Fprint(c.stderr, "password: ")
		line, err := bufio.NewReader(c.stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return c.fail("login", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	profile, err := c.client.Login(ctx, email, password)
	if err != nil {
		return c.fail("login", err)
	}
	_, _ = fmt.Fprintln(c.stdout, "Logged in.")
	printProfile(c.stdout, profile)
	if profile.Status == "pending" {
		_, _ = fmt.Fprintln(c.stdout, "Your account is awaiting approval. Run officectl watch to be notified.")
	}
	return 0
}

func (c *CLI) Logout(ctx context.Context) int {
	if err := c.client.Logout(ctx); err != nil {
		// the local session is gone either way
		_, _ = fmt.Fprintf(c.stderr, "officectl logout: server did not confirm: %v\n", err)
	}
	_, _ = fmt.Fprintln(c.stdout, "Logged out.")
	return 0
}

func (c *CLI) WhoAmI(ctx context.Context) int {
	profile, err := c.client.Me(ctx)
	if err != nil {
		return c.fail("whoami", err)
	}
	printProfile(c.stdout, profile)
	return 0
}

type TasksOptions struct {
	Status string
	Page   int
	Limit  int
}

func (c *CLI) Tasks(ctx context.Context, opts TasksOptions) int {
	resp, err := c.client.ListTasks(ctx, api.TaskQuery{Status: opts.Status, Page: opts.Page, Limit: opts.Limit})
	if err != nil {
		return c.fail("tasks", err)
	}
	if len(resp.Tasks) == 0 {
		_, _ = fmt.Fprintln(c.stdout, "No tasks.")
		return 0
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tPRIORITY\tDUE")
	for _, t := range resp.Tasks {
		due := "-"
		if t.DueDate != nil {
			due = *t.DueDate
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Priority, due)
	}
	_ = tw.Flush()
	_, _ = fmt.Fprintf(c.stdout, "page %d of %d, %d total\n", resp.Page, resp.TotalPages, resp.TotalCount)
	return 0
}

type PayrollOptions struct {
	From      string
	To        string
	Breakdown bool
}

// Payroll fetches own attendance and the organisation's rates and runs
// the payroll calculation locally.
func (c *CLI) Payroll(ctx context.Context, opts PayrollOptions) int {
	today := c.now()
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	var err error
	if opts.From != "" {
		if from, err = time.Parse(dateLayout, opts.From); err != nil {
			_, _ = fmt.Fprintf(c.stderr, "officectl payroll: invalid --from %q (expected YYYY-MM-DD)\n", opts.From)
			return 2
		}
	}
	if opts.To != "" {
		if to, err = time.Parse(dateLayout, opts.To); err != nil {
			_, _ = fmt.Fprintf(c.stderr, "officectl payroll: invalid --to %q (expected YYYY-MM-DD)\n", opts.To)
			return 2
		}
	}
	if to.Before(from) {
		_, _ = fmt.Fprintln(c.stderr, "officectl payroll: --to is before --from")
		return 2
	}

	profile, ok := c.client.Session().Profile()
	if !ok {
		if profile, err = c.client.Me(ctx); err != nil {
			return c.fail("payroll", err)
		}
	}

	settings, err := c.client.PayrollSettings(ctx)
	if err != nil {
		return c.fail("payroll", err)
	}
	raw, err := c.client.MyAttendance(ctx, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return c.fail("payroll", err)
	}

	summary := payrollService.BuildSummary(payrollService.NormalizeRaw(raw), settings, profile.ID, from, to)

	p := message.NewPrinter(language.English)
	money := func(d decimal.Decimal) string { return p.Sprintf("%.2f", d.InexactFloat64()) }

	_, _ = fmt.Fprintf(c.stdout, "Payroll %s to %s (%d records)\n", summary.StartDate, summary.EndDate, summary.RecordCount)
	if opts.Breakdown {
		tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "DATE\tWEEK\tHOURS\tREGULAR\tOVERTIME\tPAY\tWARNING")
		for _, row := range summary.Breakdown {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				row.Date, row.WeekKey, row.Hours.StringFixed(2),
				row.DailyRegularHours.StringFixed(2), row.DailyOvertimeHours.StringFixed(2),
				money(row.DailyRegularPay.Add(row.DailyOvertimePay)), row.DataWarning)
		}
		_ = tw.Flush()
	}

	tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	_, _ = fmt.Fprintf(tw, "Total hours\t%s\t\n", summary.TotalHours.StringFixed(2))
	_, _ = fmt.Fprintf(tw, "Regular hours\t%s\t\n", summary.RegularHours.StringFixed(2))
	_, _ = fmt.Fprintf(tw, "Overtime hours\t%s\t\n", summary.OvertimeHours.StringFixed(2))
	_, _ = fmt.Fprintf(tw, "Regular pay\t%s\t\n", money(summary.RegularPay))
	_, _ = fmt.Fprintf(tw, "Overtime pay\t%s\t\n", money(summary.OvertimePay))
	_, _ = fmt.Fprintf(tw, "Total pay\t%s\t\n", money(summary.TotalPay))
	_ = tw.Flush()

	if summary.WarningCount > 0 {
		_, _ = fmt.Fprintf(c.stderr, "%d record(s) had data problems; rerun with --breakdown for details\n", summary.WarningCount)
	}
	return 0
}

// Watch prints notifications until interrupted, reconnecting with backoff.
// Delivery is at-most-once, so the profile is re-fetched after every
// (re)connect to catch a decision made while disconnected.
func (c *CLI) Watch(ctx context.Context) int {
	backoff := c.watchBackoff
	for {
		profile, err := c.client.Me(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return 0
			}
			var apiErr *api.APIError
			if errors.Is(err, api.ErrNotLoggedIn) || errors.Is(err, api.ErrSessionExpired) || errors.As(err, &apiErr) {
				return c.fail("watch", err)
			}
		} else {
			_, _ = fmt.Fprintf(c.stdout, "account status: %s\n", profile.Status)
		}

		connected := time.Now()
		err = c.client.Watch(ctx, func(msg notification.Message) {
			_, _ = fmt.Fprintf(c.stdout, "[%s] %s %v\n", msg.At, msg.Event, msg.Data)
		})
		if ctx.Err() != nil {
			return 0
		}
		if errors.Is(err, api.ErrNotLoggedIn) || errors.Is(err, api.ErrSessionExpired) {
			return c.fail("watch", err)
		}

		if time.Since(connected) > c.watchMaxBackoff {
			backoff = c.watchBackoff
		}
		if err != nil {
			_, _ = fmt.Fprintf(c.stderr, "connection lost: %v; retrying in %s\n", err, backoff)
		}

		select {
		case <-ctx.Done():
			return 0
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, c.watchMaxBackoff)
	}
}
