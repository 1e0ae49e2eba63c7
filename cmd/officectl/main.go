// Command officectl talks to an OfficeCorner server from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/officecorner/officecorner-backend-go/internal/client/api"
	"github.com/officecorner/officecorner-backend-go/internal/client/session"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/logging"
	"github.com/spf13/cobra"
)

const environmentHelp = `Environment:
  OFFICECTL_BASE_URLS     comma separated server URLs (default http://localhost:8080)
  OFFICECTL_SESSION_FILE  session file (default in the user config dir)
  OFFICECTL_TIMEOUT       request timeout (default 10s)
  OFFICECTL_PASSWORD      password for login when --password is not given
  OFFICECTL_DEBUG         log requests to stderr when set`

// exitError carries a command's exit code out of cobra.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	level := slog.LevelWarn
	if os.Getenv("OFFICECTL_DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(logging.NewText(stderr, level))

	cfg, err := api.LoadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "officectl: %v\n", err)
		return 1
	}
	store, err := session.Open(cfg.SessionFile, cfg.EndpointTTL)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "officectl: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, NewCLI(api.New(cfg, store), stdin, stdout, stderr), args)
}

// execute runs one command line. Usage errors exit with 2.
func execute(ctx context.Context, cli *CLI, args []string) int {
	root := newRootCmd(cli)
	root.SetArgs(args)
	root.SetIn(cli.stdin)
	root.SetOut(cli.stdout)
	root.SetErr(cli.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exit exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	_, _ = fmt.Fprintf(cli.stderr, "officectl: %v\nRun 'officectl --help' for usage.\n", err)
	return 2
}

// exitCode adapts a CLI method's exit code to cobra's error return.
func exitCode(code int) error {
	if code == 0 {
		return nil
	}
	return exitError{code: code}
}

func newRootCmd(cli *CLI) *cobra.Command {
	root := &cobra.Command{
		Use:           "officectl",
		Short:         "OfficeCorner from the terminal",
		Long:          "officectl signs in to an OfficeCorner server and works with your tasks, payroll and notifications.\n\n" + environmentHelp,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(
		newLoginCmd(cli),
		&cobra.Command{
			Use:   "logout",
			Short: "End the session and forget local credentials",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return exitCode(cli.Logout(cmd.Context()))
			},
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the signed in account",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return exitCode(cli.WhoAmI(cmd.Context()))
			},
		},
		newTasksCmd(cli),
		newPayrollCmd(cli),
		&cobra.Command{
			Use:   "watch",
			Short: "Stream approval notifications until interrupted",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return exitCode(cli.Watch(cmd.Context()))
			},
		},
	)
	return root
}

func newLoginCmd(cli *CLI) *cobra.Command {
	var opts LoginOptions
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exitCode(cli.Login(cmd.Context(), opts))
		},
	}
	cmd.Flags().StringVarP(&opts.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "account password (prompted when empty)")
	return cmd
}

func newTasksCmd(cli *CLI) *cobra.Command {
	var opts TasksOptions
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks assigned to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exitCode(cli.Tasks(cmd.Context(), opts))
		},
	}
	cmd.Flags().StringVar(&opts.Status, "status", "", "filter by status (todo, in_progress, done)")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "page size")
	return cmd
}

func newPayrollCmd(cli *CLI) *cobra.Command {
	var opts PayrollOptions
	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Compute your pay for a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return exitCode(cli.Payroll(cmd.Context(), opts))
		},
	}
	cmd.Flags().StringVar(&opts.From, "from", "", "first day YYYY-MM-DD, defaults to the start of this month")
	cmd.Flags().StringVar(&opts.To, "to", "", "last day YYYY-MM-DD, defaults to today")
	cmd.Flags().BoolVar(&opts.Breakdown, "breakdown", false, "print one line per record")
	return cmd
}
