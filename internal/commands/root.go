package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sakura-events/sakura-backend/internal/dashboard"
)

// env is shared by every command of one invocation.
type env struct {
	dir    string
	cfg    *Config
	out    io.Writer
	server string
}

func (e *env) client() *dashboard.Client {
	url := e.cfg.ServerURL
	if e.server != "" {
		url = e.server
	}
	return dashboard.NewClient(url, e.cfg.Token)
}

// signedIn returns a dashboard that has loaded the caller's projects.
func (e *env) signedIn(ctx context.Context) (*dashboard.Dashboard, error) {
	if e.cfg.Token == "" {
		return nil, fmt.Errorf("you are not logged in, run 'sakura login --token <token>' first")
	}
	d := dashboard.New(e.client(), dashboard.NewTimerStore(e.dir), nil)
	if err := d.SignIn(ctx); err != nil {
		return d, err
	}
	return d, nil
}

func (e *env) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(e.out, format, args...)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

// NewRootCommand builds the sakura CLI rooted at config dir.
func NewRootCommand(dir string, cfg *Config) *cobra.Command {
	e := &env{dir: dir, cfg: cfg, out: os.Stdout}

	root := &cobra.Command{
		Use:           "sakura",
		Short:         "Sakura - register projects and track hours from the terminal",
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			e.out = cmd.OutOrStdout()
		},
	}
	root.PersistentFlags().StringVar(&e.server, "server", "", "API base URL (overrides the saved server)")

	root.AddCommand(newLoginCommand(e), newLogoutCommand(e), newWhoamiCommand(e))
	root.AddCommand(newProjectsCommand(e))
	root.AddCommand(newTimerCommand(e))
	return root
}

// Execute runs the CLI and prints a failure in red.
func Execute() int {
	dir, err := ConfigDir()
	if err != nil {
		color.Red("Error getting home directory: %v", err)
		return 1
	}
	cfg, err := LoadConfig(dir)
	if err != nil {
		color.Yellow("Ignoring unreadable config: %v", err)
	}

	if err := NewRootCommand(dir, cfg).Execute(); err != nil {
		color.Red("Error: %v", err)
		return 1
	}
	return 0
}
