package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/otot/internal/browser"
	"github.com/MrSnakeDoc/otot/internal/domain"
	"github.com/MrSnakeDoc/otot/internal/version"
)

// Exit statuses.
const (
	ExitOK      = 0
	ExitNoMatch = 1
	ExitError   = 2
)

// noResults reports an empty result for a query; it unwraps to domain.ErrNoMatch.
type noResults struct {
	query string
}

func (e noResults) Error() string { return fmt.Sprintf("no results for %q", e.query) }
func (e noResults) Unwrap() error { return domain.ErrNoMatch }

// cli is the state shared by every command of one invocation.
type cli struct {
	opts   Options
	env    env
	stdout io.Writer
	stderr io.Writer
}

// Execute runs the command line and returns the process exit status.
func Execute(ctx context.Context, args []string) int {
	c := &cli{
		env:    env{opener: browser.System{}, now: time.Now},
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	return c.execute(ctx, args)
}

func (c *cli) execute(ctx context.Context, args []string) int {
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	fmt.Fprintln(c.stderr, err)
	if errors.Is(err, domain.ErrNoMatch) {
		return ExitNoMatch
	}
	return ExitError
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "otot",
		Short: "Open the URL you meant from a few letters of it",
		Long: `otot remembers the URLs you open and finds them again from short,
fuzzy queries such as "gh/rust". Results are ranked by frecency:
how often and how recently each URL was opened.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.opts.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/otot/config.toml)")
	pf.StringVar(&c.opts.DBPath, "db", "", "history database (default $XDG_DATA_HOME/otot/history.db)")
	pf.CountVarP(&c.opts.Verbose, "verbose", "v", "more logging, repeat for debug")

	root.AddCommand(
		c.openCommand(),
		c.queryCommand(),
		c.topCommand(),
		c.showCommand(),
		c.pruneCommand(),
		c.importCommand(),
		c.serveCommand(),
		c.configCommand(),
		c.versionCommand(),
	)
	return root
}

// withApp builds an App for the command, runs fn and closes it.
func (c *cli) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *App) error) error {
	ctx := cmd.Context()
	a, err := New(ctx, c.opts, c.env)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}
