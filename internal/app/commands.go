package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/otot/internal/config"
	"github.com/MrSnakeDoc/otot/internal/domain"
	"github.com/MrSnakeDoc/otot/internal/render"
	"github.com/MrSnakeDoc/otot/internal/sources/homepage"
	"github.com/MrSnakeDoc/otot/internal/version"
)

// asNoResults turns domain.ErrNoMatch into the user-facing message.
func asNoResults(query string, err error) error {
	if errors.Is(err, domain.ErrNoMatch) {
		return noResults{query: query}
	}
	return err
}

func (c *cli) openCommand() *cobra.Command {
	var (
		browserName string
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "open <query>",
		Short: "Open the best match for a query, or the query itself when it is a URL",
		Example: `  otot open gh/rust
  otot open https://example.org --browser firefox`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			return c.withApp(cmd, func(ctx context.Context, a *App) error {
				if dryRun {
					res, err := a.svc.Resolve(ctx, query)
					if err != nil {
						return asNoResults(query, err)
					}
					_, err = fmt.Fprintln(c.stdout, res.URL)
					return err
				}

				v, err := a.svc.Open(ctx, query, browserName)
				if err != nil {
					if v != nil {
						return fmt.Errorf("recorded %s but failed to launch browser: %w", v.URL, err)
					}
					return asNoResults(query, err)
				}
				_, err = fmt.Fprintln(c.stdout, v.URL)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&browserName, "browser", "b", "", "browser to launch instead of preferred_browser")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the resolved URL without opening or recording it")
	return cmd
}

func (c *cli) queryCommand() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "query <query>",
		Short: "List every match for a query, best first, without opening anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			return c.withApp(cmd, func(ctx context.Context, a *App) error {
				candidates, err := a.svc.Query(ctx, query, a.limit(cmd, limit))
				if err != nil {
					return asNoResults(query, err)
				}
				if asJSON {
					return render.JSON(c.stdout, candidates)
				}
				return render.Table(c.stdout, candidates, a.svc.Now(), true)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum rows (default max_results)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func (c *cli) topCommand() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the most frecent URLs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *App) error {
				candidates, err := a.svc.Top(ctx, a.limit(cmd, limit))
				if err != nil {
					return err
				}
				if asJSON {
					return render.JSON(c.stdout, candidates)
				}
				if len(candidates) == 0 {
					_, err := fmt.Fprintln(c.stdout, "history is empty")
					return err
				}
				return render.Table(c.stdout, candidates, a.svc.Now(), false)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum rows (default max_results)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

// limit returns the --limit flag when set, max_results otherwise.
func (a *App) limit(cmd *cobra.Command, flag int) int {
	if cmd.Flags().Changed("limit") {
		return flag
	}
	return a.cfg.MaxResults
}

func (c *cli) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <url>",
		Short: "Show the stored record for an exact URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *App) error {
				rec, err := a.svc.Show(ctx, args[0])
				if err != nil {
					return err
				}
				return render.Record(c.stdout, rec, a.svc.Policy(), a.svc.Now())
			})
		},
	}
}

func (c *cli) pruneCommand() *cobra.Command {
	var (
		olderThan time.Duration
		pattern   string
		baseDom   string
	)

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history entries by age, URL pattern or domain",
		Example: `  otot prune --older-than 2160h
  otot prune --pattern '^http://'
  otot prune --domain example.co.uk`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *App) error {
				var (
					n   int64
					err error
				)
				switch {
				case cmd.Flags().Changed("older-than"):
					n, err = a.svc.PruneOlderThan(ctx, olderThan)
				case pattern != "":
					n, err = a.svc.PruneMatching(ctx, pattern)
				default:
					n, err = a.svc.PruneDomain(ctx, baseDom)
				}
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(c.stdout, "deleted %s %s\n", humanize.Comma(n), plural(n, "entry", "entries"))
				return err
			})
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "delete entries not opened within this duration (ex: 720h)")
	cmd.Flags().StringVar(&pattern, "pattern", "", `delete entries whose URL matches (^ start, $ end, \. literal dot)`)
	cmd.Flags().StringVar(&baseDom, "domain", "", "delete every entry of a registrable domain")
	cmd.MarkFlagsMutuallyExclusive("older-than", "pattern", "domain")
	cmd.MarkFlagsOneRequired("older-than", "pattern", "domain")
	return cmd
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func (c *cli) importCommand() *cobra.Command {
	var src homepage.Source

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Seed history from Homepage services.yaml / bookmarks.yaml",
		Long: `Import adds every href found in Homepage configuration files with a
single visit. URLs already in history are left untouched. Without flags the
files from the [import] section of the config are used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *App) error {
				if src.Empty() {
					src = a.homepageSource()
				}
				urls, err := src.URLs()
				if err != nil {
					return err
				}

				res, err := a.svc.Import(ctx, urls)
				if err != nil {
					return err
				}
				for _, u := range res.Invalid {
					fmt.Fprintf(c.stderr, "skipped invalid url %q\n", u)
				}
				_, err = fmt.Fprintf(c.stdout, "imported %s new, %s already known\n",
					humanize.Comma(int64(res.Added)), humanize.Comma(int64(res.Existing)))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&src.ServicesFile, "services", "", "Homepage services.yaml")
	cmd.Flags().StringVar(&src.BookmarksFile, "bookmarks", "", "Homepage bookmarks.yaml")
	return cmd
}

func (a *App) homepageSource() homepage.Source {
	return homepage.Source{
		ServicesFile:  a.cfg.Import.ServicesFile,
		BookmarksFile: a.cfg.Import.BookmarksFile,
	}
}

func (c *cli) serveCommand() *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local jump server (GET /search?q=...)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *App) error {
				if listen != "" {
					a.cfg.Serve.Listen = listen
				}
				return a.Serve(ctx)
			})
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (default serve.listen)")
	return cmd
}

func (c *cli) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or change the configuration file",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := fmt.Fprintln(c.stdout, c.configPath())
				return err
			},
		},
		&cobra.Command{
			Use:       "get <key>",
			Short:     "Print one configuration value",
			Args:      cobra.ExactArgs(1),
			ValidArgs: config.Keys(),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, _, err := loadConfig(c.opts)
				if err != nil {
					return err
				}
				v, err := cfg.Get(args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(c.stdout, v)
				return err
			},
		},
		&cobra.Command{
			Use:       "set <key> <value>",
			Short:     "Change one configuration value and save the file",
			Args:      cobra.ExactArgs(2),
			ValidArgs: config.Keys(),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := c.configPath()
				cfg, err := config.LoadFile(path)
				if err != nil {
					return err
				}
				if err := cfg.Set(args[0], args[1]); err != nil {
					return err
				}
				return cfg.Save(path)
			},
		},
		&cobra.Command{
			Use:   "keys",
			Short: "List every configuration key",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := fmt.Fprintln(c.stdout, strings.Join(config.Keys(), "\n"))
				return err
			},
		},
	)
	return cmd
}

// configPath is --config when given, the platform default otherwise.
func (c *cli) configPath() string {
	if c.opts.ConfigPath != "" {
		return c.opts.ConfigPath
	}
	return config.DefaultPath()
}

func (c *cli) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(c.stdout, version.String())
			return err
		},
	}
}
