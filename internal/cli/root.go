// Package cli implements sweepctl, the command-line front end for running
// pools directly against the store without the HTTP server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jaektomo/SweepstakeManager/internal/config"
	"github.com/jaektomo/SweepstakeManager/internal/engine"
	"github.com/jaektomo/SweepstakeManager/internal/repository"
	"github.com/jaektomo/SweepstakeManager/internal/service"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Format  string // "json" | "text"
	Driver  string // overrides DB_DRIVER
	DSN     string // overrides DATABASE_DSN
	Seed    uint64 // overrides SWEEP_RANDOM_SEED
	Verbose bool
	cfg     *config.Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Execute runs sweepctl with args and returns the process exit code. Errors
// are reported on stderr, or on stdout as a JSON envelope with --format json.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd, opts := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		f := &OutputFormatter{Format: opts.Format, Writer: stderr}
		if opts.Format == "json" {
			f.Writer = stdout
		}
		f.Error(err)

		// Flag and argument errors come straight from cobra.
		var exitErr *ExitError
		if !errors.As(err, &exitErr) {
			return ExitCommandError
		}
		return exitErr.Code
	}
	return ExitSuccess
}

// newRootCommand creates the root command for sweepctl.
func newRootCommand() (*cobra.Command, *RootOptions) {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sweepctl",
		Short: "Run sweepstake pools from the command line",
		Long: `sweepctl manages sweepstake pools and the competitor roster.

Connection settings come from the same environment variables as the
server (DB_DRIVER, DATABASE_DSN, ...) unless overridden by flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.loadConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "db-driver", "", "store driver (postgres|sqlite)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "db", "", "store data source name")
	cmd.PersistentFlags().Uint64Var(&opts.Seed, "seed", 0, "seed draws for reproducible results")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log service activity to stderr")

	cmd.AddCommand(NewPoolsCommand(opts))
	cmd.AddCommand(NewCompetitorsCommand(opts))

	return cmd, opts
}

func (o *RootOptions) loadConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	if o.Driver != "" {
		cfg.DB.Driver = o.Driver
	}
	if o.DSN != "" {
		cfg.DB.DSN = o.DSN
	}
	if o.Seed != 0 {
		cfg.Sweep.RandomSeed = o.Seed
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	o.cfg = cfg
	return nil
}

// services is the per-invocation wiring every subcommand works through.
type services struct {
	pools       *service.PoolService
	competitors *service.CompetitorService
	close       func() error
}

func (o *RootOptions) openServices(ctx context.Context, stderr io.Writer) (*services, error) {
	db, err := repository.Open(ctx, o.cfg.DB)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, WrapExitError(ExitCommandError, "failed to migrate database", err)
	}

	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	src := engine.DefaultSource()
	if o.cfg.Sweep.RandomSeed != 0 {
		src = engine.NewSeededSource(o.cfg.Sweep.RandomSeed)
	}

	poolRepo := repository.NewPoolRepository(db)
	competitorRepo := repository.NewCompetitorRepository(db)
	return &services{
		pools:       service.NewPoolService(poolRepo, competitorRepo, engine.New(src), o.cfg, logger),
		competitors: service.NewCompetitorService(competitorRepo, logger),
		close:       db.Close,
	}, nil
}

// withServices opens the store, runs fn and closes the store again.
// Errors from fn that are not already ExitErrors exit with ExitFailure.
func (o *RootOptions) withServices(cmd *cobra.Command, fn func(ctx context.Context, s *services) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := o.openServices(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer s.close()

	if err := fn(ctx, s); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		return WrapExitError(ExitFailure, cmd.CommandPath()+" failed", err)
	}
	return nil
}

// output returns the formatter for cmd's stdout.
func (o *RootOptions) output(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}
