package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/example/classbooker/internal/infrastructure/config"
	"github.com/example/classbooker/internal/infrastructure/postgres"
	"github.com/example/classbooker/internal/internaltypes"
	"github.com/example/classbooker/internal/logging"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// NewRoot builds the command tree. Invoked bare, it behaves like "run" so a
// plain cron line books on run days and exits cleanly on the others.
func NewRoot() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:           "classbooker",
		Short:         "Books a deportesweb.madrid.es class two days ahead",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(strict)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the booking aborts")
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewGateCmd())
	cmd.AddCommand(NewDaemonCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewUserCmd())
	cmd.AddCommand(NewServerCmd())
	cmd.AddCommand(NewKeysCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "classbooker %s (commit=%s, built=%s)\n", Version, CommitSHA, BuildDate)
		},
	}
}

func bootstrap() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, logging.Setup(cfg.Environment), nil
}

// openStore connects to the history database and migrates it.
func openStore(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, internaltypes.ErrHistoryDisabled
	}
	pcfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	// The booker holds the pool for minutes a day; don't pin idle conns.
	pcfg.MaxConnLifetime = 5 * time.Minute
	pcfg.MaxConnIdleTime = 1 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return pool, nil
}
