package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/example/classbooker/internal/application/scheduler"
	"github.com/example/classbooker/internal/application/sequencer"
	"github.com/example/classbooker/internal/application/usecases"
	"github.com/example/classbooker/internal/domain/booking"
	"github.com/example/classbooker/internal/domain/schedule"
	"github.com/example/classbooker/internal/infrastructure/browser"
	"github.com/example/classbooker/internal/infrastructure/config"
	"github.com/example/classbooker/internal/infrastructure/postgres"
)

// Seams for tests; production uses the wall clock and a real Chromium.
var (
	clock      = time.Now
	newBrowser = func(cfg config.Config, log zerolog.Logger) usecases.SessionOpener {
		return browser.Launcher{Bin: cfg.BrowserBin, Log: log}
	}
)

const storeOpenTimeout = 15 * time.Second

// newBooker wires the use case. History is attached only when DATABASE_URL
// is set and reachable: a broken database costs the record, never the
// booking. The returned pool (possibly nil) belongs to the caller.
func newBooker(ctx context.Context, cfg config.Config, log zerolog.Logger) (usecases.BookClass, *pgxpool.Pool) {
	uc := usecases.BookClass{
		Rule:      cfg.Booking.Schedule,
		Site:      cfg.Booking.Site,
		Target:    cfg.Booking.Target,
		Creds:     cfg.Credentials(),
		Browser:   newBrowser(cfg, log),
		Sequencer: sequencer.New(log, cfg.ArtifactPath),
		Log:       log,
	}
	if cfg.DatabaseURL == "" {
		return uc, nil
	}
	sctx, cancel := context.WithTimeout(ctx, storeOpenTimeout)
	defer cancel()
	pool, err := openStore(sctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("run history unavailable, continuing without it")
		return uc, nil
	}
	uc.Recorder = postgres.NewRunRepo(pool)
	return uc, pool
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// runOnce is the whole job: gate on the wall clock, then book. A skip and an
// abort both exit cleanly unless strict is set.
func runOnce(strict bool) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	ctx, stop := signalContext()
	defer stop()

	uc, pool := newBooker(ctx, cfg, log)
	if pool != nil {
		defer pool.Close()
	}

	run := uc.Execute(ctx, clock().In(cfg.Location))
	if strict && run.Status == booking.StatusAborted {
		return fmt.Errorf("booking aborted at step %d (%s): %s", run.FailedStep, run.StepName, run.Reason)
	}
	return nil
}

func NewRunCmd() *cobra.Command {
	var strict bool
	c := &cobra.Command{
		Use:   "run",
		Short: "Book today's class if today is a run day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(strict)
		},
	}
	c.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the booking aborts")
	return c
}

func NewGateCmd() *cobra.Command {
	var date string
	c := &cobra.Command{
		Use:   "gate",
		Short: "Show what run would decide for a date, without a browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			now := clock().In(cfg.Location)
			if date != "" {
				d, err := time.ParseInLocation("2006-01-02", date, cfg.Location)
				if err != nil {
					return fmt.Errorf("invalid --date (want YYYY-MM-DD)")
				}
				now = d
			}
			describeGate(cmd.OutOrStdout(), cfg.Booking.Schedule, now)
			return nil
		},
	}
	c.Flags().StringVar(&date, "date", "", "date to evaluate (YYYY-MM-DD, default today)")
	return c
}

func describeGate(w io.Writer, rule schedule.Rule, now time.Time) {
	dec := rule.Decide(now)
	if !dec.Proceed {
		fmt.Fprintf(w, "%s %s: skip (run days: %s)\n", now.Weekday(), now.Format("2006-01-02"), rule.RunDays)
	} else {
		fmt.Fprintf(w, "%s %s: proceed, target %s %s (day %d)\n",
			now.Weekday(), now.Format("2006-01-02"), dec.Target.Weekday(), dec.Target.Format("2006-01-02"), dec.TargetDay)
	}
	for _, wd := range rule.Mismatches() {
		target := time.Weekday((int(wd) + rule.LeadDays) % 7)
		fmt.Fprintf(w, "warning: run day %s books %s, which is not a target day\n", wd, target)
	}
}

func NewDaemonCmd() *cobra.Command {
	var at string
	c := &cobra.Command{
		Use:   "daemon",
		Short: "Stay running and book once a day at a fixed local time",
		RunE: func(cmd *cobra.Command, args []string) error {
			hour, minute, err := scheduler.ParseClock(at)
			if err != nil {
				return err
			}
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			ctx, stop := signalContext()
			defer stop()

			uc, pool := newBooker(ctx, cfg, log)
			if pool != nil {
				defer pool.Close()
			}

			d := &scheduler.Daemon{
				Hour:     hour,
				Minute:   minute,
				Location: cfg.Location,
				Log:      log,
				Job: func(ctx context.Context, now time.Time) {
					run := uc.Execute(ctx, now)
					log.Info().Str("run_id", run.ID).Str("status", string(run.Status)).Msg("daily run finished")
				},
			}
			if err := d.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			log.Info().Msg("daemon stopped")
			return nil
		},
	}
	c.Flags().StringVar(&at, "at", "00:01", "local fire time (HH:MM, in BOOKER_TIMEZONE)")
	return c
}
