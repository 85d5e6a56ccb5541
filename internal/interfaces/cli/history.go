package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/classbooker/internal/infrastructure/config"
	"github.com/example/classbooker/internal/infrastructure/postgres"
)

func NewHistoryCmd() *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "history",
		Short: "List recent booking runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			pool, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			runs, err := postgres.NewRunRepo(pool).Recent(ctx, limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STARTED\tSTATUS\tTARGET\tSTEP\tREASON")
			for _, r := range runs {
				target, step := "-", "-"
				if r.TargetDate != nil {
					target = r.TargetDate.Format("2006-01-02")
				}
				if r.FailedStep >= 0 {
					step = fmt.Sprintf("%d %s", r.FailedStep, r.StepName)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
					r.StartedAt.In(cfg.Location).Format("2006-01-02 15:04"), r.Status, target, step, r.Reason)
			}
			return tw.Flush()
		},
	}
	c.Flags().IntVar(&limit, "limit", 20, "number of runs to show")
	return c
}
