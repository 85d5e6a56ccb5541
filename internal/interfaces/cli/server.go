package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/classbooker/internal/application/usecases"
	"github.com/example/classbooker/internal/infrastructure/postgres"
	"github.com/example/classbooker/internal/interfaces/web"
)

func NewServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the run history dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap()
			if err != nil {
				return err
			}
			hash, block, err := cfg.SessionKeys()
			if err != nil {
				return err
			}

			setupCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			pool, err := openStore(setupCtx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			tmpl, err := web.ParseTemplates()
			if err != nil {
				return err
			}
			auth := usecases.AuthService{Users: postgres.NewUserRepo(pool)}
			srv := web.New(cfg.HTTPAddr, web.NewSessionManager(hash, block), auth, postgres.NewRunRepo(pool), tmpl, log)

			ctx, stop := signalContext()
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}
}
