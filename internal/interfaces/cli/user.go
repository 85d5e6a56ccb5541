package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/classbooker/internal/application/usecases"
	"github.com/example/classbooker/internal/infrastructure/config"
	"github.com/example/classbooker/internal/infrastructure/postgres"
)

func NewUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Dashboard user management",
	}
	cmd.AddCommand(newUserAddCmd())
	return cmd
}

func newUserAddCmd() *cobra.Command {
	var username, password string
	c := &cobra.Command{
		Use:   "add",
		Short: "Create a dashboard user",
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

			auth := usecases.AuthService{Users: postgres.NewUserRepo(pool)}
			u, err := auth.Register(ctx, username, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "created user:", u.Username)
			return nil
		},
	}
	c.Flags().StringVar(&username, "username", "", "username")
	c.Flags().StringVar(&password, "password", "", "password (min 8 characters)")
	_ = c.MarkFlagRequired("username")
	_ = c.MarkFlagRequired("password")
	return c
}
