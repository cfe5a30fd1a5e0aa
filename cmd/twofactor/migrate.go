package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/twofactor/pkg/config"
	"github.com/dmitrymomot/twofactor/pkg/twofactor/pgstore"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the PostgreSQL two-factor schema",
		Long:      "Applies the embedded two-factor migrations to the database in PG_CONN_URL. \"down\" reverts the latest migration.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}

			var cfg pgstore.Config
			if err := config.Load(&cfg); err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := pgstore.Connect(ctx, cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			switch direction {
			case "up":
				err = pgstore.Migrate(ctx, pool, cfg, root.log)
			case "down":
				err = pgstore.Rollback(ctx, pool, cfg, root.log)
			default:
				err = fmt.Errorf("unknown direction %q", direction)
			}
			if err != nil {
				return err
			}

			root.log.InfoContext(ctx, "migrations applied", "direction", direction)
			return nil
		},
	}
}
