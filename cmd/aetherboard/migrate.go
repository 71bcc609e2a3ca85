package main

import (
	"github.com/spf13/cobra"

	"github.com/aetherboard/aetherboard/internal/persistence"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()
		return persistence.RunMigrations(cmd.Context(), rt.pg.PoolHandle(), rt.logger)
	},
}
