package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sosuo3773/openlab-mini/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: "Creates the post and comment tables when they are missing and adds missing columns.\n" +
		"Safe to run repeatedly; run it once per deployment before starting the server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, db, backend, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck
		defer closeDatabase(db, log)

		if err := config.Migrate(db); err != nil {
			return err
		}
		log.Info("schema up to date", zap.String("backend", string(backend)))
		return nil
	},
}
