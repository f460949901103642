package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Sosuo3773/openlab-mini/config"
	"github.com/Sosuo3773/openlab-mini/controllers"
	"github.com/Sosuo3773/openlab-mini/repository"
	"github.com/Sosuo3773/openlab-mini/routes"
	"github.com/Sosuo3773/openlab-mini/utils"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, db, backend, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck
		defer closeDatabase(db, log)

		if cfg.ShouldAutoMigrate() {
			if err := config.Migrate(db); err != nil {
				return err
			}
			log.Info("schema migrated on startup", zap.String("backend", string(backend)))
		}

		blog := controllers.NewBlogController(repository.NewBlogRepository(db), cfg.Site, log)
		r, err := routes.SetupRouter(cfg, log, blog)
		if err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = ":" + cfg.AppPort
		}
		log.Info("starting server", zap.String("addr", addr))
		return utils.GraceServer(cmd.Context(), addr, r, log)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default \":\" + APP_PORT)")
}
