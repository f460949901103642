package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Sosuo3773/openlab-mini/config"
	"github.com/Sosuo3773/openlab-mini/utils"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "openlab",
	Short:         "A small blog with categories and threaded comments",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./config/config.{yaml,json} when present)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration, the logger and the database connection
// shared by every subcommand.
func bootstrap() (config.AppConfig, *zap.Logger, *gorm.DB, config.Backend, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, nil, nil, "", err
	}
	log, err := utils.NewLogger(cfg.Log)
	if err != nil {
		return cfg, nil, nil, "", fmt.Errorf("init logger: %w", err)
	}
	db, backend, err := config.OpenDatabase(cfg, log)
	if err != nil {
		_ = log.Sync()
		return cfg, nil, nil, "", err
	}
	return cfg, log, db, backend, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn("closing database", zap.Error(err))
	}
}
