package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultDatabaseURL is used when DATABASE_URL is not set: a SQLite file in
// the working directory.
const DefaultDatabaseURL = "sqlite:///openlab.db"

// AppConfig holds environment driven configuration values.
type AppConfig struct {
	AppPort     string `mapstructure:"app_port"`
	DatabaseURL string `mapstructure:"database_url"`
	// AutoMigrate makes `serve` run the schema migration before listening.
	// Nil means "decide from the backend": on for embedded SQLite, off otherwise.
	AutoMigrate    *bool    `mapstructure:"auto_migrate"`
	GinMode        string   `mapstructure:"gin_mode"`
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	Log  LogConfig  `mapstructure:"log"`
	DB   PoolConfig `mapstructure:"db"`
	Site SiteConfig `mapstructure:"site"`
}

// LogConfig configures the application and access loggers.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	GinPath    string `mapstructure:"gin_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// PoolConfig tunes the database/sql connection pool.
type PoolConfig struct {
	MaxIdleConns       int `mapstructure:"max_idle_conns"`
	MaxOpenConns       int `mapstructure:"max_open_conns"`
	ConnMaxLifetimeMin int `mapstructure:"conn_max_lifetime_min"`
	ConnMaxIdleTimeMin int `mapstructure:"conn_max_idle_time_min"`
}

// SiteConfig is shown in the page header.
type SiteConfig struct {
	Title  string `mapstructure:"title"`
	Notice string `mapstructure:"notice"`
}

// envBindings maps config keys onto the environment variables that override them.
var envBindings = map[string]string{
	"app_port":                  "APP_PORT",
	"database_url":              "DATABASE_URL",
	"auto_migrate":              "AUTO_MIGRATE",
	"gin_mode":                  "GIN_MODE",
	"cors_allowed_origins":      "CORS_ALLOWED_ORIGINS",
	"log.level":                 "LOG_LEVEL",
	"log.path":                  "LOG_PATH",
	"log.gin_path":              "GIN_LOG_PATH",
	"log.max_size_mb":           "LOG_MAX_SIZE_MB",
	"log.max_backups":           "LOG_MAX_BACKUPS",
	"log.max_age_days":          "LOG_MAX_AGE_DAYS",
	"log.compress":              "LOG_COMPRESS",
	"db.max_idle_conns":         "DB_MAX_IDLE_CONNS",
	"db.max_open_conns":         "DB_MAX_OPEN_CONNS",
	"db.conn_max_lifetime_min":  "DB_CONN_MAX_LIFETIME_MIN",
	"db.conn_max_idle_time_min": "DB_CONN_MAX_IDLE_TIME_MIN",
	"site.title":                "SITE_TITLE",
	"site.notice":               "SITE_NOTICE",
}

// Load reads configuration with precedence defaults -> config file -> environment.
// configFile may be empty, in which case config.{yaml,json} is searched in
// ./config and the working directory; a missing file is not an error.
func Load(configFile string) (AppConfig, error) {
	// .env is a local convenience; real environment variables win over it
	_ = godotenv.Load()

	v := viper.New()
	applyDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return AppConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return AppConfig{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config: %w", err)
	}
	if raw := v.GetString("auto_migrate"); raw == "" {
		cfg.AutoMigrate = nil
	}
	cfg.AllowedOrigins = splitAndTrim(cfg.AllowedOrigins)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = DefaultDatabaseURL
	}
	return cfg, nil
}

// ShouldAutoMigrate reports whether `serve` should create the schema itself.
func (c AppConfig) ShouldAutoMigrate() bool {
	if c.AutoMigrate != nil {
		return *c.AutoMigrate
	}
	backend, _, err := ParseDatabaseURL(c.DatabaseURL)
	return err == nil && backend == BackendSQLite
}

// applyDefaults sets sane defaults for values absent from file and environment.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("app_port", "8080")
	v.SetDefault("gin_mode", "release")
	v.SetDefault("cors_allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.gin_path", "logs/gin.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 7)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("db.conn_max_idle_time_min", 5)
	v.SetDefault("site.title", "OpenLab")
}

// splitAndTrim flattens comma separated entries, which is how a list arrives
// from an environment variable.
func splitAndTrim(raw []string) []string {
	items := []string{}
	for _, entry := range raw {
		for _, item := range strings.Split(entry, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				items = append(items, trimmed)
			}
		}
	}
	return items
}
