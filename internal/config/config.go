package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeToken AuthMode = "token" // Bearer API tokens issued per user
)

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Tasks
		Categories
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path        string
		LogLevel    string        // silent, error, warn, info
		BusyTimeout time.Duration // How long a writer waits for the SQLite lock
	}
	Auth struct {
		Mode AuthMode
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Categories struct {
		CreateMaxRetries  int      // Attempts when a concurrent insert takes the same position
		DefaultNames      []string // Created for users without categories
		NormalizeSchedule string   // Cron format, empty disables: "0 3 * * *" = daily at 03:00
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_log_level", "warn")
	v.SetDefault("database_busy_timeout", "5s")

	// Auth defaults
	v.SetDefault("auth_mode", "none")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Category defaults
	v.SetDefault("category_create_max_retries", DefaultCategoryCreateMaxRetries)
	v.SetDefault("category_default_names", "to-read,reading,finished")
	v.SetDefault("category_normalize_schedule", "")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path:        v.GetString("DATABASE_PATH"),
			LogLevel:    v.GetString("DATABASE_LOG_LEVEL"),
			BusyTimeout: v.GetDuration("DATABASE_BUSY_TIMEOUT"),
		},
		Auth: Auth{
			Mode: AuthMode(v.GetString("AUTH_MODE")),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Categories: Categories{
			CreateMaxRetries:  v.GetInt("CATEGORY_CREATE_MAX_RETRIES"),
			DefaultNames:      splitList(v.GetString("CATEGORY_DEFAULT_NAMES")),
			NormalizeSchedule: v.GetString("CATEGORY_NORMALIZE_SCHEDULE"),
		},
	}
}

// splitList parses a comma-separated env value, dropping empty items.
func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
