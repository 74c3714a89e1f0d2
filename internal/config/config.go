package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type DatabaseDriver string

const (
	DatabaseDriverSQLite   DatabaseDriver = "sqlite"   // Local file database (default)
	DatabaseDriverPostgres DatabaseDriver = "postgres" // External PostgreSQL via DATABASE_DSN
)

type (
	Config struct {
		HTTP
		Global
		Database
		Lookup
		Scan
		Covers
		Tasks
		Metrics
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver   DatabaseDriver
		Path     string // SQLite file path
		DSN      string // PostgreSQL connection string
		LogLevel string // gorm logger level: silent, error, warn, info
	}
	Lookup struct {
		Provider          string // google, openbd or openlibrary
		BaseURL           string // Overrides the provider's default endpoint
		GoogleBooksAPIKey string
		Timeout           time.Duration
		RequestsPerSecond float64
	}
	Scan struct {
		LookupTimeout      time.Duration // 0 disables the watchdog
		Prefixes           []string      // Accepted barcode prefixes
		SessionIdleTimeout time.Duration
		SweepSchedule      string // Cron format: "*/5 * * * *" = every 5 minutes
	}
	Covers struct {
		Dir string
	}
	Tasks struct {
		Enabled         bool
		Workers         int
		ReleaseAfter    time.Duration
		CleanupInterval time.Duration
	}
	Metrics struct {
		Enabled bool
	}
)

// splitList parses a comma-separated env value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_driver", string(DatabaseDriverSQLite))
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_log_level", "warn")

	// Lookup defaults
	v.SetDefault("lookup_provider", ProviderGoogleBooks)
	v.SetDefault("lookup_base_url", "")
	v.SetDefault("google_books_api_key", "")
	v.SetDefault("lookup_timeout", "10s")
	v.SetDefault("lookup_requests_per_second", 2.0)

	// Scan defaults
	v.SetDefault("scan_lookup_timeout", "30s")
	v.SetDefault("scan_prefixes", "978")
	v.SetDefault("session_idle_timeout", "30m")
	v.SetDefault("session_sweep_schedule", "*/5 * * * *")

	v.SetDefault("covers_dir", "")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")

	v.SetDefault("metrics_enabled", true)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver:   DatabaseDriver(v.GetString("DATABASE_DRIVER")),
			Path:     v.GetString("DATABASE_PATH"),
			DSN:      v.GetString("DATABASE_DSN"),
			LogLevel: v.GetString("DATABASE_LOG_LEVEL"),
		},
		Lookup: Lookup{
			Provider:          v.GetString("LOOKUP_PROVIDER"),
			BaseURL:           v.GetString("LOOKUP_BASE_URL"),
			GoogleBooksAPIKey: v.GetString("GOOGLE_BOOKS_API_KEY"),
			Timeout:           v.GetDuration("LOOKUP_TIMEOUT"),
			RequestsPerSecond: v.GetFloat64("LOOKUP_REQUESTS_PER_SECOND"),
		},
		Scan: Scan{
			LookupTimeout:      v.GetDuration("SCAN_LOOKUP_TIMEOUT"),
			Prefixes:           splitList(v.GetString("SCAN_PREFIXES")),
			SessionIdleTimeout: v.GetDuration("SESSION_IDLE_TIMEOUT"),
			SweepSchedule:      v.GetString("SESSION_SWEEP_SCHEDULE"),
		},
		Covers: Covers{
			Dir: v.GetString("COVERS_DIR"),
		},
		Tasks: Tasks{
			Enabled:         v.GetBool("TASKS_ENABLED"),
			Workers:         v.GetInt("TASK_WORKERS"),
			ReleaseAfter:    v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval: v.GetDuration("TASK_CLEANUP_INTERVAL"),
		},
		Metrics: Metrics{
			Enabled: v.GetBool("METRICS_ENABLED"),
		},
	}
}
