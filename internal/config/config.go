package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Library
		UI
		Global
		Reindex
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Library struct {
		// AdminEmail promotes a registration with this email straight to the
		// administrator role.
		AdminEmail       string
		BooksPerPage     int
		MaxSearchResults int
		// PaginateErrorOut makes out-of-range catalog pages a 404 instead of
		// an empty page.
		PaginateErrorOut bool
	}
	UI struct {
		TemplatesPath string
		StaticPath    string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Reindex struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
	Auth struct {
		SessionSecret    string
		SessionLifetime  time.Duration
		BcryptCost       int
		SecureCookies    bool // Set to false for local dev without HTTPS
		MaxLoginAttempts int
		LockoutDuration  time.Duration
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("templates_path", "./templates")
	v.SetDefault("static_path", "./static")

	v.SetDefault("elibrary_admin", "")
	v.SetDefault("books_per_page", 20)
	v.SetDefault("max_search_results", 50)
	v.SetDefault("paginate_error_out", true)

	v.SetDefault("reindex_enabled", true)
	v.SetDefault("reindex_schedule", "0 * * * *") // Hourly at :00

	// Auth defaults
	v.SetDefault("auth_session_secret", "") // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_lockout_duration", "30m")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Library: Library{
			AdminEmail:       v.GetString("ELIBRARY_ADMIN"),
			BooksPerPage:     v.GetInt("BOOKS_PER_PAGE"),
			MaxSearchResults: v.GetInt("MAX_SEARCH_RESULTS"),
			PaginateErrorOut: v.GetBool("PAGINATE_ERROR_OUT"),
		},
		UI: UI{
			TemplatesPath: v.GetString("TEMPLATES_PATH"),
			StaticPath:    v.GetString("STATIC_PATH"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Reindex: Reindex{
			Enabled:  v.GetBool("REINDEX_ENABLED"),
			Schedule: v.GetString("REINDEX_SCHEDULE"),
		},
		Auth: Auth{
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
	}
}
