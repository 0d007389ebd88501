package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Mode selects where discovery searches are answered from.
// Demo mode is an explicit caller choice, never entered on error.
const (
	ModeLive = "live"
	ModeDemo = "demo"
)

type Config struct {
	App struct {
		Env  string // development | production
		Mode string // live | demo
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver string // sqlite | mysql
		DSN    string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Host string
		Port string
	}

	Directory struct {
		BaseURL string
		Timeout time.Duration
	}

	Notify struct {
		HistoryLimit int
	}

	Actor struct {
		ID    string
		Email string
	}
}

func New() *Config {
	cfg := &Config{}

	// App
	cfg.App.Env = getEnvDefault("APP_ENV", "development")
	cfg.App.Mode = getEnvDefault("APP_MODE", ModeLive)

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "matching_engine")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.Driver = getEnvDefault("DB_DRIVER", "sqlite")
	switch cfg.DB.Driver {
	case "mysql":
		cfg.DB.DSN = getEnvDefault("MYSQL_DSN",
			"root:root@tcp(localhost:3306)/tennis_connect?parseTime=true&charset=utf8mb4&loc=UTC")
	default:
		cfg.DB.DSN = getEnvDefault("SQLITE_PATH", "tennis-connect.db")
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "127.0.0.1")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8080")

	// Remote player directory
	cfg.Directory.BaseURL = getEnvDefault("DIRECTORY_URL", "http://localhost:9000/api")
	if secs, err := strconv.Atoi(getEnvDefault("DIRECTORY_TIMEOUT_SECONDS", "10")); err == nil {
		cfg.Directory.Timeout = time.Duration(secs) * time.Second
	}

	// Notification center
	cfg.Notify.HistoryLimit = 200
	if n, err := strconv.Atoi(getEnvDefault("NOTIFY_HISTORY_LIMIT", "200")); err == nil && n > 0 {
		cfg.Notify.HistoryLimit = n
	}

	// Actor identity (assumed authenticated upstream)
	cfg.Actor.ID = getEnvDefault("ACTOR_ID", "")
	cfg.Actor.Email = getEnvDefault("ACTOR_EMAIL", "demo@tennis-connect.local")

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
