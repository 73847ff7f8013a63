package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Notify   NotifyConfig
	Log      LogConfig
	Storage  StorageConfig
	Postgres PostgresConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

// AuthConfig keeps raw values; service.ParseAuthSettings validates them.
type AuthConfig struct {
	AccessSecret     string
	RefreshSecret    string
	AccessTTL        string
	RefreshTTL       string
	PasswordResetTTL string
	BcryptCost       string
	SweepInterval    string
}

type NotifyConfig struct {
	FrontendURL string
	NotifierURL string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

type StorageConfig struct {
	Driver string
}

type PostgresConfig struct {
	DatabaseURL     string
	Host            string
	Port            string
	User            string
	Password        string
	Database        string
	SSLMode         string
	ConnectAttempts int
}

// Load reads .env (if present) and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Server: ServerConfig{
			Port:           getenv("PORT", "8080"),
			Env:            getenv("APP_ENV", "development"),
			AllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		},
		Auth: AuthConfig{
			AccessSecret:     os.Getenv("JWT_ACCESS_SECRET"),
			RefreshSecret:    os.Getenv("JWT_REFRESH_SECRET"),
			AccessTTL:        getenv("JWT_ACCESS_TTL", "15m"),
			RefreshTTL:       getenv("JWT_REFRESH_TTL", "720h"),
			PasswordResetTTL: getenv("PASSWORD_RESET_TTL", "1h"),
			BcryptCost:       getenv("BCRYPT_COST", "10"),
			SweepInterval:    getenv("TOKEN_SWEEP_INTERVAL", "10m"),
		},
		Notify: NotifyConfig{
			FrontendURL: strings.TrimRight(getenv("FRONTEND_URL", "http://localhost:5173"), "/"),
			NotifierURL: os.Getenv("RESET_NOTIFIER_URL"),
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Pretty: getbool("LOG_PRETTY", false),
		},
		Storage: StorageConfig{
			Driver: getenv("STORAGE_DRIVER", "postgres"),
		},
		Postgres: PostgresConfig{
			DatabaseURL:     os.Getenv("DATABASE_URL"),
			Host:            getenv("PGHOST", "localhost"),
			Port:            getenv("PGPORT", "5432"),
			User:            os.Getenv("PGUSER"),
			Password:        os.Getenv("PGPASSWORD"),
			Database:        os.Getenv("PGDATABASE"),
			SSLMode:         getenv("PGSSLMODE", "disable"),
			ConnectAttempts: getint("DB_CONNECT_ATTEMPTS", 5),
		},
	}
}

// IsProduction reports whether internal error details must be hidden.
func (c ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getint(key string, fallback int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
