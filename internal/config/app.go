package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	HTTPAddr string
	GRPCAddr string

	JWTSecret string
	TokenTTL  time.Duration

	LogLevel  string
	LogFormat string // json | text

	FrontendURL string

	ReminderEnabled bool
	ReminderCron    string
	DigestCron      string

	StudioConfigPath string
}

// LoadDotEnv подхватывает .env (или перечисленные файлы), если они есть.
// Уже выставленные переменные окружения не перезаписываются.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func LoadAppConfig() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr:         getEnv("GRPC_ADDR", ":50051"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		TokenTTL:         time.Duration(getEnvInt("JWT_TTL_HOURS", 24*7)) * time.Hour,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		FrontendURL:      getEnv("FRONTEND_URL", "http://localhost:5173"),
		ReminderEnabled:  getEnvBool("REMINDER_ENABLED", true),
		ReminderCron:     getEnv("REMINDER_CRON", "0 8 * * *"),
		DigestCron:       getEnv("DIGEST_CRON", "0 7 * * *"),
		StudioConfigPath: getEnv("STUDIO_CONFIG", ""),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("invalid app config: JWT_SECRET must not be empty")
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("invalid app config: JWT_TTL_HOURS must be positive")
	}

	return cfg, nil
}
