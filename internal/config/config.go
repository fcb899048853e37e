package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string        `yaml:"port"`
	SupabaseURL    string        `yaml:"supabase_url"`
	SupabaseKey    string        `yaml:"supabase_key"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`
	LogLevel       slog.Level    `yaml:"-"`
	LogLevelName   string        `yaml:"log_level"`
	SessionSecret  string        `yaml:"session_secret"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	AdminEmail     string        `yaml:"admin_email"`
	AdminPassword  string        `yaml:"admin_password"`
	CloserEmail    string        `yaml:"closer_email"`
	CloserPassword string        `yaml:"closer_password"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// Load reads an optional YAML file, then lets environment variables (and a
// .env file when present) override it. Env wins so deploys can patch a
// single value without editing the file.
func Load(path string) (Config, error) {
	_ = godotenv.Load() // best effort

	cfg := Config{
		Port:           "8080",
		HTTPTimeout:    15 * time.Second,
		LogLevelName:   "info",
		SessionTTL:     12 * time.Hour,
		AllowedOrigins: []string{"*"},
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.SupabaseURL = envOr("SUPABASE_URL", cfg.SupabaseURL)
	cfg.SupabaseKey = envOr("SUPABASE_ANON_KEY", cfg.SupabaseKey)
	cfg.SessionSecret = envOr("SESSION_SECRET", cfg.SessionSecret)
	cfg.AdminEmail = envOr("ADMIN_EMAIL", cfg.AdminEmail)
	cfg.AdminPassword = envOr("ADMIN_PASSWORD", cfg.AdminPassword)
	cfg.CloserEmail = envOr("CLOSER_EMAIL", cfg.CloserEmail)
	cfg.CloserPassword = envOr("CLOSER_PASSWORD", cfg.CloserPassword)
	cfg.LogLevelName = envOr("LOG_LEVEL", cfg.LogLevelName)

	if v := os.Getenv("HTTP_TIMEOUT_SECONDS"); v != "" {
		if d, err := time.ParseDuration(v + "s"); err == nil {
			cfg.HTTPTimeout = d
		}
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitCSV(v)
	}

	cfg.LogLevel = parseLevel(cfg.LogLevelName)

	if cfg.SupabaseURL == "" {
		return Config{}, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required")
	}
	return cfg, nil
}

func parseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
