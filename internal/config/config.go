package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the runtime settings for the API server.
type Config struct {
	Port        string
	DBPath      string
	LogLevel    string
	LogFormat   string
	JWTSecret   string
	CORSOrigins []string
	RateLimit   int
	RateWindow  time.Duration
	DemoUser    DemoUser
}

// DemoUser is the identity every bearer token resolves to when no JWT secret is set.
type DemoUser struct {
	ID    string
	Email string
	Name  string
}

func defaults(v *viper.Viper) {
	v.SetDefault("port", "8000")
	v.SetDefault("db_path", "deadliner.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("cors_origins", "http://localhost:5173,http://127.0.0.1:5173")
	v.SetDefault("rate_limit", 60)
	v.SetDefault("rate_window", time.Minute)
	v.SetDefault("demo_user_id", "demo_user")
	v.SetDefault("demo_user_email", "demo@example.com")
	v.SetDefault("demo_user_name", "Demo User")
}

// Load reads DEADLINER_* environment variables, after loading envFile into the
// environment when it exists. Variables already set win over the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("load %s: %w", envFile, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat %s: %w", envFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("DEADLINER")
	v.AutomaticEnv()
	defaults(v)

	cfg := &Config{
		Port:        v.GetString("port"),
		DBPath:      v.GetString("db_path"),
		LogLevel:    v.GetString("log_level"),
		LogFormat:   strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		JWTSecret:   v.GetString("jwt_secret"),
		CORSOrigins: splitList(v.GetString("cors_origins")),
		RateLimit:   v.GetInt("rate_limit"),
		RateWindow:  v.GetDuration("rate_window"),
		DemoUser: DemoUser{
			ID:    v.GetString("demo_user_id"),
			Email: v.GetString("demo_user_email"),
			Name:  v.GetString("demo_user_name"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q must be text or json", c.LogFormat))
	}
	if c.RateLimit <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit must be positive, got %d", c.RateLimit))
	}
	if c.RateWindow <= 0 {
		errs = append(errs, fmt.Errorf("rate_window must be positive, got %s", c.RateWindow))
	}
	if c.JWTSecret == "" && c.DemoUser.ID == "" {
		errs = append(errs, errors.New("demo_user_id is required when jwt_secret is empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
