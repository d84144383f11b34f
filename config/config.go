// Package config loads the server's settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all server settings.
type Config struct {
	Port         string
	GinMode      string
	DatabasePath string
	SiteURL      string

	AdminEmail        string
	AdminPassword     string
	AdminPasswordHash string
	SessionSecret     string
	SessionTTL        time.Duration

	CVFileName    string
	CVLinkTTL     time.Duration
	MaxUploadSize int64

	SMTPHost string
	SMTPPort string
	SMTPUser string
	SMTPPass string
	ToEmail  string

	SentryDSN      string
	Environment    string
	VisitRetention time.Duration

	// Warnings lists development defaults that were applied.
	Warnings []string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		Port:              get("PORT", "8080"),
		GinMode:           get("GIN_MODE", "debug"),
		DatabasePath:      get("DATABASE_PATH", "portfolio.db"),
		SiteURL:           strings.TrimRight(get("SITE_URL", "http://localhost:8080"), "/"),
		AdminEmail:        get("ADMIN_EMAIL", ""),
		AdminPassword:     getenv("ADMIN_PASSWORD"),
		AdminPasswordHash: get("ADMIN_PASSWORD_HASH", ""),
		SessionSecret:     get("SESSION_SECRET", ""),
		CVFileName:        get("CV_FILE_NAME", "Chandika-Nawodya-Senarathna-CV.pdf"),
		SMTPHost:          get("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:          get("SMTP_PORT", "587"),
		SMTPUser:          get("SMTP_USER", ""),
		SMTPPass:          getenv("SMTP_PASS"),
		ToEmail:           get("TO_EMAIL", ""),
		SentryDSN:         get("SENTRY_DSN", ""),
		Environment:       get("ENVIRONMENT", "development"),
	}

	var err error
	if cfg.SessionTTL, err = duration(get("SESSION_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	if cfg.CVLinkTTL, err = duration(get("CV_LINK_TTL", "15m")); err != nil {
		return nil, fmt.Errorf("CV_LINK_TTL: %w", err)
	}
	if cfg.VisitRetention, err = duration(get("VISIT_RETENTION", "8760h")); err != nil {
		return nil, fmt.Errorf("VISIT_RETENTION: %w", err)
	}
	mb, err := strconv.ParseInt(get("MAX_UPLOAD_MB", "10"), 10, 64)
	if err != nil || mb <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB: must be a positive integer")
	}
	cfg.MaxUploadSize = mb << 20

	if cfg.AdminEmail == "" {
		cfg.AdminEmail = "admin@localhost"
		cfg.warn("using default admin email; set ADMIN_EMAIL")
	}
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		if cfg.GinMode == "release" {
			return nil, fmt.Errorf("ADMIN_PASSWORD or ADMIN_PASSWORD_HASH is required in release mode")
		}
		cfg.AdminPassword = "admin123"
		cfg.warn("using default admin password; set ADMIN_PASSWORD_HASH")
	}
	if cfg.SessionSecret == "" {
		if cfg.GinMode == "release" {
			return nil, fmt.Errorf("SESSION_SECRET is required in release mode")
		}
		cfg.SessionSecret = "dev-session-secret"
		cfg.warn("using default session secret; set SESSION_SECRET")
	}
	return cfg, nil
}

func (c *Config) warn(msg string) {
	c.Warnings = append(c.Warnings, msg)
}

func duration(v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return d, nil
}

// SMTPConfigured reports whether the contact form can send mail.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPUser != "" && c.SMTPPass != "" && c.ToEmail != ""
}
