package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Port          int      `toml:"port"`
	DataPath      string   `toml:"data_path"`
	UploadPath    string   `toml:"upload_path"`
	DBPath        string   `toml:"db_path"`
	JWTSecret     string   `toml:"jwt_secret"`
	AdminUsername string   `toml:"admin_username"`
	AdminPassword string   `toml:"admin_password"`
	CORSOrigins   []string `toml:"cors_origins"`
	MaxUploadMB   int64    `toml:"max_upload_mb"`
	MaxSubtitleKB int64    `toml:"max_subtitle_kb"`
	SessionTTL    string   `toml:"session_ttl"`
	LogLevel      string   `toml:"log_level"`
	LogFormat     string   `toml:"log_format"`

	// GeneratedSecret is set when no JWT secret was configured and a random
	// one was created for this run.
	GeneratedSecret bool `toml:"-"`
}

func defaults() *Config {
	return &Config{
		Port:          8080,
		DataPath:      "/data",
		AdminUsername: "admin",
		AdminPassword: "admin",
		CORSOrigins:   []string{"*"},
		MaxUploadMB:   2048,
		MaxSubtitleKB: 4096,
		SessionTTL:    "6h",
		LogLevel:      "info",
		LogFormat:     "auto",
	}
}

// Load builds the configuration from defaults, then the TOML file at path
// (if path is non-empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("config file %s not found", path)
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		cfg.Port = v
	}
	cfg.DataPath = getEnv("DATA_PATH", cfg.DataPath)
	cfg.UploadPath = getEnv("UPLOAD_PATH", cfg.UploadPath)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.AdminUsername = getEnv("ADMIN_USERNAME", cfg.AdminUsername)
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.AdminPassword)
	cfg.SessionTTL = getEnv("SESSION_TTL", cfg.SessionTTL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	if v, err := strconv.ParseInt(os.Getenv("MAX_UPLOAD_MB"), 10, 64); err == nil {
		cfg.MaxUploadMB = v
	}
	if v, err := strconv.ParseInt(os.Getenv("MAX_SUBTITLE_KB"), 10, 64); err == nil {
		cfg.MaxSubtitleKB = v
	}

	// CORS origins: comma-separated list or "*"
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}
}

func (c *Config) finalize() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.UploadPath == "" {
		c.UploadPath = filepath.Join(c.DataPath, "uploads")
	}
	if c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataPath, "subreview.db")
	}
	if _, err := c.SessionIdle(); err != nil {
		return err
	}
	if c.MaxUploadMB <= 0 || c.MaxSubtitleKB <= 0 {
		return errors.New("upload limits must be positive")
	}

	// JWT secret: require explicit setting or generate random
	if c.JWTSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generate jwt secret: %w", err)
		}
		c.JWTSecret = hex.EncodeToString(b)
		c.GeneratedSecret = true
	}
	return nil
}

// SessionIdle is how long an untouched review session is kept.
func (c *Config) SessionIdle() (time.Duration, error) {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return 0, fmt.Errorf("session_ttl: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL)
	}
	return d, nil
}

func (c *Config) MaxUploadBytes() int64   { return c.MaxUploadMB << 20 }
func (c *Config) MaxSubtitleBytes() int64 { return c.MaxSubtitleKB << 10 }

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
