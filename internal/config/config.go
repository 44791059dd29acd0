package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	ListenAddr          string
	DataDir             string
	FontDir             string
	LogLevel            string
	MaxUploadBytes      int64
	CleanupIntervalMins int
	FileMaxAgeHours     int
}

func Load() *Config {
	return &Config{
		ListenAddr:          envOr("LISTEN_ADDR", ":8080"),
		DataDir:             envOr("DATA_DIR", "./data"),
		FontDir:             envOr("FONT_DIR", "/usr/share/fonts/truetype"),
		LogLevel:            envOr("LOG_LEVEL", "info"),
		MaxUploadBytes:      envInt64Or("MAX_UPLOAD_BYTES", 16*1024*1024),
		CleanupIntervalMins: envIntOr("CLEANUP_INTERVAL_MINS", 60),
		FileMaxAgeHours:     envIntOr("FILE_MAX_AGE_HOURS", 24),
	}
}

// UploadDir and OutputDir are fixed under DataDir so a single volume mount
// covers all state.
func (c *Config) UploadDir() string { return filepath.Join(c.DataDir, "uploads") }
func (c *Config) OutputDir() string { return filepath.Join(c.DataDir, "outputs") }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
