package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"celemeter/internal/parser"
)

type Config struct {
	Addr           string
	RecordMode     parser.RecordMode
	MaxUploadBytes int64
	WebDir         string
	Metrics        bool
}

func Load() (*Config, error) {
	// Load .env into environment (ignore if missing)
	_ = godotenv.Load()

	cfg := &Config{
		Addr:    getenvDefault("CELEMETER_ADDR", ":8080"),
		WebDir:  getenvDefault("CELEMETER_WEB_DIR", "./web"),
		Metrics: true,
	}

	mode, err := parser.ParseRecordMode(os.Getenv("CELEMETER_RECORD_MODE"))
	if err != nil {
		return nil, fmt.Errorf("invalid CELEMETER_RECORD_MODE: %w", err)
	}
	cfg.RecordMode = mode

	// Upload limit in megabytes
	if v := os.Getenv("CELEMETER_MAX_UPLOAD_MB"); v != "" {
		mb, err := strconv.Atoi(v)
		if err != nil || mb <= 0 {
			return nil, fmt.Errorf("invalid CELEMETER_MAX_UPLOAD_MB: %q", v)
		}
		cfg.MaxUploadBytes = int64(mb) << 20
	} else {
		cfg.MaxUploadBytes = 32 << 20
	}

	if v := os.Getenv("CELEMETER_METRICS"); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "t", "yes", "y", "on":
			cfg.Metrics = true
		default:
			cfg.Metrics = false
		}
	}

	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
