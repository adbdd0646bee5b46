package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration sourced from environment variables.
// It is constructed once at process start and passed by reference into
// services; there is no ambient global configuration.
type Config struct {
	Environment  string
	HTTPPort     string
	DatabasePath string
	FrontendDir  string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// External notifications: comma-separated shoutrrr URLs.
	NotifyURLs []string

	// CORS origins allowed to call the API. Empty allows any origin.
	CORSOrigins []string

	// OCR service
	OCRPort            string
	StorageDir         string
	TesseractCmd       string
	OCRSidecarURL      string
	GeminiAPIKey       string
	GeminiModel        string
	UseGeminiAlways    bool
	FallbackMinConf    float64
	FallbackMinTextLen int
	ImageRetention     time.Duration
}

// Load reads env vars (optionally seeded from a .env file) and falls back to
// defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	// Missing .env is the normal case in production.
	_ = godotenv.Load()

	cfg := Config{
		Environment:  getEnv("CV_ENV", "development"),
		HTTPPort:     getEnv("CV_HTTP_PORT", "8080"),
		DatabasePath: getEnv("CV_DB_PATH", filepath.Join("data", "comunavision.db")),
		FrontendDir:  getEnv("CV_FRONTEND_DIR", filepath.Clean(filepath.Join("..", "frontend", "dist"))),

		JWTSecret: getEnv("CV_JWT_SECRET", "change-me-in-production"),
		TokenTTL:  time.Duration(getEnvInt("CV_TOKEN_TTL_MINUTES", 60)) * time.Minute,

		NotifyURLs: splitList(getEnv("CV_NOTIFY_URLS", "")),

		CORSOrigins: splitList(getEnv("CV_CORS_ORIGINS", "")),

		OCRPort:            getEnv("CV_OCR_PORT", "8090"),
		StorageDir:         getEnv("CV_OCR_STORAGE_DIR", filepath.Join("storage", "images")),
		TesseractCmd:       getEnv("TESSERACT_CMD", "tesseract"),
		OCRSidecarURL:      getEnv("CV_OCR_SIDECAR_URL", ""),
		GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "models/gemini-2.5-flash"),
		UseGeminiAlways:    getEnv("USE_GEMINI_ALWAYS", "1") == "1",
		FallbackMinConf:    getEnvFloat("FALLBACK_MIN_CONF", 0.60),
		FallbackMinTextLen: getEnvInt("FALLBACK_MIN_TEXT_LEN", 80),
		ImageRetention:     time.Duration(getEnvInt("CV_OCR_RETENTION_HOURS", 24)) * time.Hour,
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return n
		}
	}

	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f
		}
	}

	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
