package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Identity Provider
	// WebAPIKey はsignInWithCustomToken交換エンドポイントに渡すAPIキー。
	// コードへの埋め込みは禁止で、環境変数からのみ供給する。
	WebAPIKey          string
	ServiceAccountFile string
	IdentityBaseURL    string
	ProviderTimeout    time.Duration

	// Rate Limit（req/min単位）
	RateLimitGeneral int
	RateLimitAuth    int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

const defaultIdentityBaseURL = "https://identitytoolkit.googleapis.com"

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.WebAPIKey = os.Getenv("FIREBASE_WEB_API_KEY")
	if cfg.WebAPIKey == "" {
		missing = append(missing, "FIREBASE_WEB_API_KEY")
	}

	cfg.ServiceAccountFile = os.Getenv("FIREBASE_SERVICE_ACCOUNT_FILE")
	if cfg.ServiceAccountFile == "" {
		missing = append(missing, "FIREBASE_SERVICE_ACCOUNT_FILE")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.IdentityBaseURL = getEnvString("IDENTITY_BASE_URL", defaultIdentityBaseURL)
	cfg.ProviderTimeout = getEnvDuration("PROVIDER_TIMEOUT", 10*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
