package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
// serveモード（デバイス側）とcloudモード（クラウド側）で必須項目が異なるため、
// LoadはデフォルトのみをLoadし、必須検証は ValidateServe / ValidateCloud で行う。
type Config struct {
	// Local store (serve)
	DataDir string

	// Cloud collection API (serve)
	CloudBaseURL string

	// Extraction (serve)
	LLMEndpoint    string
	LLMModel       string
	LLMAPIKey      string
	ExtractTimeout time.Duration
	ExtractMaxSize int64

	// Database (cloud)
	DatabaseURL string

	// Auth (cloud)
	JWTSecret          string
	SessionMaxAge      time.Duration
	GoogleClientID     string
	GoogleTokenInfoURL string

	// Rate Limit
	RateLimitGeneral int
	RateLimitExtract int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// ここでは検証を行わず、モード別の必須検証は ValidateServe / ValidateCloud が担う。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.DataDir = getEnvString("DATA_DIR", defaultDataDir())
	cfg.CloudBaseURL = os.Getenv("CLOUD_BASE_URL")

	cfg.LLMEndpoint = os.Getenv("LLM_ENDPOINT")
	cfg.LLMModel = os.Getenv("LLM_MODEL")
	cfg.LLMAPIKey = getEnvString("GROQ_API_KEY", os.Getenv("GEMINI_API_KEY"))
	cfg.ExtractTimeout = getEnvDuration("EXTRACT_TIMEOUT", 30*time.Second)
	cfg.ExtractMaxSize = getEnvInt64("EXTRACT_MAX_SIZE", 5242880)

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.SessionMaxAge = getEnvDuration("SESSION_MAX_AGE", 720*time.Hour)
	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.GoogleTokenInfoURL = os.Getenv("GOOGLE_TOKENINFO_URL")

	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitExtract = getEnvInt("RATE_LIMIT_EXTRACT", 10)

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// ValidateServe はserveモード（デバイス側サーバー）の必須項目を検証する。
// CLOUD_BASE_URLはオフライン利用を許容するため任意。
func (c *Config) ValidateServe() error {
	var missing []string
	if c.DataDir == "" {
		missing = append(missing, "DATA_DIR")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables are not set: %v", missing)
	}
	return nil
}

// ValidateCloud はcloudモード（クラウド側サーバー）の必須項目を検証する。
func (c *Config) ValidateCloud() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("required environment variables are not set: %v", missing)
	}
	return nil
}

// defaultDataDir はローカルストアのデフォルトディレクトリを返す。
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".recipeapp"
	}
	return home + "/.recipeapp"
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

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
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
