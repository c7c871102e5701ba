// Package config provides application configuration loaded from environment
// variables. A local .env file is honored when present so the service can run
// against a development OpenD without exporting anything.
package config

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"os"
)

// Config holds all application configuration. Load it once at startup; there
// is no dynamic reload.
type Config struct {
	// AppName and AppVersion are reported by the root and health endpoints.
	AppName    string
	AppVersion string

	// Debug switches gin into debug mode.
	Debug bool

	// ServerHost and ServerPort are the HTTP listen address.
	ServerHost string
	ServerPort string

	// FutuHost and FutuPort locate the local OpenD gateway daemon.
	FutuHost string
	FutuPort int

	// SecretKey is declared for deployment parity; nothing reads it yet.
	SecretKey string

	// DatabaseURL is declared for deployment parity; nothing reads it yet.
	DatabaseURL string

	// TradePassword unlocks trading on the gateway. Empty leaves trading
	// disabled.
	TradePassword string

	// LogLevel is the logrus level name (e.g. "INFO", "debug").
	LogLevel string

	// CORSOrigins is the list of allowed browser origins. The env value may
	// be a JSON array or a comma-separated list.
	CORSOrigins []string

	// GatewayTimeout bounds every single call into the gateway driver.
	GatewayTimeout time.Duration
}

var defaultCORSOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"http://localhost:5174",
	"http://127.0.0.1:5174",
}

// Load reads configuration from the environment, falling back to defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppName:        getEnv("APP_NAME", "富途股票交易管理系统"),
		AppVersion:     getEnv("APP_VERSION", "0.1.0"),
		Debug:          getEnvBool("DEBUG", true),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ServerPort:     getEnv("SERVER_PORT", "8000"),
		FutuHost:       getEnv("FUTU_HOST", "127.0.0.1"),
		FutuPort:       getEnvInt("FUTU_PORT", 11111),
		SecretKey:      getEnv("SECRET_KEY", "dev-secret-key-change-in-production"),
		DatabaseURL:    getEnv("DATABASE_URL", "sqlite:///./futu_trading.db"),
		TradePassword:  getEnv("TRADE_PASSWORD", ""),
		LogLevel:       getEnv("LOG_LEVEL", "INFO"),
		CORSOrigins:    getEnvOrigins("CORS_ORIGINS", defaultCORSOrigins),
		GatewayTimeout: getEnvDuration("GATEWAY_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid integer for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.ToLower(value))
	if err != nil {
		log.Printf("Invalid boolean for %s: %q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return d
}

// getEnvOrigins parses CORS origins from either a JSON array
// (`["http://a","http://b"]`) or a comma-separated list.
func getEnvOrigins(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "[") {
		var origins []string
		if err := json.Unmarshal([]byte(value), &origins); err != nil {
			log.Printf("Invalid JSON for %s: %v, using default", key, err)
			return defaultValue
		}
		return origins
	}
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		return defaultValue
	}
	return origins
}
