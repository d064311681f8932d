// Package config loads process configuration from the environment and the
// dashboard settings file.
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

const (
	DefaultAddr               = ":8501"
	DefaultMatchCount         = 5
	DefaultLiveRefreshSeconds = 30
	DefaultSettingsFile       = "config.json"
)

// Config holds all configuration values for the dashboard process
type Config struct {
	Addr    string
	DataDir string

	SettingsPath  string
	BlacklistPath string
	CachePath     string

	// Storage backends, in order of preference: Postgres, SQLite, memory, files.
	PostgresDSN   string
	SQLitePath    string
	MigrationsDir string
	Store         string
	RedisURL      string

	LogLevel string

	DashboardPasswordHash string

	MatchCount  int
	LiveRefresh time.Duration

	// Seed values for the settings file when it has no API key yet.
	RiotAPIKey  string
	RiotRegion  string
	// RiotBaseURL replaces the regional Riot hosts, e.g. for a local proxy.
	RiotBaseURL string

	Lambda bool
}

// Load reads .env files (outside Lambda) and then environment variables.
func Load() (*Config, error) {
	lambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
	if !lambda {
		_ = godotenv.Load(".env", ".env.local")
	}

	dataDir := getEnvOrDefault("DATA_DIR", ".")
	cfg := &Config{
		Addr:                  getEnvOrDefault("ADDR", DefaultAddr),
		DataDir:               dataDir,
		SettingsPath:          getEnvOrDefault("SETTINGS_PATH", filepath.Join(dataDir, DefaultSettingsFile)),
		BlacklistPath:         getEnvOrDefault("BLACKLIST_PATH", filepath.Join(dataDir, "blacklist.csv")),
		CachePath:             getEnvOrDefault("PUUID_CACHE_PATH", filepath.Join(dataDir, "puuid_cache.json")),
		PostgresDSN:           strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		SQLitePath:            strings.TrimSpace(os.Getenv("DB_PATH")),
		MigrationsDir:         strings.TrimSpace(os.Getenv("DB_MIGRATIONS_DIR")),
		Store:                 strings.ToLower(getEnvOrDefault("STORE", "file")),
		RedisURL:              strings.TrimSpace(os.Getenv("REDIS_URL")),
		LogLevel:              strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		DashboardPasswordHash: strings.TrimSpace(os.Getenv("DASHBOARD_PASSWORD_HASH")),
		RiotAPIKey:            strings.TrimSpace(os.Getenv("RIOT_API_KEY")),
		RiotRegion:            strings.TrimSpace(os.Getenv("RIOT_REGION")),
		RiotBaseURL:           strings.TrimSpace(os.Getenv("RIOT_API_BASE_URL")),
		Lambda:                lambda,
	}

	matchCount, err := strconv.Atoi(getEnvOrDefault("MATCH_COUNT", strconv.Itoa(DefaultMatchCount)))
	if err != nil || matchCount < 1 || matchCount > 100 {
		return nil, fmt.Errorf("invalid MATCH_COUNT: must be between 1 and 100")
	}
	cfg.MatchCount = matchCount

	refresh, err := strconv.Atoi(getEnvOrDefault("LIVE_REFRESH_SECONDS", strconv.Itoa(DefaultLiveRefreshSeconds)))
	if err != nil || refresh < 5 {
		return nil, fmt.Errorf("invalid LIVE_REFRESH_SECONDS: must be a number >= 5")
	}
	cfg.LiveRefresh = time.Duration(refresh) * time.Second

	switch cfg.Store {
	case "file", "memory":
	default:
		return nil, fmt.Errorf("invalid STORE %q: must be file or memory", cfg.Store)
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}
