package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Source variants.
const (
	SourceSQLite = "sqlite"
	SourceNCEI   = "ncei"
)

type AppConfig struct {
	Port string

	// DataSource selects the observation backend: sqlite or ncei.
	DataSource string

	// SQLitePath locates the bulk-loaded database.
	SQLitePath string

	// NCEI archive settings.
	NCEIToken         string
	NCEIBaseURL       string
	NCEIMaxConcurrent int

	// GeocoderAPIKey enables postal-code lookups when set.
	GeocoderAPIKey string

	// Selection tunables.
	StationCacheTTL time.Duration
	RecencyWindow   time.Duration
	CandidateLimit  int

	// Assembly tunables.
	MaxInFlight  int
	FetchTimeout time.Duration

	// HTTPTimeout applies to outbound archive calls.
	HTTPTimeout time.Duration

	// CacheSweepInterval controls the background sweep of expired
	// selection memo entries.
	CacheSweepInterval time.Duration
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.DataSource = getenvDefault("DATA_SOURCE", SourceSQLite)
	if cfg.DataSource != SourceSQLite && cfg.DataSource != SourceNCEI {
		return nil, fmt.Errorf("invalid DATA_SOURCE %q: must be %q or %q", cfg.DataSource, SourceSQLite, SourceNCEI)
	}

	cfg.SQLitePath = getenvDefault("SQLITE_PATH", "weather.db")

	cfg.NCEIToken = os.Getenv("NCEI_TOKEN")
	cfg.NCEIBaseURL = os.Getenv("NCEI_BASE_URL")
	cfg.NCEIMaxConcurrent = getenvInt("NCEI_MAX_CONCURRENT", 4)
	if cfg.DataSource == SourceNCEI && cfg.NCEIToken == "" {
		return nil, fmt.Errorf("NCEI_TOKEN is required when DATA_SOURCE=%s", SourceNCEI)
	}

	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")

	var err error
	cfg.StationCacheTTL, err = getenvDuration("STATION_CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}

	// Stations with no data in the last year and a half are stale for
	// selection purposes.
	cfg.RecencyWindow, err = getenvDuration("RECENCY_WINDOW", "13140h")
	if err != nil {
		return nil, err
	}

	cfg.CandidateLimit = getenvInt("CANDIDATE_LIMIT", 25)
	cfg.MaxInFlight = getenvInt("MAX_IN_FLIGHT", 4)

	cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	cfg.CacheSweepInterval, err = getenvDuration("CACHE_SWEEP_INTERVAL", "1h")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	v := getenvDefault(key, def)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
