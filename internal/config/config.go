// Package config provides configuration management functionality.
//
// Configuration is loaded from environment variables (.env file, then the
// process environment) with typed defaults for every tunable: poller
// intervals, cooldown windows, timeouts, retention caps, the HTTP port, and
// the CORS allowlist.
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

// Config holds application configuration.
type Config struct {
	DataDir  string // base directory for SQLite files and the notification snapshot
	Port     int    // HTTP/WebSocket listen port
	LogLevel string // debug, info, warn, error
	DevMode  bool

	CORSAllowedOrigins []string

	Market     MarketConfig
	Pollers    PollersConfig
	Store      StoreConfig
	Alerts     AlertsConfig
	Threat     ThreatConfig
	Fanout     FanoutConfig
	TTS        TTSConfig
	APITimeout time.Duration
}

// MarketConfig tunes the exchange/market adapter (C1).
type MarketConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
}

// PollersConfig tunes source poller cadences (C2).
type PollersConfig struct {
	SocialInterval    time.Duration
	NewsInterval      time.Duration
	TechnicalInterval time.Duration
	PriceInterval     time.Duration
}

// StoreConfig tunes the notification store (C4).
type StoreConfig struct {
	MaxNotifications int
	RetentionAge     time.Duration
	SnapshotPath     string
}

// AlertsConfig tunes the alert engine (C5).
type AlertsConfig struct {
	EvaluationInterval  time.Duration
	EmergencyBandPercent float64 // price distance from threshold that promotes a trigger to critical
}

// ThreatConfig tunes the threat detector (C6). The 60s grade-hysteresis
// window is fixed by spec, not configurable.
type ThreatConfig struct {
	EvaluationInterval time.Duration
	VelocityWindow     time.Duration
}

// FanoutConfig tunes the delivery fan-out and presentation queue (C7/C8).
type FanoutConfig struct {
	ToastVisibleDuration time.Duration
	CooldownDuration     time.Duration
	SessionSendTimeout   time.Duration
}

// TTSConfig tunes the TTS synthesis service (C9).
type TTSConfig struct {
	CacheDir           string
	CacheMaxEntries    int
	ProviderTimeout    time.Duration
	ProviderBackoff    time.Duration
	MaxUtteranceLength int
}

// Load reads configuration from environment variables.
//
// Loading order: .env file (if present), then process environment, each
// key falling back to a documented default when unset.
func Load(dataDirOverride ...string) (*Config, error) {
	_ = godotenv.Load()

	var dataDir string
	if len(dataDirOverride) > 0 && dataDirOverride[0] != "" {
		dataDir = dataDirOverride[0]
	} else {
		dataDir = getEnv("SIGNALHUB_DATA_DIR", "")
		if dataDir == "" {
			dataDir = "./data"
		}
	}

	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("SIGNALHUB_PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		DevMode:  getEnvAsBool("DEV_MODE", false),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		Market: MarketConfig{
			BaseURL:        getEnv("MARKET_BASE_URL", "https://api.exchange.example/v3"),
			RequestTimeout: getEnvAsDuration("MARKET_REQUEST_TIMEOUT", 5*time.Second),
			RetryAttempts:  getEnvAsInt("MARKET_RETRY_ATTEMPTS", 5),
			RetryBaseDelay: getEnvAsDuration("MARKET_RETRY_BASE_DELAY", time.Second),
			RetryMaxDelay:  getEnvAsDuration("MARKET_RETRY_MAX_DELAY", 30*time.Second),
		},
		Pollers: PollersConfig{
			SocialInterval:    getEnvAsDuration("POLLER_SOCIAL_INTERVAL", 300*time.Second),
			NewsInterval:      getEnvAsDuration("POLLER_NEWS_INTERVAL", 300*time.Second),
			TechnicalInterval: getEnvAsDuration("POLLER_TECHNICAL_INTERVAL", 60*time.Second),
			PriceInterval:     getEnvAsDuration("POLLER_PRICE_INTERVAL", 3*time.Second),
		},
		Store: StoreConfig{
			MaxNotifications: getEnvAsInt("STORE_MAX_NOTIFICATIONS", 5000),
			RetentionAge:     getEnvAsDuration("STORE_RETENTION_AGE", 7*24*time.Hour),
			SnapshotPath:     filepath.Join(absDataDir, "notifications.snapshot.json"),
		},
		Alerts: AlertsConfig{
			EvaluationInterval:   getEnvAsDuration("ALERTS_EVALUATION_INTERVAL", 30*time.Second),
			EmergencyBandPercent: getEnvAsFloat("ALERTS_EMERGENCY_BAND_PERCENT", 1.0),
		},
		Threat: ThreatConfig{
			EvaluationInterval: getEnvAsDuration("THREAT_EVALUATION_INTERVAL", 10*time.Second),
			VelocityWindow:     getEnvAsDuration("THREAT_VELOCITY_WINDOW", 5*time.Minute),
		},
		Fanout: FanoutConfig{
			ToastVisibleDuration: getEnvAsDuration("FANOUT_TOAST_DURATION", 5*time.Second),
			CooldownDuration:     getEnvAsDuration("FANOUT_COOLDOWN_DURATION", 2*time.Second),
			SessionSendTimeout:   getEnvAsDuration("FANOUT_SEND_TIMEOUT", 3*time.Second),
		},
		TTS: TTSConfig{
			CacheDir:           filepath.Join(absDataDir, "tts-cache"),
			CacheMaxEntries:    getEnvAsInt("TTS_CACHE_MAX_ENTRIES", 500),
			ProviderTimeout:    getEnvAsDuration("TTS_PROVIDER_TIMEOUT", 8*time.Second),
			ProviderBackoff:    getEnvAsDuration("TTS_PROVIDER_BACKOFF", time.Minute),
			MaxUtteranceLength: getEnvAsInt("TTS_MAX_UTTERANCE_LENGTH", 280),
		},
		APITimeout: getEnvAsDuration("API_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration is present and internally consistent.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Store.MaxNotifications <= 0 {
		return fmt.Errorf("STORE_MAX_NOTIFICATIONS must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
