package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every runtime setting for the companion engine.
type Config struct {
	Server  ServerConfig
	Remote  RemoteConfig
	Store   StoreConfig
	Session SessionConfig
	Sync    SyncConfig
}

// ServerConfig describes the local HTTP surface for the UI layer.
type ServerConfig struct {
	Addr string
}

// RemoteConfig describes the remote crisis service.
type RemoteConfig struct {
	BaseURL             string
	RequestTimeout      time.Duration
	HealthCheckTimeout  time.Duration
	HealthCheckInterval time.Duration
	ContextLimit        int
}

// StoreConfig describes the local persistence gateway.
type StoreConfig struct {
	Path string
}

// SessionConfig tunes snapshot persistence.
type SessionConfig struct {
	SnapshotKeep    int
	SnapshotMaxAge  time.Duration
	DefaultLanguage string
}

// SyncConfig tunes the pending-action drain loop.
type SyncConfig struct {
	Interval time.Duration
	RetryCap int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	remote, err := loadRemoteConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	syncCfg, err := loadSyncConfig()
	if err != nil {
		return nil, err
	}

	storePath := getEnvOrDefault("STORE_PATH", defaultStorePath())

	return &Config{
		Server:  server,
		Remote:  remote,
		Store:   StoreConfig{Path: storePath},
		Session: session,
		Sync:    syncCfg,
	}, nil
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

func loadRemoteConfig() (RemoteConfig, error) {
	requestTimeout, err := parseDurationEnv("CRISIS_API_TIMEOUT", 30*time.Second)
	if err != nil {
		return RemoteConfig{}, err
	}

	healthTimeout, err := parseDurationEnv("HEALTH_CHECK_TIMEOUT", 5*time.Second)
	if err != nil {
		return RemoteConfig{}, err
	}

	healthInterval, err := parseDurationEnv("HEALTH_CHECK_INTERVAL", time.Minute)
	if err != nil {
		return RemoteConfig{}, err
	}

	contextLimit, err := parseIntEnv("CONTEXT_LIMIT", 10)
	if err != nil {
		return RemoteConfig{}, err
	}

	return RemoteConfig{
		BaseURL:             getEnvOrDefault("CRISIS_API_BASE_URL", "https://boweryconnect-api.onrender.com/api"),
		RequestTimeout:      requestTimeout,
		HealthCheckTimeout:  healthTimeout,
		HealthCheckInterval: healthInterval,
		ContextLimit:        contextLimit,
	}, nil
}

// HealthURL is the liveness endpoint probed by the connectivity monitor.
// It lives beside the API root, not under it.
func (c RemoteConfig) HealthURL() string {
	base := strings.TrimSuffix(c.BaseURL, "/")
	base = strings.TrimSuffix(base, "/api")
	return base + "/health"
}

func loadSessionConfig() (SessionConfig, error) {
	keep, err := parseIntEnv("SNAPSHOT_KEEP", 20)
	if err != nil {
		return SessionConfig{}, err
	}

	maxAge, err := parseDurationEnv("SNAPSHOT_MAX_AGE", time.Hour)
	if err != nil {
		return SessionConfig{}, err
	}

	return SessionConfig{
		SnapshotKeep:    keep,
		SnapshotMaxAge:  maxAge,
		DefaultLanguage: getEnvOrDefault("DEFAULT_LANGUAGE", "en"),
	}, nil
}

func loadSyncConfig() (SyncConfig, error) {
	interval, err := parseDurationEnv("SYNC_INTERVAL", 5*time.Minute)
	if err != nil {
		return SyncConfig{}, err
	}

	retryCap, err := parseIntEnv("SYNC_RETRY_CAP", 5)
	if err != nil {
		return SyncConfig{}, err
	}

	return SyncConfig{Interval: interval, RetryCap: retryCap}, nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./companion-data"
	}
	return home + "/.boweryconnect/companion"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

// parseDurationEnv accepts Go duration strings ("30s") and falls back to
// interpreting bare numbers as seconds, which is what the mobile config
// historically used.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return 0, fmt.Errorf("invalid %s value %q", key, raw)
}
