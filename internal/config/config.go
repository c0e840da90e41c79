package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all controller settings, populated from environment variables.
type Config struct {
	BackendURL      string
	BackendTimeout  time.Duration
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Baseline datasets are cached per date across sessions.
	BaselineCacheSize int

	// Simulation record publishing (optional).
	KafkaBrokers         []string
	KafkaSimulationTopic string
	PublishEnabled       bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	backendTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("BACKEND_TIMEOUT", "30s"))
	if err != nil || backendTimeout <= 0 {
		return nil, errors.New("invalid BACKEND_TIMEOUT")
	}

	backendURL := sharedcfg.EnvOrDefault("BACKEND_URL", "http://localhost:8000")
	if u, err := url.Parse(backendURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("invalid BACKEND_URL")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	publishEnabled := len(brokers) > 0
	if v := os.Getenv("PUBLISH_ENABLED"); v != "" {
		publishEnabled = v == "true"
	}

	cfg := &Config{
		BackendURL:      backendURL,
		BackendTimeout:  backendTimeout,
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":9090"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "text"),
		ShutdownTimeout: shutdownTimeout,

		BaselineCacheSize: parseBaselineCacheSize(),

		KafkaBrokers:         brokers,
		KafkaSimulationTopic: sharedcfg.EnvOrDefault("KAFKA_SIMULATION_TOPIC", "traffic-simulations"),
		PublishEnabled:       publishEnabled,
	}

	if cfg.PublishEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("PUBLISH_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.PublishEnabled && cfg.KafkaSimulationTopic == "" {
		return nil, errors.New("KAFKA_SIMULATION_TOPIC is required")
	}

	return cfg, nil
}

// parseBaselineCacheSize returns the configured size; 0 disables the cache.
func parseBaselineCacheSize() int {
	if s := os.Getenv("BASELINE_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return 16
}
