package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultAllocatorURL is where the allocation service listens out of the box.
const DefaultAllocatorURL = "http://127.0.0.1:5000/allocate"

// Config holds all client settings, populated from environment variables.
type Config struct {
	AllocatorURL     string
	AllocatorTimeout time.Duration // 0 disables the client-side timeout
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration
	DefaultSupplies  float64

	// Outcome publishing is enabled when brokers are configured.
	KafkaBrokers      []string
	KafkaOutcomeTopic string
	PublishEnabled    bool
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	allocatorTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("ALLOCATOR_TIMEOUT", "0s"))
	if err != nil || allocatorTimeout < 0 {
		return nil, errors.New("invalid ALLOCATOR_TIMEOUT")
	}

	defaultSupplies, err := parseDefaultSupplies()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		AllocatorURL:      sharedcfg.EnvOrDefault("ALLOCATOR_URL", DefaultAllocatorURL),
		AllocatorTimeout:  allocatorTimeout,
		HTTPAddr:          sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:   shutdownTimeout,
		DefaultSupplies:   defaultSupplies,
		KafkaBrokers:      brokers,
		KafkaOutcomeTopic: sharedcfg.EnvOrDefault("KAFKA_OUTCOME_TOPIC", "allocation-outcomes"),
		PublishEnabled:    len(brokers) > 0,
	}

	if err := ValidateAllocatorURL(cfg.AllocatorURL); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, errors.New("LOG_FORMAT must be json or text")
	}
	if cfg.PublishEnabled && cfg.KafkaOutcomeTopic == "" {
		return nil, errors.New("KAFKA_OUTCOME_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// ValidateAllocatorURL checks that raw is an absolute http(s) URL.
func ValidateAllocatorURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("invalid ALLOCATOR_URL %q: must be an absolute http(s) URL", raw)
	}
	return nil
}

func parseDefaultSupplies() (float64, error) {
	s := os.Getenv("DEFAULT_SUPPLIES")
	if s == "" {
		return 50, nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.New("invalid DEFAULT_SUPPLIES")
	}
	return n, nil
}
