package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/queriumcorp/rover-gradesync/internal/gradesync"
	"github.com/queriumcorp/rover-gradesync/internal/logger"
	"github.com/queriumcorp/rover-gradesync/internal/utils"
)

type Config struct {
	HTTPAddr     string
	JWTSecretKey string
	Environment  string
	Version      string

	// BrokerDomains nil means the built-in Willo Labs set.
	BrokerDomains []string
	Retry         gradesync.RetryConfig

	SyncInterval      time.Duration
	WorkerConcurrency int
	WorkerEnabled     bool
}

// fileOverlay is the optional YAML config named by GRADESYNC_CONFIG_FILE.
// Only the broker domain set and the retry policy live there; everything
// else is environment-driven.
type fileOverlay struct {
	BrokerDomains []string `yaml:"broker_domains"`
	Retry         struct {
		MaxAttempts   int     `yaml:"max_attempts"`
		BackoffBaseMS int     `yaml:"backoff_base_ms"`
		Factor        float64 `yaml:"factor"`
		Jitter        float64 `yaml:"jitter"`
	} `yaml:"retry"`
}

func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := Config{
		HTTPAddr:          utils.GetEnv("GRADESYNC_HTTP_ADDR", ":8080", log),
		JWTSecretKey:      utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		Environment:       utils.GetEnv("ENVIRONMENT", "development", log),
		Version:           utils.GetEnv("SERVICE_VERSION", "", log),
		Retry:             gradesync.DefaultRetryConfig(),
		SyncInterval:      time.Duration(utils.GetEnvAsInt("SYNC_INTERVAL", 300, log)) * time.Second,
		WorkerConcurrency: utils.GetEnvAsInt("WORKER_CONCURRENCY", 4, log),
		WorkerEnabled:     utils.GetEnvAsBool("SYNC_WORKER_ENABLED", true, log),
	}

	path := utils.GetEnv("GRADESYNC_CONFIG_FILE", "", log)
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file %s: %w", path, err)
	}
	var overlay fileOverlay
	if err := yaml.Unmarshal(raw, &overlay); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if len(overlay.BrokerDomains) > 0 {
		cfg.BrokerDomains = overlay.BrokerDomains
	}
	if overlay.Retry.MaxAttempts > 0 {
		cfg.Retry.MaxAttempts = overlay.Retry.MaxAttempts
	}
	if overlay.Retry.BackoffBaseMS > 0 {
		cfg.Retry.BackoffBase = time.Duration(overlay.Retry.BackoffBaseMS) * time.Millisecond
	}
	if overlay.Retry.Factor > 0 {
		cfg.Retry.Factor = overlay.Retry.Factor
	}
	if overlay.Retry.Jitter > 0 {
		cfg.Retry.Jitter = overlay.Retry.Jitter
	}
	log.Info("Loaded config overlay", "path", path, "broker_domains", cfg.BrokerDomains)
	return cfg, nil
}
