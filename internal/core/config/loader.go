package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if necessary
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8100
	}
	if cfg.Server.HealthPort == 0 {
		cfg.Server.HealthPort = 9090
	}
	if cfg.Node.Endpoint == "" {
		cfg.Node.Endpoint = "http://localhost:20000"
	}
	if cfg.Node.DialTimeout == 0 {
		cfg.Node.DialTimeout = 10 * time.Second
	}
	if cfg.Node.CallTimeout == 0 {
		cfg.Node.CallTimeout = 15 * time.Second
	}
	if cfg.Verifier.ChallengeTTL == 0 {
		cfg.Verifier.ChallengeTTL = 5 * time.Minute
	}
	if cfg.Verifier.SessionTTL == 0 {
		cfg.Verifier.SessionTTL = time.Hour
	}
	if cfg.Sponsor.DailyLimit == 0 {
		cfg.Sponsor.DailyLimit = 30
	}
	if cfg.Indexer.ScanInterval == 0 {
		cfg.Indexer.ScanInterval = 10 * time.Second
	}

	return &cfg, nil
}
