// Package config loads and validates the voicekit configuration from
// layered sources: built-in defaults, an optional YAML file, and the
// environment.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces the environment variables consumed here, e.g.
// VOICEKIT_DIAGNOSTICS_COLLECTOR_URL maps to diagnostics.collector.url.
const EnvPrefix = "VOICEKIT_"

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Load loads configuration with priority:
// 1. Environment variables (highest priority)
// 2. YAML configuration file (config.yaml, optional)
// 3. Default values (lowest priority)
func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

// LoadFile is Load with an explicit YAML path. The file is optional; a
// missing file falls through to defaults and environment values.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// The YAML file is optional; defaults plus environment still
			// produce a complete configuration.
			fmt.Printf("Warning: could not load %s: %v\n", path, err)
		}
	}

	if err := k.Load(envprovider.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":   "voicekit-client",
		"app.env":    EnvDevelopment,
		"app.region": "",

		"room.prefix":  "voice-assistant-room",
		"room.default": "",

		// No collector URL and no store path by default: diagnostics go to
		// the console until a backend is configured explicitly.
		"diagnostics.collector.url": "",
		"diagnostics.store.path":    "",
		"diagnostics.store.cap":     0,

		"agent.url":     "",
		"agent.timeout": "30s",

		"token.apikey":    "",
		"token.apisecret": "",
		"token.url":       "",
		"token.ttl":       "15m",

		"server.host":       "0.0.0.0",
		"server.port":       8080,
		"server.rate.limit": 100,

		"log.level":  "info",
		"log.pretty": false,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}
