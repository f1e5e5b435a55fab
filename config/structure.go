package config

import (
	"time"
)

// Config is the process-wide configuration, loaded once at startup. Values
// read here are frozen for the process lifetime; in particular the
// diagnostics sink choice derived from it is never re-evaluated.
type Config struct {
	App         AppConfig         `koanf:"app"`
	Room        RoomConfig        `koanf:"room"`
	Diagnostics DiagnosticsConfig `koanf:"diagnostics"`
	Agent       AgentConfig       `koanf:"agent"`
	Token       TokenConfig       `koanf:"token"`
	Server      ServerConfig      `koanf:"server"`
	Log         LogConfig         `koanf:"log"`
}

type AppConfig struct {
	Name   string `koanf:"name" validate:"required"`
	Env    string `koanf:"env" validate:"oneof=development staging production"`
	Region string `koanf:"region"`
}

// RoomConfig controls how room names are generated when a caller does not
// supply one.
type RoomConfig struct {
	Prefix  string `koanf:"prefix" validate:"required"`
	Default string `koanf:"default"`
}

// DiagnosticsConfig selects and tunes the log sink. At most one durable
// backend applies: a store path wins over a collector URL, and with neither
// set diagnostics go to the console only.
type DiagnosticsConfig struct {
	Collector CollectorConfig `koanf:"collector"`
	Store     StoreConfig     `koanf:"store"`
}

// CollectorConfig points at the remote log collector. An empty URL disables
// that sink for the remainder of the process lifetime; it is not an error.
type CollectorConfig struct {
	URL string `koanf:"url" validate:"omitempty,url"`
}

// StoreConfig points at the persistent local store.
type StoreConfig struct {
	Path string `koanf:"path"`
	// Cap bounds retained entries; zero selects the store default.
	Cap int `koanf:"cap" validate:"gte=0"`
}

// AgentConfig points at the agent session API.
type AgentConfig struct {
	URL     string        `koanf:"url" validate:"omitempty,url"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`
}

// TokenConfig carries the credentials and shape of issued room grants.
// Missing credentials disable issuance (surfaced per request as a server
// error), never a startup crash.
type TokenConfig struct {
	APIKey    string        `koanf:"apikey"`
	APISecret string        `koanf:"apisecret"`
	URL       string        `koanf:"url" validate:"omitempty,url"`
	TTL       time.Duration `koanf:"ttl" validate:"gt=0"`
}

type ServerConfig struct {
	Host string     `koanf:"host" validate:"required"`
	Port int        `koanf:"port" validate:"gt=0,lte=65535"`
	Rate RateConfig `koanf:"rate"`
}

// RateConfig limits token endpoint requests per client IP. A zero limit
// disables rate limiting.
type RateConfig struct {
	Limit int `koanf:"limit" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"required"`
	Pretty bool   `koanf:"pretty"`
}
