// Package config loads the agentgate daemon configuration from a YAML file.
// Every field has a working default so a zero-config local start is possible.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type (
	// Config is the daemon configuration.
	Config struct {
		// HTTP configures the websocket and status listener.
		HTTP HTTP `yaml:"http"`
		// Redis configures the connection backing Pulse streams and the
		// durable tracker.
		Redis Redis `yaml:"redis"`
		// Stream configures Pulse stream publication.
		Stream Stream `yaml:"stream"`
	}

	// HTTP configures the HTTP listener.
	HTTP struct {
		// Addr is the listen address.
		Addr string `yaml:"addr"`
	}

	// Redis configures the Redis connection.
	Redis struct {
		// Addr is the host:port of the Redis server. Empty disables Redis:
		// the daemon falls back to in-memory tracking and websocket-only
		// delivery.
		Addr string `yaml:"addr"`
		// Password authenticates the connection. Optional.
		Password string `yaml:"password"`
		// DB selects the Redis logical database.
		DB int `yaml:"db"`
	}

	// Stream configures Pulse stream publication.
	Stream struct {
		// MaxLen bounds the number of entries kept per channel stream.
		MaxLen int `yaml:"max_len"`
		// OperationTimeout bounds individual publish operations.
		OperationTimeout Duration `yaml:"operation_timeout"`
		// TrackerTTL bounds how long a tracker entry may outlive its last
		// write when Redis-backed. Zero keeps entries until cleared.
		TrackerTTL Duration `yaml:"tracker_ttl"`
	}

	// Duration decodes YAML duration strings such as "5s" or "2m".
	Duration time.Duration
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		HTTP:   HTTP{Addr: ":8080"},
		Stream: Stream{MaxLen: 1000, OperationTimeout: Duration(5 * time.Second)},
	}
}

// Load reads path and overlays it on the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = Default().HTTP.Addr
	}
	return cfg, nil
}
