package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds server configuration.
type Config struct {
	ListenAddr   string `yaml:"listen_addr"`    // TCP bind address (e.g. ":4444")
	WSAddr       string `yaml:"ws_addr"`        // WebSocket bind address (empty = disabled)
	WSPath       string `yaml:"ws_path"`        // WebSocket upgrade path
	MetricsAddr  string `yaml:"metrics_addr"`   // HTTP bind address for /metrics (empty = disabled)
	EventLogPath string `yaml:"event_log_path"` // SQLite admin feed path (empty = in-memory)

	RegisterTimeout  time.Duration `yaml:"register_timeout"`   // bound on the name line read
	WriteQueueDepth  int           `yaml:"write_queue_depth"`  // per-session outbound frame queue
	MaxMessageLength int           `yaml:"max_message_length"` // cap on a single message body
}

// DefaultConfig returns a config with sensible defaults. Port 4444 is the
// port the original desktop clients dial.
func DefaultConfig() Config {
	return Config{
		ListenAddr:       ":4444",
		WSPath:           "/chat",
		MetricsAddr:      ":4446",
		RegisterTimeout:  10 * time.Second,
		WriteQueueDepth:  64,
		MaxMessageLength: 512,
	}
}

// LoadConfig reads a YAML config file over the defaults, so a partial file
// only overrides what it names.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path) //nolint:gosec // path from user-provided CLI config
	if err != nil {
		return cfg, fmt.Errorf("server: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("server: parse config: %w", err)
	}
	return cfg.sanitized(), nil
}

func (c Config) sanitized() Config {
	if c.ListenAddr == "" {
		c.ListenAddr = ":4444"
	}
	if c.WSPath == "" {
		c.WSPath = "/chat"
	}
	if c.RegisterTimeout <= 0 {
		c.RegisterTimeout = 10 * time.Second
	}
	if c.WriteQueueDepth <= 0 {
		c.WriteQueueDepth = 64
	}
	if c.MaxMessageLength <= 0 {
		c.MaxMessageLength = 512
	}
	return c
}
