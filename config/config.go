// Package config loads the server configuration from defaults, an optional
// JSON or YAML file and the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// EnvPort selects the listen port.
	EnvPort = "PORT"
	// EnvConfigFile points at a configuration file when no path is given.
	EnvConfigFile = "MDDOCS_CONFIG_FILE"

	DefaultPort = "3000"
)

type Config struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr" yaml:"addr"`
	// ContentDir holds the markdown documents.
	ContentDir string `json:"contentDir" yaml:"contentDir"`
	// StaticDir serves requests for paths with a file extension. Defaults to ContentDir.
	StaticDir string `json:"staticDir,omitempty" yaml:"staticDir,omitempty"`

	Server struct {
		ReadTimeout     Duration `json:"readTimeout" yaml:"readTimeout"`
		WriteTimeout    Duration `json:"writeTimeout" yaml:"writeTimeout"`
		ShutdownTimeout Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
	} `json:"server" yaml:"server"`

	MCP struct {
		Enabled  bool   `json:"enabled" yaml:"enabled"`
		Endpoint string `json:"endpoint" yaml:"endpoint"`
	} `json:"mcp" yaml:"mcp"`

	Import struct {
		// Enabled allows creating documents from a remote page URL.
		Enabled bool     `json:"enabled" yaml:"enabled"`
		Timeout Duration `json:"timeout" yaml:"timeout"`
	} `json:"import" yaml:"import"`

	Events struct {
		KeepaliveInterval Duration `json:"keepaliveInterval" yaml:"keepaliveInterval"`
		BufferSize        int      `json:"bufferSize" yaml:"bufferSize"`
	} `json:"events" yaml:"events"`

	Log struct {
		Level       string `json:"level" yaml:"level"`
		Development bool   `json:"development" yaml:"development"`
	} `json:"log" yaml:"log"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	c := &Config{
		Addr:       ":" + DefaultPort,
		ContentDir: "public",
	}
	c.Server.ReadTimeout = Duration(15 * time.Second)
	c.Server.WriteTimeout = Duration(30 * time.Second)
	c.Server.ShutdownTimeout = Duration(10 * time.Second)
	c.MCP.Endpoint = "/mcp"
	c.Import.Timeout = Duration(20 * time.Second)
	c.Events.KeepaliveInterval = Duration(30 * time.Second)
	c.Events.BufferSize = 100
	c.Log.Level = "info"
	return c
}

// Load applies defaults, then the file at path (or $MDDOCS_CONFIG_FILE when
// path is empty), then $PORT.
func Load(path string) (*Config, error) {
	c := Default()

	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := unmarshal(data, c, path); err != nil {
			return nil, err
		}
	}

	if port := os.Getenv(EnvPort); port != "" {
		c.Addr = ":" + port
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func unmarshal(data []byte, c *Config, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse YAML config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, c); err != nil {
			return fmt.Errorf("failed to parse JSON config file: %w", err)
		}
	}
	return nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.ContentDir == "" {
		errs = append(errs, errors.New("contentDir must not be empty"))
	}
	if c.MCP.Enabled && !strings.HasPrefix(c.MCP.Endpoint, "/") {
		errs = append(errs, fmt.Errorf("mcp.endpoint %q must start with /", c.MCP.Endpoint))
	}
	if c.Events.BufferSize < 1 {
		errs = append(errs, errors.New("events.bufferSize must be positive"))
	}
	if c.Events.KeepaliveInterval <= 0 {
		errs = append(errs, errors.New("events.keepaliveInterval must be positive"))
	}
	return errors.Join(errs...)
}

// StaticRoot returns the directory for static assets.
func (c *Config) StaticRoot() string {
	if c.StaticDir != "" {
		return c.StaticDir
	}
	return c.ContentDir
}

// Duration is a time.Duration read from strings like "15s".
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}
