package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/enginepoll/internal/errors"
	"github.com/vango-dev/enginepoll/pkg/server"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "enginepoll.json"

	// DefaultAddress is the default listen address.
	DefaultAddress = ":8080"

	// DefaultPath is the default engine endpoint path.
	DefaultPath = "/engine.io/"

	// DefaultMetricsPath is the default Prometheus scrape path.
	DefaultMetricsPath = "/metrics"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "enginepoll"
)

// Config represents the enginepoll.json configuration.
type Config struct {
	// Address is the HTTP listen address (e.g., ":8080").
	Address string `json:"address,omitempty"`

	// Path is the URL path of the engine endpoint.
	Path string `json:"path,omitempty"`

	// PingInterval is the v4 heartbeat interval (e.g., "25s").
	PingInterval string `json:"pingInterval,omitempty"`

	// PingTimeout is advertised to clients in the handshake (e.g., "20s").
	PingTimeout string `json:"pingTimeout,omitempty"`

	// PollTimeout is how long an idle poll is held before a noop (e.g., "30s").
	PollTimeout string `json:"pollTimeout,omitempty"`

	// MaxPayload is the maximum payload size advertised to clients.
	MaxPayload int64 `json:"maxPayload,omitempty"`

	// MaxSessions caps concurrent sessions. 0 means no limit.
	MaxSessions int `json:"maxSessions,omitempty"`

	// Upgrades lists the transports offered in the handshake.
	Upgrades []string `json:"upgrades,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled mounts the scrape endpoint and records server metrics.
	Enabled bool `json:"enabled"`

	// Namespace is the metric name prefix.
	Namespace string `json:"namespace,omitempty"`

	// Path is the URL path of the scrape endpoint.
	Path string `json:"path,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	defaults := server.DefaultConfig()
	return &Config{
		Address:      DefaultAddress,
		Path:         DefaultPath,
		PingInterval: defaults.PingInterval.String(),
		PingTimeout:  defaults.PingTimeout.String(),
		PollTimeout:  defaults.PollTimeout.String(),
		MaxPayload:   defaults.MaxPayload,
		Upgrades:     defaults.Upgrades,
		LogLevel:     "info",
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultMetricsNamespace,
			Path:      DefaultMetricsPath,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for enginepoll.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
// Fields missing from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ConfigNotFound).
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path)).
				WithSuggestion("Create the file or run without --config to use defaults")
		}
		return nil, errors.New(errors.ConfigInvalidJSON).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.ConfigInvalidJSON).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New(errors.ConfigInvalidJSON).Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Newf(errors.CategoryConfig, "write %s", path).Wrap(err)
	}

	c.configPath = path
	return nil
}

// File returns the path where the config was loaded from.
func (c *Config) File() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	defaults := New()

	if c.Address == "" {
		c.Address = defaults.Address
	}
	if c.Path == "" {
		c.Path = defaults.Path
	}
	if !strings.HasPrefix(c.Path, "/") {
		c.Path = "/" + c.Path
	}
	if c.PingInterval == "" {
		c.PingInterval = defaults.PingInterval
	}
	if c.PingTimeout == "" {
		c.PingTimeout = defaults.PingTimeout
	}
	if c.PollTimeout == "" {
		c.PollTimeout = defaults.PollTimeout
	}
	if c.MaxPayload == 0 {
		c.MaxPayload = defaults.MaxPayload
	}
	if c.Upgrades == nil {
		c.Upgrades = defaults.Upgrades
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}

	// Metrics
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = defaults.Metrics.Namespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = defaults.Metrics.Path
	}
}

// timeouts holds the parsed duration fields.
type timeouts struct {
	pingInterval time.Duration
	pingTimeout  time.Duration
	pollTimeout  time.Duration
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	_, err := c.validate()
	return err
}

// validate checks the configuration and returns the parsed durations.
func (c *Config) validate() (timeouts, error) {
	var (
		t   timeouts
		err error
	)
	if t.pingInterval, err = parseDuration("pingInterval", c.PingInterval); err != nil {
		return t, err
	}
	if t.pingTimeout, err = parseDuration("pingTimeout", c.PingTimeout); err != nil {
		return t, err
	}
	if t.pollTimeout, err = parseDuration("pollTimeout", c.PollTimeout); err != nil {
		return t, err
	}

	if c.MaxPayload < 0 {
		return t, errors.New(errors.ConfigInvalidValue).
			WithField("maxPayload").
			WithSuggestion("Use a positive byte count, for example 1000000")
	}
	if c.MaxSessions < 0 {
		return t, errors.New(errors.ConfigInvalidValue).
			WithField("maxSessions").
			WithSuggestion("Use 0 for no limit")
	}
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return t, errors.New(errors.ConfigInvalidValue).
			WithField("logLevel").
			WithSuggestion("Use one of debug, info, warn, error")
	}
	if c.Metrics.Enabled && c.Metrics.Path == c.Path {
		return t, errors.New(errors.ConfigInvalidValue).
			WithField("metrics.path").
			WithDetail("The metrics path collides with the engine endpoint path.")
	}
	return t, nil
}

// ServerConfig converts the file configuration into a server.Config.
func (c *Config) ServerConfig() (*server.Config, error) {
	t, err := c.validate()
	if err != nil {
		return nil, err
	}

	sc := server.DefaultConfig()
	sc.PingInterval = t.pingInterval
	sc.PingTimeout = t.pingTimeout
	sc.PollTimeout = t.pollTimeout
	sc.MaxPayload = c.MaxPayload
	sc.MaxSessions = c.MaxSessions
	sc.Upgrades = append([]string(nil), c.Upgrades...)
	return sc, nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the configured log level. Unknown values log at info.
func (c *Config) SlogLevel() slog.Level {
	if level, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		return level
	}
	return slog.LevelInfo
}

func parseDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errors.New(errors.ConfigBadDuration).
			WithField(field).
			WithSuggestion(`Use a value like "30s"`).
			WithExample(fmt.Sprintf(`"%s": "30s"`, field)).
			Wrap(err)
	}
	if d < 0 {
		return 0, errors.New(errors.ConfigBadDuration).
			WithField(field).
			WithDetail("Durations must not be negative.")
	}
	return d, nil
}

// Exists checks if an enginepoll.json file exists in the directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
