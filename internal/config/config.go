package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/dokzlo13/espresso-hue/internal/color"
)

// Config represents the application configuration
type Config struct {
	Server          ServerConfig   `yaml:"server"`
	Database        DatabaseConfig `yaml:"database"`
	Vault           VaultConfig    `yaml:"vault"`
	Hue             HueConfig      `yaml:"hue"`
	Log             LogConfig      `yaml:"log"`
	Ledger          LedgerConfig   `yaml:"ledger"`
	EventBus        EventBusConfig `yaml:"eventbus"`
	Automations     []Automation   `yaml:"automations"`
	ShutdownTimeout Duration       `yaml:"shutdown_timeout"` // General shutdown timeout for graceful stops
}

// ServerConfig contains the HTTP server settings
type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	PluginDir   string `yaml:"plugin_dir"`   // Directory holding <plugin>/public assets
	HooksPrefix string `yaml:"hooks_prefix"` // Path prefix webhook triggers are received under
}

// Addr returns the listen address
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// VaultConfig contains token vault settings
type VaultConfig struct {
	KeyPath string `yaml:"key_path"` // 32-byte AES key, created on first start
}

// HueConfig contains Hue bridge settings
type HueConfig struct {
	DiscoveryURL string   `yaml:"discovery_url"`
	DeviceType   string   `yaml:"device_type"`    // Sent to the bridge when pairing
	Timeout      Duration `yaml:"timeout"`        // 0 falls back to the default, negative disables
	RateLimitRPS float64  `yaml:"rate_limit_rps"` // Negative disables rate limiting
	Gamut        string   `yaml:"gamut"`          // A, B or C; empty disables clamping
}

// RequestTimeout is the per-request bridge timeout, zero meaning none.
func (h HueConfig) RequestTimeout() time.Duration {
	if h.Timeout < 0 {
		return 0
	}
	return h.Timeout.Duration()
}

// LogConfig contains logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	UseJSON bool   `yaml:"json"`
	Colors  bool   `yaml:"colors"`
}

// LedgerConfig contains action ledger settings
type LedgerConfig struct {
	CleanupInterval Duration `yaml:"cleanup_interval"`
	RetentionDays   int      `yaml:"retention_days"`
}

// Retention returns the retention period
func (c LedgerConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// EventBusConfig contains event bus settings
type EventBusConfig struct {
	Workers   int `yaml:"workers"`    // Number of worker goroutines
	QueueSize int `yaml:"queue_size"` // Event queue size
}

// Automation runs an action when a webhook request matches.
type Automation struct {
	Name     string         `yaml:"name"`
	Method   string         `yaml:"method"` // "POST", "GET|POST" or "*"
	Path     string         `yaml:"path"`   // Supports {param} segments
	Action   string         `yaml:"action"`
	Settings map[string]any `yaml:"settings"`
	Debounce Duration       `yaml:"debounce"` // Run once per burst of requests
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used for every unset field
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			PluginDir:   "./plugins",
			HooksPrefix: "/hooks",
		},
		Database: DatabaseConfig{Path: "./espresso-hue.sqlite"},
		Vault:    VaultConfig{KeyPath: "./espresso-hue.key"},
		Hue: HueConfig{
			DiscoveryURL: "https://discovery.meethue.com/",
			DeviceType:   "espresso-hue",
			Timeout:      Duration(30 * time.Second),
			RateLimitRPS: 10.0,
		},
		Log: LogConfig{Level: "info"},
		Ledger: LedgerConfig{
			CleanupInterval: Duration(24 * time.Hour),
			RetentionDays:   30,
		},
		EventBus: EventBusConfig{
			Workers:   4,
			QueueSize: 100,
		},
		ShutdownTimeout: Duration(5 * time.Second),
	}
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses a YAML document, expands environment variables and fills defaults
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	if err := mergo.Merge(&cfg, Default()); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	for i := range cfg.Automations {
		if cfg.Automations[i].Method == "" {
			cfg.Automations[i].Method = "POST"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.HooksPrefix, "/") {
		return fmt.Errorf("server.hooks_prefix must start with /")
	}
	if _, err := color.ParseGamut(c.Hue.Gamut); err != nil {
		return fmt.Errorf("hue.gamut: %w", err)
	}
	for i, a := range c.Automations {
		if a.Path == "" {
			return fmt.Errorf("automations[%d]: path is required", i)
		}
		if a.Action == "" {
			return fmt.Errorf("automations[%d]: action is required", i)
		}
	}
	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	// Match ${VAR} or ${VAR:default}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
