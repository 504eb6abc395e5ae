// Package config holds the tgwctl configuration and its precedence
// rules: explicit flag > environment variable > config file > built-in
// default. Load applies the last three; flag overrides happen at the
// command layer, which mutates the loaded Config before use.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"tgwctl/internal/warehouse"
)

// Config holds all tgwctl configuration.
type Config struct {
	// Warehouse location
	Warehouse WarehouseConfig `yaml:"warehouse"`

	// Local checkouts the reconciler works against
	Repo RepoConfig `yaml:"repo"`

	// Server subprocess
	Launch LaunchConfig `yaml:"launch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// WarehouseConfig locates the shared model warehouse.
type WarehouseConfig struct {
	Root      string `yaml:"root"`
	ModelsDir string `yaml:"models_dir"` // empty means <root>/models/llm
}

// RepoConfig locates the text-generation-webui checkout and the
// operator playbook workspace.
type RepoConfig struct {
	Path         string `yaml:"path"`
	PlaybookPath string `yaml:"playbook_path"`
}

// LaunchConfig configures the server subprocess.
type LaunchConfig struct {
	Command       []string `yaml:"command"`
	APIBase       string   `yaml:"api_base"`
	API           bool     `yaml:"api"`
	Listen        bool     `yaml:"listen"`
	ListenPort    int      `yaml:"listen_port"`
	NoWebUI       bool     `yaml:"nowebui"`
	ReadyAttempts int      `yaml:"ready_attempts"`
	ReadyInterval string   `yaml:"ready_interval"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration for the detected host.
func DefaultConfig() *Config {
	root := warehouse.DefaultRoot(warehouse.DetectHost())
	return &Config{
		Warehouse: WarehouseConfig{
			Root: root,
		},

		Repo: RepoConfig{
			PlaybookPath: filepath.Join(root, "playbook"),
		},

		Launch: LaunchConfig{
			Command:       []string{"python3", "server.py"},
			APIBase:       "http://127.0.0.1:5000",
			API:           true,
			ListenPort:    7860,
			ReadyAttempts: 30,
			ReadyInterval: "2s",
		},

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tgwctl.yaml"
	}
	return filepath.Join(home, ".config", "tgwctl", "config.yaml")
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults plus env overrides when there is no file yet.
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if root := os.Getenv(warehouse.EnvWarehouse); root != "" {
		c.Warehouse.Root = root
	}
	if dir := os.Getenv(warehouse.EnvModelsDir); dir != "" {
		c.Warehouse.ModelsDir = dir
	}
	if repo := os.Getenv(warehouse.EnvRepo); repo != "" {
		c.Repo.Path = repo
	}
	if pb := os.Getenv(warehouse.EnvPlaybook); pb != "" {
		c.Repo.PlaybookPath = pb
	}
}

// Layout resolves the warehouse layout for the given host, honoring the
// models_dir override. All downstream path decisions go through here so
// there is exactly one authority for where things live.
func (c *Config) Layout(host warehouse.HostKind) (warehouse.Layout, error) {
	l, err := warehouse.Resolve(c.Warehouse.Root, host)
	if err != nil {
		return warehouse.Layout{}, err
	}
	if c.Warehouse.ModelsDir != "" {
		dir, err := warehouse.ToNative(c.Warehouse.ModelsDir, host)
		if err != nil {
			return warehouse.Layout{}, fmt.Errorf("models_dir: %w", err)
		}
		l.ModelsDir = dir
	}
	return l, nil
}

// GetReadyInterval returns the readiness poll interval as a duration.
func (c *Config) GetReadyInterval() time.Duration {
	d, err := time.ParseDuration(c.Launch.ReadyInterval)
	if err != nil {
		return 2 * time.Second
	}
	return d
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Warehouse.Root == "" {
		return fmt.Errorf("warehouse root not configured (set %s or warehouse.root)", warehouse.EnvWarehouse)
	}

	if len(c.Launch.Command) == 0 {
		return fmt.Errorf("launch command is empty")
	}

	if c.Launch.ReadyAttempts < 1 {
		return fmt.Errorf("launch.ready_attempts must be at least 1, got %d", c.Launch.ReadyAttempts)
	}

	if _, err := time.ParseDuration(c.Launch.ReadyInterval); err != nil {
		return fmt.Errorf("invalid launch.ready_interval %q: %w", c.Launch.ReadyInterval, err)
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid logging level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	return nil
}
