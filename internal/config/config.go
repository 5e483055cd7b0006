package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend constants
const (
	BackendLocal  = "local"  // drive the SQLite reference backend in-process
	BackendRemote = "remote" // drive an order service over REST
)

// DirName is the per-workspace configuration directory.
const DirName = ".shopfloor"

const fileName = "config.yaml"

// Config represents the shopfloor configuration.
type Config struct {
	Backend        string        `yaml:"backend"`
	APIURL         string        `yaml:"api_url,omitempty"`
	APIToken       string        `yaml:"api_token,omitempty"`
	DBPath         string        `yaml:"db_path,omitempty"`
	OperatorID     string        `yaml:"operator_id,omitempty"`
	ListenAddr     string        `yaml:"listen_addr,omitempty"`
	LogLevel       string        `yaml:"log_level,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Backend:        BackendLocal,
		ListenAddr:     ":8080",
		LogLevel:       "info",
		RequestTimeout: 10 * time.Second,
	}
}

// Path returns the config file location for dir.
func Path(dir string) string {
	return filepath.Join(dir, DirName, fileName)
}

// LoadConfig reads .shopfloor/config.yaml from dir, falling back to defaults when
// the file does not exist, then applies SHOPFLOOR_* environment overrides.
func LoadConfig(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(Path(dir))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes config.yaml to dir.
func SaveConfig(dir string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Join(dir, DirName), 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", DirName, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may carry an API token.
	if err := os.WriteFile(Path(dir), data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate checks the backend selection and its required settings.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
	case BackendRemote:
		if c.APIURL == "" {
			return fmt.Errorf("api_url is required for the %s backend", BackendRemote)
		}
	default:
		return fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendLocal, BackendRemote)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative")
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SHOPFLOOR_BACKEND":     &c.Backend,
		"SHOPFLOOR_API_URL":     &c.APIURL,
		"SHOPFLOOR_API_TOKEN":   &c.APIToken,
		"SHOPFLOOR_DB_PATH":     &c.DBPath,
		"SHOPFLOOR_OPERATOR_ID": &c.OperatorID,
		"SHOPFLOOR_LISTEN_ADDR": &c.ListenAddr,
		"SHOPFLOOR_LOG_LEVEL":   &c.LogLevel,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("SHOPFLOOR_REQUEST_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SHOPFLOOR_REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}

	c.Backend = strings.ToLower(c.Backend)
	return nil
}
