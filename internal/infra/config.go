package infra

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application settings. Sensitive values can be
// overridden through environment variables after the file is loaded.
type Config struct {
	App struct {
		Name string `yaml:"name"`
	} `yaml:"app"`

	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Auth struct {
		JWTSecret   string `yaml:"jwt_secret"`
		TokenTTLMin int    `yaml:"token_ttl_min"`
	} `yaml:"auth"`

	Settlement struct {
		// Currency is the funding-currency symbol that BUY orders
		// reserve and SELL orders earn, e.g. "TRY".
		Currency string `yaml:"currency"`
	} `yaml:"settlement"`

	Seed struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"seed"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file, applies
// environment overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt_secret is required (file or BROKERAGE_JWT_SECRET)")
	}
	if c.Auth.TokenTTLMin <= 0 {
		return fmt.Errorf("auth token_ttl_min must be positive")
	}
	if c.Settlement.Currency == "" {
		return fmt.Errorf("settlement currency is required")
	}
	return nil
}

// overrideWithEnv replaces settings with environment values when present.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("BROKERAGE_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("BROKERAGE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("BROKERAGE_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
}
