package sapo

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the file-based client configuration. RedirectURI selects the
// OAuth mode; without it the key/secret pair is used as direct basic-auth
// credentials.
type Config struct {
	APIKey      string            `yaml:"api_key"`
	APISecret   string            `yaml:"api_secret"`
	RedirectURI string            `yaml:"redirect_uri"`
	Store       string            `yaml:"store"`
	TimeoutMS   int               `yaml:"timeout_ms"`
	Headers     map[string]string `yaml:"headers"`
}

// LoadConfig reads and parses a YAML config file. Environment variables in
// the format ${VAR} are expanded before parsing.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("sapo: read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("sapo: parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the config for required fields.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("sapo: config: api_key is required")
	}
	if c.APISecret == "" {
		return fmt.Errorf("sapo: config: api_secret is required")
	}
	if c.TimeoutMS < 0 {
		return fmt.Errorf("sapo: config: timeout_ms must not be negative")
	}
	return nil
}

// Credentials derives the credential variant the config describes.
func (c Config) Credentials() Credentials {
	if c.RedirectURI != "" {
		return OAuthCredentials(c.APIKey, c.APISecret, c.RedirectURI)
	}
	return DirectCredentials(c.APIKey, c.APISecret)
}
