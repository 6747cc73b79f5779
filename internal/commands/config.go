package commands

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

const defaultServerURL = "http://localhost:8080"

// Config is the CLI's saved state in ~/.sakura/config.json.
type Config struct {
	ServerURL   string `json:"server_url"`
	Token       string `json:"token,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`

	path string
}

// ConfigDir returns ~/.sakura, or $SAKURA_HOME when set.
func ConfigDir() (string, error) {
	if dir := os.Getenv("SAKURA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".sakura"), nil
}

// LoadConfig reads the config in dir. A missing file yields defaults.
func LoadConfig(dir string) (*Config, error) {
	cfg := &Config{ServerURL: defaultServerURL, path: filepath.Join(dir, "config.json")}

	data, err := os.ReadFile(cfg.path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return cfg, err
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultServerURL
	}
	return cfg, nil
}

func (c *Config) Save() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0600)
}
