package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/xyz-asif/mangrovewatch/internal/session"
)

const (
	defaultServer  = "http://localhost:8080/api/v1"
	defaultTimeout = 15 * time.Second

	serverEnv = "MANGROVE_SERVER"
)

// Config is the terminal client's settings file.
type Config struct {
	Server      string        `yaml:"server"`
	Credentials string        `yaml:"credentials"`
	Timeout     time.Duration `yaml:"timeout"`
	LogLevel    string        `yaml:"logLevel"`
}

// DefaultConfigPath returns <user config dir>/mangrove/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "mangrove", "config.yaml"), nil
}

// LoadConfig reads path, falling back to defaults for a missing file or
// unset keys. MANGROVE_SERVER overrides the server.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if server := os.Getenv(serverEnv); server != "" {
		cfg.Server = server
	}
	if cfg.Server == "" {
		cfg.Server = defaultServer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
	if cfg.Credentials == "" {
		cfg.Credentials, err = session.DefaultCredentialsPath()
		if err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}
