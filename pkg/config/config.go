// Package config loads the blogadmin configuration file (~/.blogadmin/config.yaml).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mchmarny/blogadmin/pkg/api"
	"github.com/mchmarny/blogadmin/pkg/logger"
	"github.com/mchmarny/blogadmin/pkg/server"
)

const (
	// EnvAPIURL overrides api.url.
	EnvAPIURL = "BLOGADMIN_API_URL"

	// EnvStore overrides store.path.
	EnvStore = "BLOGADMIN_STORE"

	dirName  = ".blogadmin"
	fileName = "config.yaml"
)

// Config represents the configuration file.
type Config struct {
	API        APIConfig        `yaml:"api"`
	Store      StoreConfig      `yaml:"store"`
	Server     ServerConfig     `yaml:"server"`
	Navigation NavigationConfig `yaml:"navigation"`
	Log        LogConfig        `yaml:"log"`
}

// APIConfig points at the blog backend.
type APIConfig struct {
	// URL is the API root, including the /api prefix.
	URL string `yaml:"url"`

	// Timeout bounds each request.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// RefreshPath is the token refresh endpoint relative to URL.
	RefreshPath string `yaml:"refresh_path,omitempty"`
}

// StoreConfig locates the persisted session.
type StoreConfig struct {
	// Path is the SQLite file. An empty path keeps the session in memory.
	Path string `yaml:"path"`
}

// ServerConfig configures `blogadmin serve`.
type ServerConfig struct {
	Port int `yaml:"port,omitempty"`
}

// NavigationConfig selects where the tree comes from.
type NavigationConfig struct {
	// TreeFile, when set, is read instead of the API.
	TreeFile string `yaml:"tree_file,omitempty"`
}

// LogConfig sets the log level (debug, info, warn, error).
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// Dir returns the default configuration directory.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(home, dirName)
}

// DefaultPath returns the default configuration file location.
func DefaultPath() string {
	return filepath.Join(Dir(), fileName)
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:         api.DefaultBaseURL,
			Timeout:     api.DefaultTimeout,
			RefreshPath: api.DefaultRefreshPath,
		},
		Store: StoreConfig{
			Path: filepath.Join(Dir(), "session.db"),
		},
		Server: ServerConfig{
			Port: server.DefaultPort,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the file at path over the defaults and applies environment
// overrides. A missing file is not an error. An empty path means DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.Store.Path = expandHome(cfg.Store.Path)
	cfg.Navigation.TreeFile = expandHome(cfg.Navigation.TreeFile)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.URL = v
	}
	if v, ok := os.LookupEnv(EnvStore); ok {
		c.Store.Path = v
	}
	if v := os.Getenv(logger.EnvVarLogLevel); v != "" {
		c.Log.Level = v
	}
}

// Validate checks the values a command cannot run without.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.url %q must be an absolute URL", c.API.URL)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}

// Save writes the configuration to path, creating the directory.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}
