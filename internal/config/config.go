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
)

// Config represents the client configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	UI     UIConfig     `yaml:"ui"`
	Log    LogConfig    `yaml:"log"`

	// Path is the file the config was read from (not serialized)
	Path string `yaml:"-"`
}

// ServerConfig describes the cafe web application
type ServerConfig struct {
	BaseURL       string        `yaml:"base_url"`
	OrderPath     string        `yaml:"order_path"` // "{id}" is replaced by the order id
	OrdersPath    string        `yaml:"orders_path"`
	TablesPath    string        `yaml:"tables_path"`
	MenuPath      string        `yaml:"menu_path"`
	IndexPath     string        `yaml:"index_path"`
	SessionCookie string        `yaml:"session_cookie"`
	Timeout       time.Duration `yaml:"timeout"`
}

type UIConfig struct {
	Theme  string        `yaml:"theme"`  // classic | neon | mono
	Locale string        `yaml:"locale"` // ru | en
	Tick   time.Duration `yaml:"tick"`   // elapsed-time refresh
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:       "http://localhost:8000",
			OrderPath:     "/orders/{id}/",
			OrdersPath:    "/orders/",
			TablesPath:    "/tables/",
			MenuPath:      "/menu/",
			IndexPath:     "/",
			SessionCookie: "sessionid",
			Timeout:       15 * time.Second,
		},
		UI: UIConfig{
			Theme:  "classic",
			Locale: "ru",
			Tick:   time.Second,
		},
		Log: LogConfig{
			Path:  filepath.Join(Dir(), "cafe.log"),
			Level: "info",
		},
	}
}

// Dir is the per-user state directory (~/.cafe).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cafe"
	}
	return filepath.Join(home, ".cafe")
}

// Load reads the first config file found. An explicit path must exist;
// with no file anywhere the defaults are returned. CAFE_URL overrides
// server.base_url.
func Load(explicit string) (*Config, error) {
	paths := []string{explicit}
	if explicit == "" {
		paths = []string{
			os.Getenv("CAFE_CONFIG"),
			"cafe.yaml",
			filepath.Join(Dir(), "config.yaml"),
		}
	}

	cfg := Default()
	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && explicit == "" {
				continue
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", p, err)
		}
		cfg.Path = p
		break
	}

	if env := strings.TrimSpace(os.Getenv("CAFE_URL")); env != "" {
		cfg.Server.BaseURL = env
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.base_url: not an absolute URL: %q", c.Server.BaseURL)
	}
	if !strings.Contains(c.Server.OrderPath, "{id}") {
		return fmt.Errorf("server.order_path: missing {id} placeholder: %q", c.Server.OrderPath)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}
	if c.UI.Tick <= 0 {
		return fmt.Errorf("ui.tick must be positive")
	}
	return nil
}

// OrderURL turns an order reference into the page URL. Absolute URLs pass
// through unchanged; anything else is taken as an order id.
func (c *Config) OrderURL(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", fmt.Errorf("empty order reference")
	}
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" && u.Host != "" {
		return ref, nil
	}
	return c.PageURL(strings.ReplaceAll(c.Server.OrderPath, "{id}", url.PathEscape(ref)))
}

// PageURL resolves a server path (orders_path, tables_path, ...) against
// server.base_url.
func (c *Config) PageURL(path string) (string, error) {
	base, err := url.Parse(c.Server.BaseURL)
	if err != nil {
		return "", fmt.Errorf("base url: %w", err)
	}
	rel, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("page path %q: %w", path, err)
	}
	return base.ResolveReference(rel).String(), nil
}

// Save writes the configuration as YAML
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
