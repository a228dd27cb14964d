// ABOUTME: Configuration loading: .env, optional YAML file, environment overrides
// ABOUTME: Supports ${VAR} expansion in YAML and duration strings
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/harperreed/zala/auth"
	"github.com/harperreed/zala/db"
)

const (
	DefaultAPIURL   = "http://localhost:8000"
	DefaultTimeout  = 30 * time.Second
	DefaultAutosave = 500 * time.Millisecond
	DefaultSideNav  = 500 * time.Millisecond
)

type Config struct {
	API      APIConfig      `yaml:"api"`
	Google   GoogleConfig   `yaml:"google"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	UI       UIConfig       `yaml:"ui"`
}

// APIConfig points at the Zala backend.
type APIConfig struct {
	URL string `yaml:"url"`
	Env string `yaml:"env"`

	Timeout    time.Duration `yaml:"-"`
	TimeoutRaw string        `yaml:"timeout"`
}

type GoogleConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri"`
	Scopes       string `yaml:"scopes"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// UIConfig holds the interaction timings.
type UIConfig struct {
	AutosaveDelay time.Duration `yaml:"-"`
	SideNavDelay  time.Duration `yaml:"-"`

	AutosaveDelayRaw string `yaml:"autosave_delay"`
	SideNavDelayRaw  string `yaml:"side_nav_delay"`
}

// DefaultPath is the config file read when none is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "zala", "config.yaml")
}

// Load reads .env files from the working directory, then the YAML file at
// path, then environment overrides. A missing file at the default path is
// not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	// a missing .env is fine
	_ = godotenv.Load()

	var cfg Config
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

var envVar = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with the variable's value, or nothing.
func expandEnvVars(s string) string {
	return envVar.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVar.FindStringSubmatch(match)[1])
	})
}

func applyEnv(cfg *Config) {
	set := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set(&cfg.API.URL, "ZALA_API_URL")
	set(&cfg.API.Env, "ZALA_ENV")
	set(&cfg.Google.ClientID, "GOOGLE_CLIENT_ID")
	set(&cfg.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	set(&cfg.Google.RedirectURI, "GOOGLE_REDIRECT_URI")
	set(&cfg.Google.Scopes, "GOOGLE_SCOPES")
	set(&cfg.Database.Path, "ZALA_DB_PATH")
	set(&cfg.Logging.Level, "ZALA_LOG_LEVEL")
}

func applyDefaults(cfg *Config) {
	if cfg.API.URL == "" {
		cfg.API.URL = DefaultAPIURL
	}
	if cfg.API.Env == "" {
		cfg.API.Env = "development"
	}
	if cfg.Google.RedirectURI == "" {
		cfg.Google.RedirectURI = auth.DefaultRedirectURL
	}
	if cfg.Google.Scopes == "" {
		cfg.Google.Scopes = auth.DefaultScopes
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = db.DefaultPath()
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

func parseDurations(cfg *Config) error {
	parse := func(raw, name string, def time.Duration, dst *time.Duration) error {
		if raw == "" {
			*dst = def
			return nil
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("parsing %s %q: %w", name, raw, err)
		}
		*dst = d
		return nil
	}
	if err := parse(cfg.API.TimeoutRaw, "api.timeout", DefaultTimeout, &cfg.API.Timeout); err != nil {
		return err
	}
	if err := parse(cfg.UI.AutosaveDelayRaw, "ui.autosave_delay", DefaultAutosave, &cfg.UI.AutosaveDelay); err != nil {
		return err
	}
	return parse(cfg.UI.SideNavDelayRaw, "ui.side_nav_delay", DefaultSideNav, &cfg.UI.SideNavDelay)
}

// Validate returns the first problem found.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.url %q is not an absolute URL", c.API.URL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.UI.AutosaveDelay <= 0 || c.UI.SideNavDelay <= 0 {
		return fmt.Errorf("ui delays must be positive")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not console or json", c.Logging.Format)
	}
	return nil
}

// GoogleLoginConfigured reports whether the Google login can be offered.
func (c *Config) GoogleLoginConfigured() bool {
	return c.Google.ClientID != ""
}

// OAuth returns the settings the Google code flow needs.
func (c *Config) OAuth() auth.GoogleConfig {
	return auth.GoogleConfig{
		ClientID:     c.Google.ClientID,
		ClientSecret: c.Google.ClientSecret,
		RedirectURL:  c.Google.RedirectURI,
		Scopes:       c.Google.Scopes,
	}
}
