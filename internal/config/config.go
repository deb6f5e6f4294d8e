package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete dmdash configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Project ProjectConfig `mapstructure:"project"`
	Storage StorageConfig `mapstructure:"storage"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Logging LoggingConfig `mapstructure:"logging"`
	Serve   ServeConfig   `mapstructure:"serve"`
}

// APIConfig controls access to the Data Manager API
type APIConfig struct {
	// BaseURL is the scheme and host of the API, e.g. "https://dm.example.com".
	// Empty disables every remote feature: boxes stay at 0 and views persist locally.
	BaseURL string `mapstructure:"base_url"`
	// Token is sent as "Authorization: <AuthScheme> <Token>" on every request
	Token string `mapstructure:"token"`
	// AuthScheme prefixes the token (default: "Token")
	AuthScheme string `mapstructure:"auth_scheme"`
	// Timeout bounds every request, including the boxes fetch (default: 10s)
	Timeout time.Duration `mapstructure:"timeout"`
}

// ProjectConfig selects the project the dashboard shows
type ProjectConfig struct {
	// ID is the project identifier sent as ?project= (default: 0)
	ID int `mapstructure:"id"`
}

// StorageConfig controls where views are persisted
type StorageConfig struct {
	// Backend is "file" (local YAML) or "api" (remote Data Manager views)
	Backend string `mapstructure:"backend"`
	// ViewsFile is the YAML file used by the file backend.
	// Empty means {ConfigDir}/views.yaml. Supports ~ for home directory expansion.
	ViewsFile string `mapstructure:"views_file"`
	// Watch reloads the store when ViewsFile changes on disk (default: true)
	Watch bool `mapstructure:"watch"`
}

// TUIConfig controls the terminal UI layout
type TUIConfig struct {
	// SidebarEnabled allows the filter sidebar to be shown at all (default: true)
	SidebarEnabled bool `mapstructure:"sidebar_enabled"`
	// SidebarVisible is the initial sidebar visibility (default: false)
	SidebarVisible bool `mapstructure:"sidebar_visible"`
	// SidebarWidth is the filter sidebar width in columns (default: 32, min: 20, max: 60)
	SidebarWidth int `mapstructure:"sidebar_width"`
	// PageSize is how many tasks the data grid requests per page (default: 30)
	PageSize int `mapstructure:"page_size"`
	// Theme names the color palette: "default", "nord", "dracula" or "light"
	Theme string `mapstructure:"theme"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is written to {ConfigDir}/debug.log
	Enabled bool `mapstructure:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
}

// ServeConfig controls the local fixture API server
type ServeConfig struct {
	// Addr is the listen address (default: "127.0.0.1:8080")
	Addr string `mapstructure:"addr"`
	// Fixture is a YAML file with projects and tasks to serve
	Fixture string `mapstructure:"fixture"`
}

// Storage backends
const (
	BackendFile = "file"
	BackendAPI  = "api"
)

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    "",
			AuthScheme: "Token",
			Timeout:    10 * time.Second,
		},
		Storage: StorageConfig{
			Backend: BackendFile,
			Watch:   true,
		},
		TUI: TUIConfig{
			SidebarEnabled: true,
			SidebarVisible: false,
			SidebarWidth:   32,
			PageSize:       30,
			Theme:          "default",
		},
		Logging: LoggingConfig{
			Enabled: true,
			Level:   "info",
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("api.base_url", defaults.API.BaseURL)
	viper.SetDefault("api.token", defaults.API.Token)
	viper.SetDefault("api.auth_scheme", defaults.API.AuthScheme)
	viper.SetDefault("api.timeout", defaults.API.Timeout)

	viper.SetDefault("project.id", defaults.Project.ID)

	viper.SetDefault("storage.backend", defaults.Storage.Backend)
	viper.SetDefault("storage.views_file", defaults.Storage.ViewsFile)
	viper.SetDefault("storage.watch", defaults.Storage.Watch)

	viper.SetDefault("tui.sidebar_enabled", defaults.TUI.SidebarEnabled)
	viper.SetDefault("tui.sidebar_visible", defaults.TUI.SidebarVisible)
	viper.SetDefault("tui.sidebar_width", defaults.TUI.SidebarWidth)
	viper.SetDefault("tui.page_size", defaults.TUI.PageSize)
	viper.SetDefault("tui.theme", defaults.TUI.Theme)

	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)

	viper.SetDefault("serve.addr", defaults.Serve.Addr)
	viper.SetDefault("serve.fixture", defaults.Serve.Fixture)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration, falling back to defaults when
// the loaded configuration is invalid.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// ResolveViewsFile returns the views file path, expanding ~ and defaulting
// to {ConfigDir}/views.yaml.
func (s *StorageConfig) ResolveViewsFile() string {
	if s.ViewsFile == "" {
		return filepath.Join(ConfigDir(), "views.yaml")
	}

	path := s.ViewsFile
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return path
}

// RemoteEnabled reports whether an API base address is configured.
func (a *APIConfig) RemoteEnabled() bool {
	return strings.TrimSpace(a.BaseURL) != ""
}

// LogDir returns the directory for debug.log, or "" when logging is disabled.
func (c *Config) LogDir() string {
	if !c.Logging.Enabled {
		return ""
	}
	return ConfigDir()
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "dmdash")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dmdash"
	}
	return filepath.Join(home, ".config", "dmdash")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ValidThemes returns the list of built-in color palettes
func ValidThemes() []string {
	return []string{"default", "nord", "dracula", "light"}
}

// ValidBackends returns the list of valid storage backends
func ValidBackends() []string {
	return []string{BackendFile, BackendAPI}
}
