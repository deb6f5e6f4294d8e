package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.API.BaseURL != "" {
		t.Errorf("API.BaseURL = %q, want empty (no built-in endpoint)", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if cfg.API.AuthScheme != "Token" {
		t.Errorf("API.AuthScheme = %q, want Token", cfg.API.AuthScheme)
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, BackendFile)
	}
	if !cfg.Storage.Watch {
		t.Error("Storage.Watch should be true by default")
	}
	if !cfg.TUI.SidebarEnabled {
		t.Error("TUI.SidebarEnabled should be true by default")
	}
	if cfg.TUI.SidebarVisible {
		t.Error("TUI.SidebarVisible should be false by default")
	}
	if cfg.TUI.SidebarWidth != 32 {
		t.Errorf("TUI.SidebarWidth = %d, want 32", cfg.TUI.SidebarWidth)
	}
	if cfg.Serve.Addr != "127.0.0.1:8080" {
		t.Errorf("Serve.Addr = %q", cfg.Serve.Addr)
	}

	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Default() should validate cleanly, got %v", ValidationErrors(errs))
	}
}

func TestConfigDir(t *testing.T) {
	t.Run("with XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/custom/config")
		if got := ConfigDir(); got != "/custom/config/dmdash" {
			t.Errorf("ConfigDir() = %q, want %q", got, "/custom/config/dmdash")
		}
	})

	t.Run("without XDG_CONFIG_HOME", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "")
		home, _ := os.UserHomeDir()
		expected := filepath.Join(home, ".config", "dmdash")
		if got := ConfigDir(); got != expected {
			t.Errorf("ConfigDir() = %q, want %q", got, expected)
		}
	})
}

func TestConfigFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got := ConfigFile(); got != "/custom/config/dmdash/config.yaml" {
		t.Errorf("ConfigFile() = %q", got)
	}
}

func TestResolveViewsFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	home, _ := os.UserHomeDir()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"default", "", "/xdg/dmdash/views.yaml"},
		{"absolute", "/tmp/views.yaml", "/tmp/views.yaml"},
		{"home", "~/views.yaml", filepath.Join(home, "views.yaml")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := StorageConfig{ViewsFile: tt.in}
			if got := s.ResolveViewsFile(); got != tt.want {
				t.Errorf("ResolveViewsFile() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	cfg := Default()
	if got := cfg.LogDir(); got != "/xdg/dmdash" {
		t.Errorf("LogDir() = %q", got)
	}
	cfg.Logging.Enabled = false
	if got := cfg.LogDir(); got != "" {
		t.Errorf("LogDir() with logging disabled = %q, want empty", got)
	}
}

func TestGet(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("Get().API.Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if cfg.TUI.PageSize != 30 {
		t.Errorf("Get().TUI.PageSize = %d, want 30", cfg.TUI.PageSize)
	}
}

func TestLoad_OverridesAndValidation(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	viper.Set("api.base_url", "https://dm.example.com")
	viper.Set("project.id", 12)
	viper.Set("storage.backend", "api")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Project.ID != 12 || !cfg.API.RemoteEnabled() {
		t.Errorf("overrides not applied: %+v", cfg)
	}

	viper.Set("tui.sidebar_width", 5)
	if _, err := Load(); err == nil {
		t.Error("Load() should fail for sidebar_width 5")
	}
	if cfg := Get(); cfg.TUI.SidebarWidth != 32 {
		t.Errorf("Get() should fall back to defaults, got width %d", cfg.TUI.SidebarWidth)
	}
}
