package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Iron-Ham/dmdash/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify dmdash configuration",
	Long: `View or modify dmdash configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  dmdash config set api.base_url https://dm.example.com
  dmdash config set project.id 3
  dmdash config set tui.theme nord

Valid keys:
  api.base_url          - Data Manager address (empty disables remote features)
  api.token             - API token
  api.auth_scheme       - Authorization scheme (default: Token)
  api.timeout           - Request timeout, e.g. 10s
  project.id            - Project to show
  storage.backend       - Where views are saved
                          Options: file, api
  storage.views_file    - Views file for the file backend
  storage.watch         - Reload when the views file changes (true/false)
  tui.sidebar_enabled   - Allow the filter sidebar (true/false)
  tui.sidebar_visible   - Show the sidebar on start (true/false)
  tui.sidebar_width     - Sidebar width in columns (20-60)
  tui.page_size         - Tasks per page
  tui.theme             - Color palette
                          Options: default, nord, dracula, light
  logging.enabled       - Write debug.log (true/false)
  logging.level         - Options: debug, info, warn, error
  serve.addr            - Listen address for 'dmdash serve'
  serve.fixture         - Fixture file for 'dmdash serve'`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/dmdash/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintln(out)

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Config file: (none - using defaults)\n")
	}
	fmt.Fprintln(out)

	token := "(unset)"
	if cfg.API.Token != "" {
		token = "(set)"
	}
	fmt.Fprintln(out, "api:")
	fmt.Fprintf(out, "  base_url: %s\n", cfg.API.BaseURL)
	fmt.Fprintf(out, "  token: %s\n", token)
	fmt.Fprintf(out, "  auth_scheme: %s\n", cfg.API.AuthScheme)
	fmt.Fprintf(out, "  timeout: %s\n", cfg.API.Timeout)

	fmt.Fprintln(out, "project:")
	fmt.Fprintf(out, "  id: %d\n", cfg.Project.ID)

	fmt.Fprintln(out, "storage:")
	fmt.Fprintf(out, "  backend: %s\n", cfg.Storage.Backend)
	fmt.Fprintf(out, "  views_file: %s\n", cfg.Storage.ResolveViewsFile())
	fmt.Fprintf(out, "  watch: %v\n", cfg.Storage.Watch)

	fmt.Fprintln(out, "tui:")
	fmt.Fprintf(out, "  sidebar_enabled: %v\n", cfg.TUI.SidebarEnabled)
	fmt.Fprintf(out, "  sidebar_visible: %v\n", cfg.TUI.SidebarVisible)
	fmt.Fprintf(out, "  sidebar_width: %d\n", cfg.TUI.SidebarWidth)
	fmt.Fprintf(out, "  page_size: %d\n", cfg.TUI.PageSize)
	fmt.Fprintf(out, "  theme: %s\n", cfg.TUI.Theme)

	fmt.Fprintln(out, "logging:")
	fmt.Fprintf(out, "  enabled: %v\n", cfg.Logging.Enabled)
	fmt.Fprintf(out, "  level: %s\n", cfg.Logging.Level)

	fmt.Fprintln(out, "serve:")
	fmt.Fprintf(out, "  addr: %s\n", cfg.Serve.Addr)
	fmt.Fprintf(out, "  fixture: %s\n", cfg.Serve.Fixture)

	return nil
}

// configKeys maps each settable key to its value type. Keys with a fixed
// set of values are checked against configChoices.
var configKeys = map[string]string{
	"api.base_url":        "string",
	"api.token":           "string",
	"api.auth_scheme":     "string",
	"api.timeout":         "duration",
	"project.id":          "int",
	"storage.backend":     "string",
	"storage.views_file":  "string",
	"storage.watch":       "bool",
	"tui.sidebar_enabled": "bool",
	"tui.sidebar_visible": "bool",
	"tui.sidebar_width":   "int",
	"tui.page_size":       "int",
	"tui.theme":           "string",
	"logging.enabled":     "bool",
	"logging.level":       "string",
	"serve.addr":          "string",
	"serve.fixture":       "string",
}

var configChoices = map[string]func() []string{
	"storage.backend": config.ValidBackends,
	"tui.theme":       config.ValidThemes,
	"logging.level":   config.ValidLogLevels,
}

// parseConfigValue validates value for key and converts it to the type
// viper should store.
func parseConfigValue(key, value string) (any, error) {
	keyType, ok := configKeys[key]
	if !ok {
		return nil, fmt.Errorf("unknown configuration key: %s\nRun 'dmdash config set --help' to see valid keys", key)
	}

	switch keyType {
	case "string":
		if choices, ok := configChoices[key]; ok && !slices.Contains(choices(), value) {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				key, value, strings.Join(choices(), ", "))
		}
		return value, nil
	case "bool":
		if value != "true" && value != "false" {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		return value == "true", nil
	case "duration":
		d, err := time.ParseDuration(value)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid value for %s: expected a positive duration such as 10s", key)
		}
		return d.String(), nil
	default:
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", key)
		}
		if intVal < 0 {
			return nil, fmt.Errorf("invalid value for %s: must be non-negative", key)
		}
		return intVal, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	typedValue, err := parseConfigValue(key, args[1])
	if err != nil {
		return err
	}

	configDir := config.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.Set(key, typedValue)

	// Write to the file in use when there is one, so --config is honoured
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = config.ConfigFile()
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)

	return nil
}

const defaultConfigContent = `# dmdash configuration

# Data Manager API. Leave base_url empty to work offline: views are kept
# in the local views file and the boxes counter stays at 0.
api:
  base_url: ""
  token: ""
  # Sent as "Authorization: <auth_scheme> <token>"
  auth_scheme: Token
  # Bounds every request, including the boxes fetch
  timeout: 10s

project:
  id: 0

# Where views are saved
# Options: file, api
storage:
  backend: file
  # Default: ~/.config/dmdash/views.yaml
  views_file: ""
  # Reload the dashboard when the views file is edited
  watch: true

# TUI (terminal user interface) settings
tui:
  # Set to false to hide the filter sidebar and its toggle
  sidebar_enabled: true
  sidebar_visible: false
  # Sidebar width in columns (20-60)
  sidebar_width: 32
  # Tasks requested per page
  page_size: 30
  # Options: default, nord, dracula, light
  theme: default

# Debug logging to ~/.config/dmdash/debug.log
logging:
  enabled: true
  # Options: debug, info, warn, error
  level: info

# Local fixture API ('dmdash serve')
serve:
  addr: 127.0.0.1:8080
  fixture: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'dmdash config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Edit this file to point dmdash at your Data Manager.")

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	fmt.Fprintf(out, "  2. ./config.yaml (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: DMDASH_* (e.g., DMDASH_API_BASE_URL)")

	return nil
}
