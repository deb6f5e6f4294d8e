package cmd

import (
	"strings"

	"github.com/Iron-Ham/dmdash/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "dmdash",
	Short: "Terminal dashboard for Data Manager views",
	Long: `dmdash shows a project's saved Data Manager views as tabs, with the
task, annotation, prediction and box counters for the selected view and a
data grid of its tasks.

Views are stored in a local YAML file or, with storage.backend=api, on the
Data Manager server itself.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/dmdash/config.yaml)")
	rootCmd.PersistentFlags().IntP("project", "p", 0, "project ID (overrides project.id)")
	rootCmd.PersistentFlags().String("api", "", "Data Manager base URL (overrides api.base_url)")
}

// bindFlags connects flags to the config keys they override. It runs at
// execution time, once every command has registered its flags.
func bindFlags() {
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("project.id", rootCmd.PersistentFlags().Lookup("project"))
	_ = viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api"))
	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("serve.fixture", serveCmd.Flags().Lookup("fixture"))
}

func initConfig() {
	bindFlags()

	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DMDASH")
	// Replace dots with underscores for nested keys in env vars
	// e.g., DMDASH_API_BASE_URL for api.base_url
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
