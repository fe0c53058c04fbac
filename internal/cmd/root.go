// Package cmd wires the flist command-line interface: new, add, view,
// and status verbs over a shared project directory.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flist-dev/flist/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "flist [dir]",
	Short: "Shared file and link lists for a directory",
	Long: `Flist keeps a named list of files and links in a project directory
that several processes can safely share. A lock file coordinates access:
one process views and edits the list at a time, and other processes
forward new entries to it instead of waiting.

Running flist without a verb opens the view.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bare invocation behaves like view.
		return runView(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/flist/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
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
	viper.SetEnvPrefix("FLIST")
	// Replace dots with underscores for nested keys in env vars
	// e.g., FLIST_LOCK_ACQUIRE_TIMEOUT_MS for lock.acquire_timeout_ms
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// projectDir resolves the project directory positional, defaulting to the
// current directory.
func projectDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
