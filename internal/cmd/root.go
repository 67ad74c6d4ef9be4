// Package cmd implements the fracta command-line tool: a thin wrapper that
// exercises the vfs/note/metastore/search/index packages end to end for
// manual smoke-testing. It is developer tooling, not a product surface.
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fracta",
	Short: "Inspect and index a fracta Location from the command line",
	Long: `fracta is a small command-line front end over the fracta core
library: it initializes Locations, builds and queries their cache, and
watches them for changes.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.config/fracta/config.yaml)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "enable debug logging")
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".config", "fracta"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("FRACTA")
	viper.AutomaticEnv()

	// No config file is fine; commands fall back to fracta's own defaults.
	viper.ReadInConfig()
}
