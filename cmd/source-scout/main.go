// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the source-scout CLI.
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/source-scout/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys and endpoints loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret value for
// key (with its SOURCE_SCOUT_* environment override), otherwise empty.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	return secrets.Get(loadedSecrets, key)
}

// rootCmd is the base command for the source-scout CLI.
var rootCmd = &cobra.Command{
	Use:   "source-scout",
	Short: "Product source discovery and crawl planning",
	Long: `source-scout finds and prioritizes web sources for product data. Given a
product identity and the spec fields still missing, it plans identity-guarded
search queries, executes them against an internal corpus and external search
providers, classifies and triages the results, and schedules the selected
URLs through a budgeted crawl frontier.

Each stage is a subcommand: discover, frontier, corpus, and intel. The fetch
and extraction stages live downstream and consume the JSON artifacts this
tool writes.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./source-scout.yaml or ~/.config/source-scout/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("source-scout")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "source-scout"))
		}
	}

	viper.SetEnvPrefix("SOURCE_SCOUT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
