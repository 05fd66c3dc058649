// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the openalex-harvest CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the openalex-harvest CLI.
var rootCmd = &cobra.Command{
	Use:   "openalex-harvest",
	Short: "Download and index flattened OpenAlex work records",
	Long: `openalex-harvest pulls bibliographic work records for a publication year
from the OpenAlex Works API, flattens each record (authors, institutions,
fields, keywords, journal, derived ratios, research topic), and persists
them as newline-delimited JSON with per-page checkpoints so interrupted
runs can be resumed.

Each stage is a subcommand: fetch downloads and flattens, status reports
run progress, index loads the output into a local SQLite database, and
query searches that database.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./openalex-harvest.yaml or ~/.config/openalex-harvest/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("openalex-harvest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "openalex-harvest"))
		}
	}

	viper.SetEnvPrefix("OPENALEX_HARVEST")
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
