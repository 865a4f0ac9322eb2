// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the abstract-scraper CLI.
// Stages: ids (index listing), scrape (raw page store), parse (structured
// output), count, and catalog (SQLite load and search).
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/abstract-scraper/internal/secrets"
	"github.com/pdiddy/abstract-scraper/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds request credentials loaded from .secrets/ at startup.
var loadedSecrets secrets.Secrets

var rootCmd = &cobra.Command{
	Use:   "abstract-scraper",
	Short: "Scrape, store, and parse paper abstract pages",
	Long: `abstract-scraper collects paper abstract pages from a research repository,
appends them to a durable raw store, and parses them into structured records.

A collection (e.g. "fen") names one dataset. All of its files live under the
data directory with the collection name as prefix:

  <collection>_ids.txt               ids to fetch
  <collection>_raw_abstracts.json    raw page store
  <collection>_parsed_abstracts.*    parsed output (json, csv, yaml)
  <collection>_parse_report.yaml     last parse report
  <collection>.db                    SQLite catalog`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/", os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", s.Keys())
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./abstract-scraper.yaml or ~/.config/abstract-scraper/abstract-scraper.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "directory holding collection files")
	rootCmd.PersistentFlags().String("collection", "fen", "collection name used as file prefix")

	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("collection", rootCmd.PersistentFlags().Lookup("collection"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("abstract-scraper")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "abstract-scraper"))
		}
	}

	viper.SetEnvPrefix("ABSTRACT_SCRAPER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// collection returns the collection selected by flags, config, or env.
func collection() types.Collection {
	return types.Collection{
		Name:    viper.GetString("collection"),
		DataDir: viper.GetString("data_dir"),
	}
}

// httpConfig builds request settings from config and loaded secrets.
// A user-agent secret overrides the configured one.
func httpConfig(cmd *cobra.Command) types.HTTPConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("timeout")
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	userAgent := viper.GetString("user_agent")
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return types.HTTPConfig{
		Timeout:   timeout,
		UserAgent: userAgent,
		Headers:   loadedSecrets.Headers(),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
