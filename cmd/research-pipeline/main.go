// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the research-pipeline CLI: a
// multi-agent pipeline that iteratively refines a research document until
// it converges on a quality threshold or hits the iteration cap.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-pipeline/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when non-empty, then the secret value for
// key, then "".
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the research-pipeline CLI.
var rootCmd = &cobra.Command{
	Use:   "research-pipeline",
	Short: "Multi-agent research document pipeline",
	Long: `research-pipeline coordinates a set of cooperating text-generation agents
(researcher, fact-checker, reviewer, editor) in a repeating workflow that
iteratively refines a research document. After every pass the draft is
scored; the pipeline loops until the score reaches the convergence
threshold or the iteration cap is hit.

Run a pipeline with "run", and inspect stored runs with "runs".`,
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

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./research-pipeline.yaml or ~/.config/research-pipeline/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("research-pipeline")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "research-pipeline"))
		}
	}

	viper.SetEnvPrefix("RESEARCH_PIPELINE")
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
