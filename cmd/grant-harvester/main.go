// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the grant-harvester CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/grant-harvester/internal/enrich"
	"github.com/pdiddy/grant-harvester/internal/logging"
	"github.com/pdiddy/grant-harvester/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the grant-harvester CLI.
var rootCmd = &cobra.Command{
	Use:   "grant-harvester",
	Short: "Harvest research grants from the DTIC Dimensions discovery service",
	Long: `grant-harvester collects every grant awarded to one research organization
from the DTIC Dimensions discovery service, looks up each grant's fields of
research, and writes the result as one flat table.

Subcommands: harvest runs the full pipeline, count reports how many grants an
organization has, and orgs resolves an organization name to its ID.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(logging.Config{
			Level:  viper.GetString("log.level"),
			Pretty: viper.GetBool("log.pretty"),
		})
		if wd, err := os.Getwd(); err == nil {
			log.Info().Str("dir", wd).Msg("working directory")
		}
		if f := viper.ConfigFileUsed(); f != "" {
			log.Info().Str("path", f).Msg("using config file")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./grant-harvester.yaml or ~/.config/grant-harvester/grant-harvester.yaml)")
	pf.String("origin", types.DefaultOrigin, "discovery service base URL")
	pf.Duration("timeout", 0, "HTTP request timeout (default 60s)")
	pf.Int("max-retries", 0, "retries on HTTP 429; 0 sends each request once")
	pf.String("log-level", "info", "log level: debug, info, warn or error")
	pf.Bool("log-pretty", false, "human-readable log output")

	mustBind("origin", pf.Lookup("origin"))
	mustBind("http.timeout", pf.Lookup("timeout"))
	mustBind("http.max_retries", pf.Lookup("max-retries"))
	mustBind("log.level", pf.Lookup("log-level"))
	mustBind("log.pretty", pf.Lookup("log-pretty"))

	viper.SetDefault("enrich.concurrency", enrich.DefaultConcurrency)
	viper.SetDefault("output.format", string(types.FormatCSV))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("grant-harvester")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "grant-harvester"))
		}
	}

	viper.SetEnvPrefix("GRANT_HARVESTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		}
	}
}

// loadConfig assembles the pipeline configuration from defaults, the config
// file, GRANT_HARVESTER_* environment variables and flags.
func loadConfig() (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing configuration: %w", err)
	}
	return cfg, nil
}

// mustBind binds a flag to a viper key. Flags are registered in init, so a
// failure is a programming error.
func mustBind(key string, f *pflag.Flag) {
	if err := viper.BindPFlag(key, f); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
