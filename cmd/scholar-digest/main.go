// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholar-digest CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-digest/internal/secrets"
	"github.com/pdiddy/scholar-digest/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is the process-wide logger, configured in PersistentPreRunE.
var logger zerolog.Logger

// loadedSecrets holds credentials loaded from the secrets directory at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, the stored secret otherwise.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the scholar-digest CLI.
var rootCmd = &cobra.Command{
	Use:   "scholar-digest",
	Short: "Turn Google Scholar alert emails into one enriched digest",
	Long: `scholar-digest scans a local mail store for Google Scholar alert emails,
extracts the paper mentions they carry, enriches each title against
bibliographic databases, and merges everything into a single deduplicated
report delivered by email.

The run subcommand executes the whole pipeline; render, send, and history
operate on the snapshots and archive that runs leave behind.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(cmd)

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir, logger)
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
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func newLogger(cmd *cobra.Command) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scholar-digest.yaml or ~/.config/scholar-digest/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of plain-text secret files")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("scholar-digest")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "scholar-digest"))
		}
	}

	viper.SetEnvPrefix("SCHOLAR_DIGEST")
	viper.AutomaticEnv()

	viper.SetDefault("mailbox.root", defaultMailRoot())
	viper.SetDefault("mailbox.lookback_days", 7)
	viper.SetDefault("mailbox.workers", runtime.NumCPU())
	viper.SetDefault("lookup.timeout", "10s")
	viper.SetDefault("lookup.user_agent", "scholar-digest/"+version)
	viper.SetDefault("lookup.enable_semantic_scholar", false)
	viper.SetDefault("report.output_dir", "output")
	viper.SetDefault("mail.port", 587)
	viper.SetDefault("mail.max_retries", 3)
	viper.SetDefault("archive.dir", "archive")
	viper.SetDefault("archive.max_results", 20)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// defaultMailRoot points at the Apple Mail store when a home directory is
// available, the current directory otherwise.
func defaultMailRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, "Library", "Mail")
}

// pipelineConfig assembles the run configuration from viper.
func pipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Mailbox: types.MailboxConfig{
			Root:         viper.GetString("mailbox.root"),
			LookbackDays: viper.GetInt("mailbox.lookback_days"),
			Workers:      viper.GetInt("mailbox.workers"),
		},
		Lookup: types.LookupConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("lookup.timeout"),
				UserAgent: viper.GetString("lookup.user_agent"),
			},
			EnableSemanticScholar: viper.GetBool("lookup.enable_semantic_scholar"),
			SemanticScholarAPIKey: secretDefault(secrets.SemanticScholarAPIKey, viper.GetString("lookup.semantic_scholar_api_key")),
		},
		Report: types.ReportConfig{
			OutputDir: viper.GetString("report.output_dir"),
		},
		Mail: types.MailConfig{
			Host:       viper.GetString("mail.host"),
			Port:       viper.GetInt("mail.port"),
			From:       viper.GetString("mail.from"),
			To:         viper.GetString("mail.to"),
			Username:   viper.GetString("mail.username"),
			MaxRetries: viper.GetInt("mail.max_retries"),
		},
		Archive: types.ArchiveConfig{
			Dir:        viper.GetString("archive.dir"),
			MaxResults: viper.GetInt("archive.max_results"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
