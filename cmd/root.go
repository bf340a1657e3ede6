// Package cmd implements the jaundice command line.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xhad/jaundice/pkg/config"
)

const appName = "jaundice"

var (
	configPath string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Score news articles by their share of emotionally charged words",
	Long: `jaundice fetches articles, extracts their text, reduces every word to its
base form and reports the percentage of words found in the charged words
dictionary.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(scoreCmd, serveCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	loaded, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}

	if problems := loaded.Validate(); len(problems) > 0 {
		errs := make([]error, 0, len(problems))
		for _, problem := range problems {
			errs = append(errs, problem)
		}
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}

	cfg = loaded
	return nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
