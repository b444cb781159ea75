// Package cli implements the drugfacts command line: the HTTP server, the MCP
// server and a retrieval-only search command.
package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/drugfacts/internal/config"
)

var (
	flagEnv        string
	flagConfigPath string
	flagCorpusPath string
	flagNoColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "drugfacts",
	Short: "Grounded drug information Q&A",
	Long: `drugfacts answers medication questions from a curated drug facts corpus.

Records are ranked with TF-IDF cosine similarity and, when an LLM API key is
configured, the best matches ground a generated answer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		if flagNoColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnv, "env", "",
		"config environment (local, docker, prod); defaults to $ENV or local")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "",
		"path to a config file (overrides --env lookup)")
	rootCmd.PersistentFlags().StringVar(&flagCorpusPath, "corpus", "",
		"path to the drug facts file (overrides corpus.path)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// resolveEnv returns the environment name used for config lookup and logging.
func resolveEnv() string {
	if flagEnv != "" {
		return flagEnv
	}
	return config.GetEnv()
}

// loadConfig loads .env, then the config file selected by the global flags.
func loadConfig() (config.Config, string, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, "", err
	}

	env := resolveEnv()

	var (
		cfg config.Config
		err error
	)
	if flagConfigPath != "" {
		cfg, err = config.LoadFile(flagConfigPath)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return config.Config{}, "", fmt.Errorf("load config: %w", err)
	}

	if flagCorpusPath != "" {
		cfg.Corpus.Path = flagCorpusPath
	}
	return cfg, env, nil
}
