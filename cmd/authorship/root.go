// Package authorship implements the authorship command-line interface.
package authorship

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kamilpajak/authorship/internal/config"
	"github.com/kamilpajak/authorship/internal/logging"
)

var (
	configPath string
	logLevel   string

	cfg *config.Config
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "authorship",
	Short: "Estimate whether text was written by a human or a language model",
	Long: `authorship blends a pretrained AI-text classifier with statistical
features of the passage (sentence length, punctuation, repetition and list
formatting) into a single AI-vs-human probability.

The classifier defaults to the hosted RoBERTa detector on Hugging Face; an
OpenAI, Anthropic or Gemini model can act as the judge instead.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		log, err = logging.New(cfg.Log, os.Stderr)
		return err
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (default $AUTHORSHIP_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
