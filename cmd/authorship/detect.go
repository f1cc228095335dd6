package authorship

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/briandowns/spinner"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/kamilpajak/authorship/internal/app"
	"github.com/kamilpajak/authorship/internal/classifier"
	"github.com/kamilpajak/authorship/internal/ingest"
	"github.com/kamilpajak/authorship/internal/store"
)

var (
	detectText         string
	detectNoHeuristics bool
	detectProvider     string
	detectModel        string
	detectFormat       string
	detectSave         bool
)

var detectCmd = &cobra.Command{
	Use:   "detect [FILE|-]",
	Short: "Score a passage of text",
	Long: `Score a passage and report the probability that it was machine-generated.

Input is taken from --text, from FILE (.txt, .md, .pdf, .docx), or from
standard input when FILE is "-" or omitted and stdin is not a terminal.

Passages shorter than five words are reported as Uncertain without calling the
classifier.

Examples:
  authorship detect essay.docx
  authorship detect --text "Paste a paragraph here."
  pbpaste | authorship detect --format json
  authorship detect report.pdf --provider openai --model gpt-4o-mini --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().StringVarP(&detectText, "text", "t", "", "Text to score instead of reading a file")
	detectCmd.Flags().BoolVar(&detectNoHeuristics, "no-heuristics", false, "Disable the extra short-text shrinkage")
	detectCmd.Flags().StringVarP(&detectProvider, "provider", "p", "", "Classifier provider (huggingface, openai, anthropic, google)")
	detectCmd.Flags().StringVarP(&detectModel, "model", "m", "", "Specific model name")
	detectCmd.Flags().StringVarP(&detectFormat, "format", "f", "text", "Output format (text, json)")
	detectCmd.Flags().BoolVar(&detectSave, "save", false, "Record the result in the configured history store")
}

func runDetect(cmd *cobra.Command, args []string) error {
	if detectFormat != "text" && detectFormat != "json" {
		return fmt.Errorf("invalid format %q (want text or json)", detectFormat)
	}

	doc, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	if detectProvider != "" && detectProvider != cfg.Classifier.Provider {
		cfg.Classifier.Provider = detectProvider
		cfg.Classifier.APIKey = ""
		if detectModel == "" {
			cfg.Classifier.Model = ""
		}
	}
	if detectModel != "" {
		cfg.Classifier.Model = detectModel
	}
	extra := cfg.Detector.ExtraHeuristics && !detectNoHeuristics

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg, log, app.Options{OpenStore: detectSave})
	if err != nil {
		return err
	}
	defer a.Close()
	if detectSave && a.Store == nil {
		return fmt.Errorf("--save needs a history store; set DATABASE_URL or store.url")
	}

	stopSpinner := startSpinner(cmd.ErrOrStderr(), fmt.Sprintf(" Scoring %s with %s...", doc.Name, cfg.Classifier.Provider))
	start := time.Now()
	result, err := a.Detector.Detect(ctx, doc.Text, extra)
	stopSpinner()
	if err != nil {
		if errors.Is(err, classifier.ErrUnavailable) {
			return fmt.Errorf("%w\nCheck the provider settings and API key, or try again once the model has loaded", err)
		}
		return err
	}
	log.WithField("elapsed", time.Since(start).String()).Debug("detect finished")

	if detectSave {
		rec := store.NewRecord(doc.Text, result)
		if err := a.Store.Save(ctx, rec); err != nil {
			log.WithError(err).Warn("failed to save detection")
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved as %s\n", rec.ID)
		}
	}

	if detectFormat == "json" {
		return outputJSON(cmd.OutOrStdout(), result)
	}
	printResult(cmd.OutOrStdout(), result)
	return nil
}

// readInput picks the passage source: --text, a file, or stdin.
func readInput(stdin io.Reader, args []string) (*ingest.Document, error) {
	if detectText != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("use either --text or FILE, not both")
		}
		return &ingest.Document{Name: "text", Format: ingest.FormatText, Text: detectText}, nil
	}

	if len(args) == 1 && args[0] != "-" {
		doc, err := ingest.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		return doc, nil
	}

	if len(args) == 0 && isTerminal(stdin) {
		return nil, fmt.Errorf("no input: pass FILE, --text, or pipe text on stdin")
	}
	return ingest.Read(stdin, "stdin")
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// startSpinner shows progress on w while the classifier works. It is a no-op
// unless w is a terminal.
func startSpinner(w io.Writer, suffix string) func() {
	f, ok := w.(*os.File)
	if !ok || !isTerminal(f) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(f))
	s.Suffix = suffix
	s.Start()
	return s.Stop
}
