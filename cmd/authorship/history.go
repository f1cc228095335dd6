package authorship

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamilpajak/authorship/internal/store"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded detections",
	Long: `List detections recorded with "detect --save" or through the API, newest
first. Requires a history store (DATABASE_URL or store.url in the config).`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of records")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "text", "Output format (text, json)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.Store.URL == "" {
		return fmt.Errorf("no history store configured; set DATABASE_URL or store.url")
	}
	if historyFormat != "text" && historyFormat != "json" {
		return fmt.Errorf("invalid format %q (want text or json)", historyFormat)
	}

	ctx := context.Background()
	s, err := store.Open(ctx, cfg.Store.URL)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer s.Close()

	records, err := s.List(ctx, historyLimit)
	if err != nil {
		return err
	}

	if historyFormat == "json" {
		if records == nil {
			records = []store.Record{}
		}
		return outputJSON(cmd.OutOrStdout(), records)
	}
	printHistory(cmd.OutOrStdout(), records)
	return nil
}
