package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aisle-md/aislemd/internal/usecase"
)

func newSyncCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the list from Reminders, look up aisles and print it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := requireStoreID(cfg); err != nil {
				return err
			}
			if format != "table" && format != "json" {
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}

			a, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.list.Sync(cmd.Context())
			if err != nil {
				return err
			}

			if format == "json" {
				return outputSyncJSON(cmd, result)
			}
			printReport(cmd, result.Report)
			outputTable(cmd, result.Groups)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

type reportOutput struct {
	SyncID      string            `json:"sync_id"`
	Inserted    int               `json:"inserted"`
	Deleted     int               `json:"deleted"`
	Renamed     int               `json:"renamed"`
	Queued      int               `json:"queued"`
	Enriched    int               `json:"enriched"`
	Failed      map[string]string `json:"failed,omitempty"`
	SourceError string            `json:"source_error,omitempty"`
}

func toReportOutput(report *usecase.SyncReport) reportOutput {
	out := reportOutput{
		SyncID:   report.SyncID,
		Inserted: report.Inserted,
		Deleted:  report.Deleted,
		Renamed:  report.Renamed,
		Queued:   report.Queued,
		Enriched: report.Enriched,
	}
	if len(report.Failed) > 0 {
		out.Failed = make(map[string]string, len(report.Failed))
		for _, f := range report.Failed {
			out.Failed[f.ID] = f.Code
		}
	}
	if report.SourceErr != nil {
		out.SourceError = report.SourceErr.Error()
	}
	return out
}

func outputSyncJSON(cmd *cobra.Command, result *usecase.Result) error {
	output := struct {
		Report  reportOutput      `json:"report"`
		Results []groupOutputJSON `json:"results"`
	}{
		Report:  toReportOutput(result.Report),
		Results: toGroupsOutput(result.Groups),
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func printReport(cmd *cobra.Command, report *usecase.SyncReport) {
	w := cmd.ErrOrStderr()
	if report.SourceErr != nil {
		fmt.Fprintf(w, "Reminders unavailable, showing stored list: %v\n", report.SourceErr)
		return
	}
	fmt.Fprintf(w, "Synced: %d new, %d removed, %d renamed, %d looked up, %d located",
		report.Inserted, report.Deleted, report.Renamed, report.Queued, report.Enriched)
	if n := len(report.Failed); n > 0 {
		fmt.Fprintf(w, ", %d failed", n)
	}
	fmt.Fprintln(w)
}
