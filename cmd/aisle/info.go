package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aisle-md/aislemd/internal/database"
)

func newInfoCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "info <id>",
		Short: "Show the stored record for one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			a, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.list.Item(cmd.Context(), id)
			if err != nil {
				if errors.Is(err, database.ErrNotFound) {
					return fmt.Errorf("item not found: %s", id)
				}
				return err
			}

			switch format {
			case "json":
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(toItemOutput(*rec))
			case "table":
				outputInfoTable(cmd, rec)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

func orNone(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func outputInfoTable(cmd *cobra.Command, rec *database.ItemRecord) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "ID:         %s\n", rec.ID)
	fmt.Fprintf(w, "Name:       %s\n", rec.Name)
	fmt.Fprintf(w, "Aisle:      %s\n", orNone(rec.Aisle))
	fmt.Fprintf(w, "Image:      %s\n", orNone(rec.Image))
	fmt.Fprintf(w, "Error:      %s\n", orNone(rec.Error))
	fmt.Fprintf(w, "Created At: %s\n", rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Updated At: %s\n", rec.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
}
