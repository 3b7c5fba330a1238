package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aisle-md/aislemd/internal/database"
	"github.com/aisle-md/aislemd/internal/services"
)

func newListCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the stored list grouped by aisle without syncing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.list.List(cmd.Context())
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return outputJSON(cmd, result.Groups)
			case "table":
				outputTable(cmd, result.Groups)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

type itemOutputJSON struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Aisle     *string `json:"aisle"`
	Image     *string `json:"image"`
	Error     *string `json:"error"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

type groupOutputJSON struct {
	Aisle string           `json:"aisle"`
	Items []itemOutputJSON `json:"items"`
}

func toItemOutput(rec database.ItemRecord) itemOutputJSON {
	return itemOutputJSON{
		ID:        rec.ID,
		Name:      rec.Name,
		Aisle:     rec.Aisle,
		Image:     rec.Image,
		Error:     rec.Error,
		CreatedAt: rec.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: rec.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toGroupsOutput(groups []services.Group) []groupOutputJSON {
	output := make([]groupOutputJSON, 0, len(groups))
	for _, g := range groups {
		items := make([]itemOutputJSON, 0, len(g.Items))
		for _, it := range g.Items {
			items = append(items, toItemOutput(it))
		}
		output = append(output, groupOutputJSON{Aisle: g.Aisle, Items: items})
	}
	return output
}

func outputJSON(cmd *cobra.Command, groups []services.Group) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		Results []groupOutputJSON `json:"results"`
	}{Results: toGroupsOutput(groups)})
}

func getTerminalWidth() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// columnWidths holds the calculated widths for the variable columns
type columnWidths struct {
	aisle        int
	id           int
	name         int
	useShortDate bool
}

const (
	statusWidth    = 7  // "unknown"
	fullDateWidth  = 19 // "2006-01-02 15:04:05"
	shortDateWidth = 11 // "01-02 15:04"
)

// calculateColumnWidths gives Aisle and ID the width their data needs and
// hands the rest of the terminal to Name.
func calculateColumnWidths(termWidth int, groups []services.Group) columnWidths {
	// Five columns, roughly 3 chars of border and padding each
	available := termWidth - 5*3

	aisleWidth := 5
	idWidth := 2
	for _, g := range groups {
		aisleWidth = max(aisleWidth, runewidth.StringWidth(g.Aisle))
		for _, it := range g.Items {
			idWidth = max(idWidth, runewidth.StringWidth(it.ID))
		}
	}
	aisleWidth = min(aisleWidth, 30)
	idWidth = min(idWidth, 40)

	nameWidth := available - aisleWidth - idWidth - statusWidth - fullDateWidth
	useShortDate := false
	if nameWidth < 20 {
		useShortDate = true
		nameWidth = available - aisleWidth - idWidth - statusWidth - shortDateWidth
	}
	if nameWidth < 15 {
		nameWidth = 15
	}

	return columnWidths{
		aisle:        aisleWidth,
		id:           idWidth,
		name:         nameWidth,
		useShortDate: useShortDate,
	}
}

func itemStatus(rec database.ItemRecord) string {
	if rec.Error != nil {
		return *rec.Error
	}
	if rec.Aisle == nil {
		return "pending"
	}
	return "ok"
}

func outputTable(cmd *cobra.Command, groups []services.Group) {
	if len(groups) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Shopping list is empty")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)

	widths := calculateColumnWidths(getTerminalWidth(), groups)

	// Content is truncated with runewidth before it reaches the table;
	// go-pretty's WidthMax miscounts wide characters.
	t.AppendHeader(table.Row{"Aisle", "ID", "Name", "Status", "Updated"})

	for _, g := range groups {
		aisle := runewidth.Truncate(g.Aisle, widths.aisle, "...")
		for i, it := range g.Items {
			label := ""
			if i == 0 {
				label = aisle
			}

			updated := it.UpdatedAt.Local().Format("2006-01-02 15:04:05")
			if widths.useShortDate {
				updated = it.UpdatedAt.Local().Format("01-02 15:04")
			}

			t.AppendRow(table.Row{
				label,
				runewidth.Truncate(it.ID, widths.id, "..."),
				runewidth.Truncate(strings.TrimSpace(it.Name), widths.name, "..."),
				itemStatus(it),
				updated,
			})
		}
		t.AppendSeparator()
	}

	t.Render()
}
