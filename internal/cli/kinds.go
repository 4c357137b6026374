package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/rshade/idbatch/internal/idkind"
)

// NewKindsCmd creates the kinds command, which lists the supported identifier kinds.
func NewKindsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "kinds",
		Short: "List supported identifier kinds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			kinds := idkind.All()
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(kinds)
			}

			_, err := fmt.Fprintln(out, renderKindsTable(kinds, isWriterTerminal(out)))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

func renderKindsTable(kinds []idkind.Config, styled bool) string {
	rows := make([][]string, 0, len(kinds))
	for _, k := range kinds {
		rows = append(rows, []string{
			string(k.Kind), k.ColumnName, strconv.Itoa(k.PadWidth), k.SQLField, k.OutputFileName(),
		})
	}

	headerStyle := lipgloss.NewStyle().Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	if styled {
		headerStyle = headerStyle.Bold(true).Foreground(lipgloss.Color("33"))
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("KIND", "COLUMN", "WIDTH", "SQL FIELD", "OUTPUT FILE").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}
