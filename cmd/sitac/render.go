package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"

	"github.com/entrhq/sitac/pkg/browser"
	"github.com/entrhq/sitac/pkg/spreadsheet"
)

var (
	salmonPink = lipgloss.Color("#FFB3BA")
	mutedGray  = lipgloss.Color("#6B7280")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(salmonPink).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(mutedGray)
	footerStyle = lipgloss.NewStyle().Foreground(mutedGray).Italic(true)
)

// renderTable draws up to maxRows rows of t. maxRows <= 0 draws all.
func renderTable(t browser.Table, maxRows int) string {
	if len(t.Columns) == 0 {
		return footerStyle.Render("(no rows)")
	}

	records := t.Records()[1:]
	hidden := 0
	if maxRows > 0 && len(records) > maxRows {
		hidden = len(records) - maxRows
		records = records[:maxRows]
	}

	out := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(t.Columns...).
		Rows(records...).
		Render()

	if hidden > 0 {
		out += "\n" + footerStyle.Render(fmt.Sprintf("… %d more rows", hidden))
	}
	return out
}

// toTSV renders t with a header line. Tabs and newlines inside cells become
// spaces so each record stays on one line.
func toTSV(t browser.Table) string {
	clean := strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")
	var sb strings.Builder
	for _, rec := range t.Records() {
		for i, cell := range rec {
			if i > 0 {
				sb.WriteByte('\t')
			}
			sb.WriteString(clean.Replace(cell))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func toSheet(t browser.Table) spreadsheet.Sheet {
	return spreadsheet.NewSheet(t.Columns, t.Maps())
}
