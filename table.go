package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// indexHeader marks a row-number column, rendered right aligned.
const indexHeader = "#"

// renderTable draws rows under headers in the rounded style. Header text is
// printed as given.
func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	tw.AppendHeader(tableRow(headers))
	for _, r := range rows {
		tw.AppendRow(tableRow(r))
	}
	for i, h := range headers {
		if h == indexHeader {
			tw.SetColumnConfigs([]table.ColumnConfig{{Number: i + 1, Align: text.AlignRight}})
			break
		}
	}
	return tw.Render()
}

func tableRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
