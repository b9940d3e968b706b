package stats

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// newTable returns a borderless table writer. Columns listed in rightAlignCols are right aligned.
func newTable(w io.Writer, headers []string, rightAlignCols map[int]bool) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetTablePadding(" ")
	alignment := make([]int, len(headers))
	for i := range alignment {
		alignment[i] = tablewriter.ALIGN_LEFT
		if rightAlignCols[i] {
			alignment[i] = tablewriter.ALIGN_RIGHT
		}
	}
	table.SetColumnAlignment(alignment)
	return table
}

// charLabel makes whitespace visible in tables.
func charLabel(ch string) string {
	switch ch {
	case " ":
		return "<space>"
	case "\t":
		return "<tab>"
	default:
		return ch
	}
}
