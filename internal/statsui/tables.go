package statsui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/autogram/internal/model"
)

func newTable(columns []table.Column) table.Model {
	t := table.New(table.WithColumns(columns), table.WithHeight(1))
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func runColumns() []table.Column {
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: "Ended", Width: 16},
		{Title: "Seed", Width: 20},
		{Title: "Iterations", Width: 12},
		{Title: "Result", Width: 10},
		{Title: "Sentence", Width: 60},
	}
}

// runRows lists runs newest first.
func runRows(runs []model.RunAggregate) []table.Row {
	rows := make([]table.Row, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		r := runs[i]
		seed := "-"
		if r.Seed != nil {
			seed = strconv.FormatUint(*r.Seed, 10)
		}
		result := "autogram"
		if !r.Converged {
			result = fmt.Sprintf("off by %d", r.Distance)
		}
		rows = append(rows, table.Row{
			strconv.FormatInt(r.RunID, 10),
			r.EndedAt.Local().Format("2006-01-02 15:04"),
			seed,
			humanize.Comma(int64(r.Iterations)),
			result,
			r.Sentence,
		})
	}
	return rows
}

func charColumns() []table.Column {
	return []table.Column{
		{Title: "Char", Width: 8},
		{Title: "Runs", Width: 6},
		{Title: "Avg", Width: 6},
		{Title: "Min", Width: 5},
		{Title: "Max", Width: 5},
		{Title: "Off", Width: 5},
	}
}

func charRows(aggs []model.CharAggregate) []table.Row {
	rows := make([]table.Row, 0, len(aggs))
	for _, agg := range aggs {
		avg := 0.0
		if agg.Runs > 0 {
			avg = float64(agg.CountSum) / float64(agg.Runs)
		}
		rows = append(rows, table.Row{
			charLabel(agg.Char),
			strconv.Itoa(agg.Runs),
			fmt.Sprintf("%.1f", avg),
			strconv.Itoa(agg.MinCount),
			strconv.Itoa(agg.MaxCount),
			strconv.Itoa(agg.Misses),
		})
	}
	return rows
}

func charLabel(ch string) string {
	if ch == " " {
		return "<space>"
	}
	return ch
}

func labels(chars []string) string {
	out := make([]string, len(chars))
	for i, ch := range chars {
		out[i] = charLabel(ch)
	}
	return strings.Join(out, " ")
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if w := lipgloss.Width(line); w < width {
			lines[i] = line + strings.Repeat(" ", width-w)
		}
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
