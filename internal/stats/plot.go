package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series is a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight = 8
	minPlotWidth      = 10
	fallbackWidth     = 80
	axisSeparator     = " │ "
	colorReset        = "\x1b[0m"
	brailleBase       = 0x2800
)

var palette = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m"}

// Dot bits of a braille cell, indexed [row][column].
var brailleBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// canvas is a grid of braille cells, two dots wide and four dots tall each.
type canvas struct {
	width, height int
	cells         []uint8
	owner         []int
}

func newCanvas(width, height int) *canvas {
	c := &canvas{width: width, height: height, cells: make([]uint8, width*height), owner: make([]int, width*height)}
	for i := range c.owner {
		c.owner[i] = -1
	}
	return c
}

func (c *canvas) set(x, y, series int) {
	cx, cy := x/2, y/4
	if x < 0 || y < 0 || cx >= c.width || cy >= c.height {
		return
	}
	i := cy*c.width + cx
	c.cells[i] |= brailleBits[y%4][x%2]
	if c.owner[i] < 0 {
		c.owner[i] = series
	}
}

// line draws from (x0,y0) to (x1,y1) in dot coordinates.
func (c *canvas) line(x0, y0, x1, y1, series int) {
	steps := max(abs(x1-x0), abs(y1-y0))
	if steps == 0 {
		c.set(x0, y0, series)
		return
	}
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		x := int(math.Round(float64(x0) + t*float64(x1-x0)))
		y := int(math.Round(float64(y0) + t*float64(y1-y0)))
		c.set(x, y, series)
	}
}

func (c *canvas) row(y int, useColor bool) string {
	var b strings.Builder
	for x := 0; x < c.width; x++ {
		i := y*c.width + x
		ch := rune(brailleBase + int(c.cells[i]))
		if useColor && c.owner[i] >= 0 {
			b.WriteString(palette[c.owner[i]%len(palette)])
			b.WriteRune(ch)
			b.WriteString(colorReset)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// PlotSeries renders a braille line plot. Each series is scaled to its own range. A width of
// zero fits the terminal.
func PlotSeries(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	var kept []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if width <= 0 {
		width = PlotWidthFor(TerminalWidth())
	}
	width = max(width, minPlotWidth)
	if height <= 0 {
		height = defaultPlotHeight
	}

	c := newCanvas(width, height)
	dotsX, dotsY := width*2, height*4
	var legend []string
	for si, s := range kept {
		values := resample(s.Values, dotsX)
		lo, hi := bounds(values)
		prevX, prevY := -1, -1
		for x, v := range values {
			y := int(math.Round((1 - (v-lo)/(hi-lo)) * float64(dotsY-1)))
			if prevX >= 0 {
				c.line(prevX, prevY, x, y, si)
			} else {
				c.set(x, y, si)
			}
			prevX, prevY = x, y
		}
		legend = append(legend, fmt.Sprintf("%s %.0f..%.0f", s.Name, lo, hi))
	}

	useColor := shouldUseColor(w, forceColor)
	lines := []string{}
	if title != "" {
		lines = append(lines, title)
	}
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = "max"
		case height - 1:
			label = "min"
		}
		lines = append(lines, fmt.Sprintf("%3s%s%s", label, axisSeparator, c.row(y, useColor)))
	}
	lines = append(lines, "Legend: "+strings.Join(legend, "  "), "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	axis := 3 + utf8.RuneCountInString(axisSeparator)
	return max(minPlotWidth, totalWidth-axis)
}

// TerminalWidth returns the width of stdout, or a fallback when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackWidth
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// resample stretches or averages values to exactly n points.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	if len(values) == 1 || n == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	if len(values) > n {
		for i := range out {
			start := i * len(values) / n
			end := max(start+1, (i+1)*len(values)/n)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
		return out
	}
	for i := range out {
		pos := float64(i) * float64(len(values)-1) / float64(n-1)
		idx := min(int(pos), len(values)-2)
		frac := pos - float64(idx)
		out[i] = values[idx]*(1-frac) + values[idx+1]*frac
	}
	return out
}

func bounds(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < 1e-9 {
		lo--
		hi++
	}
	return lo, hi
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
