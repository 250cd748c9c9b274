package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series is a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight = 10
	minPlotWidth      = 10
	fallbackWidth     = 80
	axisTop           = "max"
	axisBottom        = "min"
	axisSeparator     = " │ "
	colorReset        = "\x1b[0m"
)

var seriesColors = []string{
	"\x1b[36m", // cyan
	"\x1b[35m", // magenta
	"\x1b[33m", // yellow
	"\x1b[32m", // green
}

// Braille cells are 2 dots wide and 4 dots tall. dotBits[y][x] is the bit for
// the dot in column x, row y.
var dotBits = [4][2]uint8{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// canvas is a grid of braille cells with one owner series per cell.
type canvas struct {
	width, height int
	masks         [][]uint8
	owner         [][]int
}

func newCanvas(width, height int) *canvas {
	c := &canvas{width: width, height: height}
	c.masks = make([][]uint8, height)
	c.owner = make([][]int, height)
	for y := range c.masks {
		c.masks[y] = make([]uint8, width)
		c.owner[y] = make([]int, width)
		for x := range c.owner[y] {
			c.owner[y][x] = -1
		}
	}
	return c
}

func (c *canvas) set(dx, dy, series int) {
	cx, cy := dx/2, dy/4
	if dx < 0 || dy < 0 || cx >= c.width || cy >= c.height {
		return
	}
	c.masks[cy][cx] |= dotBits[dy%4][dx%2]
	if c.owner[cy][cx] < 0 {
		c.owner[cy][cx] = series
	}
}

// line draws between two dot coordinates by sampling along the longer axis.
func (c *canvas) line(x0, y0, x1, y1, series int) {
	steps := maxAbs(x1-x0, y1-y0)
	if steps == 0 {
		c.set(x0, y0, series)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(math.Round(float64(x0) + t*float64(x1-x0)))
		y := int(math.Round(float64(y0) + t*float64(y1-y0)))
		c.set(x, y, series)
	}
}

func (c *canvas) row(y int, color bool) string {
	var b strings.Builder
	for x := 0; x < c.width; x++ {
		ch := rune(0x2800 + int(c.masks[y][x]))
		if color && c.owner[y][x] >= 0 {
			b.WriteString(seriesColors[c.owner[y][x]%len(seriesColors)])
			b.WriteRune(ch)
			b.WriteString(colorReset)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// PlotSeries renders a text plot. Each series is scaled to its own range.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return PlotSeriesWithColor(w, title, series, width, height, false)
}

// PlotSeriesWithColor renders a text plot, forcing color when forceColor is set.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, forceColor bool) error {
	var plotted []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			plotted = append(plotted, s)
		}
	}
	if len(plotted) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(TerminalWidth())
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	c := newCanvas(width, height)
	dotsX, dotsY := width*2, height*4
	lines := []string{}
	if title != "" {
		lines = append(lines, title)
	}
	for si, s := range plotted {
		values := resample(s.Values, width)
		lo, hi := minMax(values)
		lines = append(lines, fmt.Sprintf("%s: min=%.2f max=%.2f", s.Name, lo, hi))
		if hi-lo < 1e-9 {
			lo, hi = lo-1, hi+1
		}
		prevX, prevY := -1, -1
		for i, v := range values {
			x := i * 2
			if dotsX > 1 && len(values) > 1 {
				x = int(math.Round(float64(i) * float64(dotsX-1) / float64(len(values)-1)))
			}
			y := int(math.Round((hi - v) / (hi - lo) * float64(dotsY-1)))
			if prevX >= 0 {
				c.line(prevX, prevY, x, y, si)
			} else {
				c.set(x, y, si)
			}
			prevX, prevY = x, y
		}
	}

	color := shouldUseColor(w, forceColor)
	labelWidth := runewidth.StringWidth(axisTop)
	for y := 0; y < height; y++ {
		label := ""
		switch y {
		case 0:
			label = axisTop
		case height - 1:
			label = axisBottom
		}
		lines = append(lines, runewidth.FillLeft(label, labelWidth)+axisSeparator+c.row(y, color))
	}
	lines = append(lines, legend(plotted, color), "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func legend(series []Series, color bool) string {
	parts := make([]string, len(series))
	for i, s := range series {
		label := "⣿ " + s.Name
		if color {
			label = seriesColors[i%len(seriesColors)] + label + colorReset
		}
		parts[i] = label
	}
	return "Legend: " + strings.Join(parts, "  ")
}

// resample bucket-averages values down to at most n points.
func resample(values []float64, n int) []float64 {
	if len(values) <= n {
		return append([]float64(nil), values...)
	}
	out := make([]float64, n)
	for i := range out {
		start := i * len(values) / n
		end := (i + 1) * len(values) / n
		if end <= start {
			end = start + 1
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	width := totalWidth - runewidth.StringWidth(axisTop) - runewidth.StringWidth(axisSeparator)
	if width < minPlotWidth {
		return minPlotWidth
	}
	return width
}

// TerminalWidth reports the width of stdout, or a fallback when it is not a terminal.
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
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func maxAbs(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}
