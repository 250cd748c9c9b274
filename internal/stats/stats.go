// Package stats contains pass metrics and text reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/verte-zerg/mnemo/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Metrics summarizes one pass.
type Metrics struct {
	// AvgRecall is the mean time in seconds over entries answered without a reveal.
	AvgRecall float64
	// HasRecall is false when every entry was revealed.
	HasRecall  bool
	RevealRate float64
	SlowRate   float64
}

// PassMetrics computes per-pass metrics from an aggregate.
func PassMetrics(p model.PassAggregate) Metrics {
	var m Metrics
	if p.UnshownCount > 0 {
		m.AvgRecall = float64(p.UnshownSumMs) / float64(p.UnshownCount) / 1000.0
		m.HasRecall = true
	}
	if p.Items > 0 {
		m.RevealRate = float64(p.Shown) / float64(p.Items)
		m.SlowRate = float64(p.Slow) / float64(p.Items)
	}
	return m
}

// PromptAvgSeconds returns the mean time per attempt of a prompt aggregate.
func PromptAvgSeconds(agg model.PromptAggregate) float64 {
	if agg.Attempts == 0 {
		return 0
	}
	return float64(agg.TimeSumMs) / float64(agg.Attempts) / 1000.0
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		n := i + 1
		if i >= window {
			sum -= values[i-window]
			n = window
		}
		out[i] = sum / float64(n)
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := minMax(values)
	if math.Abs(hi-lo) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	last := len(sparkChars) - 1
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round((v - lo) / (hi - lo) * float64(last)))
		b.WriteByte(sparkChars[clampInt(idx, 0, last)])
	}
	return b.String()
}

// RecallSeries returns the average recall time of each pass, carrying the
// previous value forward for passes where everything was revealed.
func RecallSeries(passes []model.PassAggregate) []float64 {
	out := make([]float64, len(passes))
	prev := 0.0
	for i, p := range passes {
		m := PassMetrics(p)
		if m.HasRecall {
			prev = m.AvgRecall
		}
		out[i] = prev
	}
	return out
}

// RevealSeries returns the reveal rate of each pass as a percentage.
func RevealSeries(passes []model.PassAggregate) []float64 {
	out := make([]float64, len(passes))
	for i, p := range passes {
		out[i] = PassMetrics(p).RevealRate * 100
	}
	return out
}

// Summary holds totals across passes.
type Summary struct {
	Passes     int
	Items      int
	AvgRecall  float64
	BestRecall float64
	RevealRate float64
	SlowRate   float64
}

// Summarize computes totals across passes.
func Summarize(passes []model.PassAggregate) Summary {
	s := Summary{Passes: len(passes)}
	var shown, slow, unshown int
	var unshownMs int64
	for _, p := range passes {
		s.Items += p.Items
		shown += p.Shown
		slow += p.Slow
		unshown += p.UnshownCount
		unshownMs += p.UnshownSumMs
		if m := PassMetrics(p); m.HasRecall && (s.BestRecall == 0 || m.AvgRecall < s.BestRecall) {
			s.BestRecall = m.AvgRecall
		}
	}
	if unshown > 0 {
		s.AvgRecall = float64(unshownMs) / float64(unshown) / 1000.0
	}
	if s.Items > 0 {
		s.RevealRate = float64(shown) / float64(s.Items)
		s.SlowRate = float64(slow) / float64(s.Items)
	}
	return s
}

// RenderSummary prints a summary block for passes.
func RenderSummary(w io.Writer, passes []model.PassAggregate, window int) error {
	if len(passes) == 0 {
		_, err := fmt.Fprintln(w, "No passes found.")
		return err
	}
	s := Summarize(passes)
	lines := []string{
		"Summary",
		fmt.Sprintf("Passes: %d", s.Passes),
		fmt.Sprintf("Items: %d", s.Items),
		fmt.Sprintf("Avg Recall: %.2fs", s.AvgRecall),
		fmt.Sprintf("Best Pass: %.2fs", s.BestRecall),
		fmt.Sprintf("Revealed: %.1f%%", s.RevealRate*100),
		fmt.Sprintf("Slow: %.1f%%", s.SlowRate*100),
		fmt.Sprintf("Trend: [%s]", Sparkline(MovingAverage(RecallSeries(passes), window))),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderCurves prints recall time and reveal rate curves.
func RenderCurves(w io.Writer, passes []model.PassAggregate, window int) error {
	return RenderCurvesWithSize(w, passes, window, 0, 10, false)
}

// RenderCurvesWithSize prints curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, passes []model.PassAggregate, window, totalWidth, height int, useColor bool) error {
	if len(passes) == 0 {
		return nil
	}
	width := 0
	if totalWidth > 0 {
		width = PlotWidthFor(totalWidth)
	}
	return PlotSeriesWithColor(w, "Learning Curves", []Series{
		{Name: "Recall (s)", Values: MovingAverage(RecallSeries(passes), window)},
		{Name: "Revealed (%)", Values: MovingAverage(RevealSeries(passes), window)},
	}, width, height, useColor)
}

// RenderPromptTable prints per-prompt aggregates, slowest first.
func RenderPromptTable(w io.Writer, title string, aggs []model.PromptAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No prompt stats found.")
		return err
	}
	rows := SortSlowestFirst(aggs)
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	headers := []string{"#", "Prompt", "Avg (s)", "Attempts", "Revealed", "Slow"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, PromptRow(r))
	}
	rightAlign := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// SortSlowestFirst returns a copy of aggs ordered by average time, slowest
// first, ties broken by deck index.
func SortSlowestFirst(aggs []model.PromptAggregate) []model.PromptAggregate {
	rows := append([]model.PromptAggregate(nil), aggs...)
	sort.SliceStable(rows, func(i, j int) bool {
		ai, aj := PromptAvgSeconds(rows[i]), PromptAvgSeconds(rows[j])
		if ai == aj {
			return rows[i].Index < rows[j].Index
		}
		return ai > aj
	})
	return rows
}

// PromptRow formats one aggregate as table cells.
func PromptRow(agg model.PromptAggregate) []string {
	return []string{
		fmt.Sprintf("%d", agg.Index),
		agg.Prompt,
		fmt.Sprintf("%.2f", PromptAvgSeconds(agg)),
		fmt.Sprintf("%d", agg.Attempts),
		fmt.Sprintf("%d", agg.Shown),
		fmt.Sprintf("%d", agg.Slow),
	}
}

func minMax(values []float64) (lo, hi float64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
