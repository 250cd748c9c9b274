package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapText breaks text into lines no wider than width display cells. Lines
// break at the last space that fits; a word longer than width is split.
func wrapText(text string, width int) []string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return []string{text}
	}
	var lines []string
	var line []rune
	lineWidth := 0
	lastSpace := -1
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if lineWidth+rw > width && len(line) > 0 {
			if r == ' ' {
				lines = append(lines, string(line))
				line, lineWidth, lastSpace = nil, 0, -1
				continue
			}
			if lastSpace >= 0 {
				lines = append(lines, string(line[:lastSpace]))
				line = append([]rune(nil), line[lastSpace+1:]...)
			} else {
				lines = append(lines, string(line))
				line = nil
			}
			lineWidth = runewidth.StringWidth(string(line))
			lastSpace = lastIndexRune(line, ' ')
		}
		line = append(line, r)
		lineWidth += rw
		if r == ' ' {
			lastSpace = len(line) - 1
		}
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return lines
}

func lastIndexRune(runes []rune, target rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == target {
			return i
		}
	}
	return -1
}

// truncate shortens s to width cells with a trailing ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
