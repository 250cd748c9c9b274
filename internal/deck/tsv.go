package deck

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/verte-zerg/mnemo/internal/model"
)

// LoadTSV reads one "prompt<TAB>answer" pair per line from the provided file path.
func LoadTSV(path string) ([]model.Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only deck.
			_ = cerr
		}
	}()
	return ParseTSV(file)
}

// ParseTSV reads tab-separated pairs. Blank lines and lines starting with '#'
// are skipped.
func ParseTSV(r io.Reader) ([]model.Item, error) {
	var items []model.Item
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		prompt, answer, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: expected prompt and answer separated by a tab", lineNo)
		}
		items = append(items, model.Item{
			Prompt: strings.TrimSpace(prompt),
			Answer: strings.TrimSpace(answer),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	items = Clean(items)
	if len(items) == 0 {
		return nil, fmt.Errorf("deck is empty")
	}
	return items, nil
}
