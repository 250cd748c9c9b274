// Package deck loads prompt/answer decks and serves contiguous ranges of them.
package deck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/verte-zerg/mnemo/internal/model"
)

// ErrUnknownCategory is returned when no deck has the requested name.
var ErrUnknownCategory = errors.New("unknown category")

// Library serves built-in decks and user decks from a directory. User decks
// shadow built-in decks with the same name.
type Library struct {
	decks map[string]Deck
}

// Summary describes a deck for listings.
type Summary struct {
	Name        string
	Description string
	Items       int
	Duplicates  int
}

// NewLibrary returns a Library over the given decks.
func NewLibrary(decks ...Deck) *Library {
	lib := &Library{decks: map[string]Deck{}}
	for _, d := range decks {
		lib.decks[d.Name] = d
	}
	return lib
}

// Open loads the built-in decks and every *.yaml, *.yml or *.tsv file in dir.
// A missing dir is not an error. Files that fail to parse are logged and skipped.
func Open(dir string, logger *slog.Logger) (*Library, error) {
	if logger == nil {
		logger = slog.Default()
	}
	builtin, err := Builtin()
	if err != nil {
		return nil, err
	}
	lib := &Library{decks: builtin}
	if dir == "" {
		return lib, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return nil, fmt.Errorf("failed to read deck directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		full := filepath.Join(dir, name)
		ext := strings.ToLower(filepath.Ext(name))
		base := strings.TrimSuffix(name, filepath.Ext(name))
		var d Deck
		switch ext {
		case ".yaml", ".yml":
			d, err = LoadYAML(full)
		case ".tsv":
			var items []model.Item
			items, err = LoadTSV(full)
			d = Deck{Items: items}
		default:
			continue
		}
		if err != nil {
			logger.Warn("skipping deck file", "path", full, "error", err)
			continue
		}
		if d.Name == "" {
			d.Name = base
		}
		if dups := DuplicatePrompts(d.Items); len(dups) > 0 {
			logger.Info("deck has duplicate prompts; replay matches by position", "deck", d.Name, "prompts", dups)
		}
		lib.decks[d.Name] = d
	}
	return lib, nil
}

// Categories lists deck summaries sorted by name.
func (l *Library) Categories() []Summary {
	out := make([]Summary, 0, len(l.decks))
	for _, d := range l.decks {
		out = append(out, Summary{
			Name:        d.Name,
			Description: d.Description,
			Items:       len(d.Items),
			Duplicates:  len(DuplicatePrompts(d.Items)),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of items in a category.
func (l *Library) Len(category string) (int, error) {
	d, ok := l.decks[category]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return len(d.Items), nil
}

// GetRange returns the inclusive range [from, to] of a category. Bounds are
// clamped and swapped as in SelectRange.
func (l *Library) GetRange(ctx context.Context, category string, from, to int) ([]model.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, ok := l.decks[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	return SelectRange(d.Items, from, to), nil
}
