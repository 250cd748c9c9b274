package deck

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// Builtin returns the decks shipped with the binary, keyed by name.
func Builtin() (map[string]Deck, error) {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, fmt.Errorf("failed to read builtin decks: %w", err)
	}
	decks := make(map[string]Deck, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		file, err := builtinFS.Open(path.Join("builtin", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to open builtin deck %s: %w", entry.Name(), err)
		}
		d, err := ParseYAML(file)
		_ = file.Close()
		if err != nil {
			return nil, fmt.Errorf("builtin deck %s: %w", entry.Name(), err)
		}
		if d.Name == "" {
			d.Name = strings.TrimSuffix(entry.Name(), ".yaml")
		}
		decks[d.Name] = d
	}
	return decks, nil
}
