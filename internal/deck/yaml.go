package deck

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/mnemo/internal/model"
)

// Deck is a named, ordered list of prompt/answer pairs.
type Deck struct {
	Name        string
	Description string
	Items       []model.Item
}

type yamlDeck struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Items       []yamlItem `yaml:"items"`
}

type yamlItem struct {
	Prompt string `yaml:"prompt"`
	Answer string `yaml:"answer"`
}

// LoadYAML reads a deck file from path.
func LoadYAML(path string) (Deck, error) {
	file, err := os.Open(path)
	if err != nil {
		return Deck{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only deck.
			_ = cerr
		}
	}()
	return ParseYAML(file)
}

// ParseYAML decodes a deck document.
func ParseYAML(r io.Reader) (Deck, error) {
	var raw yamlDeck
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		return Deck{}, fmt.Errorf("failed to decode deck: %w", err)
	}
	items := make([]model.Item, 0, len(raw.Items))
	for _, it := range raw.Items {
		items = append(items, model.Item{
			Prompt: strings.TrimSpace(it.Prompt),
			Answer: strings.TrimSpace(it.Answer),
		})
	}
	items = Clean(items)
	if len(items) == 0 {
		return Deck{}, fmt.Errorf("deck %q is empty", raw.Name)
	}
	return Deck{
		Name:        strings.TrimSpace(raw.Name),
		Description: strings.TrimSpace(raw.Description),
		Items:       items,
	}, nil
}
