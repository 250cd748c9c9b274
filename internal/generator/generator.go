// Package generator orders drill items.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/mnemo/internal/model"
)

// Generator produces randomized item orders.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Shuffle permutes items in place with a Fisher-Yates shuffle.
func (g *Generator) Shuffle(items []model.Item) {
	for i := len(items) - 1; i > 0; i-- {
		j := g.rnd.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Shuffled returns a shuffled copy of items.
func (g *Generator) Shuffled(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	copy(out, items)
	g.Shuffle(out)
	return out
}
