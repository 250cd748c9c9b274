package results

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mnemo/internal/model"
)

func item(i int) model.Item {
	return model.Item{Index: i, Prompt: string(rune('0' + i)), Answer: "x"}
}

func TestRecorderSummaries(t *testing.T) {
	r := New()
	r.Record(item(0), 500*time.Millisecond, false)
	r.Record(item(1), 3200*time.Millisecond, false)
	r.Record(item(2), 1*time.Second, true)
	r.Record(item(3), 2*time.Second, false)

	assert.Equal(t, 4, r.Len())
	assert.Equal(t, 1, r.ShownCount())
	// Exactly 2s is not slow.
	assert.Equal(t, 2, r.SlowOrShownCount())

	avg, ok := r.AverageTime()
	require.True(t, ok)
	assert.Equal(t, (500*time.Millisecond+3200*time.Millisecond+2*time.Second)/3, avg)
}

func TestRecorderFloorsTimeSpent(t *testing.T) {
	r := New()
	entry := r.Record(item(0), 0, false)
	assert.Equal(t, model.MinTimeSpent, entry.TimeSpent)
	assert.InDelta(t, 0.1, entry.Seconds(), 1e-9)
}

func TestRecorderAverageWithoutUnrevealed(t *testing.T) {
	r := New()
	_, ok := r.AverageTime()
	assert.False(t, ok)

	r.Record(item(0), time.Second, true)
	_, ok = r.AverageTime()
	assert.False(t, ok)
}

func TestRecorderEntriesIsACopy(t *testing.T) {
	r := New()
	r.Record(item(0), time.Second, false)
	entries := r.Entries()
	entries[0].Shown = true
	assert.Equal(t, 0, r.ShownCount())

	r.Reset()
	assert.Equal(t, 0, r.Len())
}
