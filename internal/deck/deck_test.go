package deck

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mnemo/internal/model"
)

func numbered(n int) []model.Item {
	items := make([]model.Item, n)
	for i := range items {
		items[i] = model.Item{Index: i, Prompt: string(rune('a' + i)), Answer: "x"}
	}
	return items
}

func TestSelectRangeLength(t *testing.T) {
	items := numbered(10)
	for from := 0; from < 10; from++ {
		for to := from; to < 10; to++ {
			got := SelectRange(items, from, to)
			require.Len(t, got, to-from+1)
			assert.Equal(t, from, got[0].Index)
			assert.Equal(t, to, got[len(got)-1].Index)
		}
	}
}

func TestSelectRangeClampsAndSwaps(t *testing.T) {
	items := numbered(5)

	got := SelectRange(items, -3, 99)
	require.Len(t, got, 5)

	got = SelectRange(items, 3, 1)
	require.Len(t, got, 3)
	assert.Equal(t, 1, got[0].Index)

	got = SelectRange(items, 7, 8)
	require.Len(t, got, 1)
	assert.Equal(t, 4, got[0].Index)

	assert.Empty(t, SelectRange(nil, 0, 3))
}

func TestSelectRangeReturnsCopy(t *testing.T) {
	items := numbered(3)
	got := SelectRange(items, 0, 2)
	got[0].Prompt = "changed"
	assert.Equal(t, "a", items[0].Prompt)
}

func TestParseTSV(t *testing.T) {
	src := "# comment\n0\thero\n\n1\tbun\n"
	items, err := ParseTSV(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, model.Item{Index: 1, Prompt: "1", Answer: "bun"}, items[1])

	_, err = ParseTSV(strings.NewReader("no tab here\n"))
	require.Error(t, err)

	_, err = ParseTSV(strings.NewReader("\n# only comments\n"))
	require.Error(t, err)
}

func TestBuiltinDecks(t *testing.T) {
	decks, err := Builtin()
	require.NoError(t, err)
	pegs, ok := decks["pegs"]
	require.True(t, ok)
	require.Len(t, pegs.Items, 10)
	assert.Equal(t, "hero", pegs.Items[0].Answer)
	nato, ok := decks["nato"]
	require.True(t, ok)
	assert.Len(t, nato.Items, 26)
	assert.Equal(t, "X-ray", nato.Items[23].Answer)
}

func TestOpenLoadsUserDecks(t *testing.T) {
	dir := t.TempDir()
	yamlDeck := "name: capitals\nitems:\n  - {prompt: France, answer: Paris}\n  - {prompt: Peru, answer: Lima}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "capitals.yaml"), []byte(yamlDeck), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "major.tsv"), []byte("00\tsauce\n01\tsuit\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("items: ["), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lib, err := Open(dir, logger)
	require.NoError(t, err)

	names := make([]string, 0)
	for _, s := range lib.Categories() {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"capitals", "major", "nato", "pegs"}, names)

	items, err := lib.GetRange(context.Background(), "major", 1, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "suit", items[0].Answer)
	assert.Equal(t, 1, items[0].Index)

	_, err = lib.GetRange(context.Background(), "missing", 0, 1)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestOpenMissingDir(t *testing.T) {
	lib, err := Open(filepath.Join(t.TempDir(), "nope"), nil)
	require.NoError(t, err)
	n, err := lib.Len("pegs")
	require.NoError(t, err)
	assert.Equal(t, 10, n)
}
