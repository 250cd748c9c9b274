package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mnemo/internal/config"
	"github.com/verte-zerg/mnemo/internal/deck"
	"github.com/verte-zerg/mnemo/internal/model"
	"github.com/verte-zerg/mnemo/internal/store"
)

func TestDrillConfigFlagsOverrideFile(t *testing.T) {
	cmd := newRootCmd()
	require.NoError(t, cmd.Flags().Set("to", "4"))

	category := "nato"
	to := 20
	budget := 2.5
	learning := true
	onActive := "caffeinate -d"
	cfg := drillConfigFrom(cmd, config.FileConfig{
		Drill: config.DrillFileConfig{
			Category:      &category,
			To:            &to,
			BudgetSeconds: &budget,
			Learning:      &learning,
		},
		Hooks: config.HooksConfig{OnActive: &onActive},
	})

	assert.Equal(t, "nato", cfg.Category)
	assert.Equal(t, defaultFrom, cfg.From)
	assert.Equal(t, 4, cfg.To, "flag wins over file")
	assert.Equal(t, 2500*time.Millisecond, cfg.Budget)
	assert.True(t, cfg.Learning)
	assert.False(t, cfg.Vibrate)
	assert.Equal(t, "caffeinate -d", cfg.OnActive)
	assert.Empty(t, cfg.OnIdle)
	assert.NoError(t, config.ValidateDrill(cfg))
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, ensureConfigFile(path))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Nil(t, cfg.Drill.Category, "template values are commented out")

	lines := strings.Split(defaultConfigTemplate(), "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "# ") && strings.Contains(line, " = ") {
			lines[i] = strings.TrimPrefix(line, "# ")
		}
	}
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644))
	cfg, err = config.LoadConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg.Drill.Category)
	assert.Equal(t, defaultCategory, *cfg.Drill.Category)
	require.NotNil(t, cfg.Drill.BudgetSeconds)
	assert.Equal(t, defaultBudget, *cfg.Drill.BudgetSeconds)
	require.NotNil(t, cfg.Log.Level)
	assert.Equal(t, "info", *cfg.Log.Level)
}

func TestEnsureConfigFileKeepsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[drill]\n"), 0o644))

	require.NoError(t, ensureConfigFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[drill]\n", string(data))
}

func TestWriteDecks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDecks(&buf, []deck.Summary{
		{Name: "nato", Items: 26, Description: "NATO alphabet"},
		{Name: "mine", Items: 3, Duplicates: 1},
	}, "/tmp/decks"))
	out := buf.String()
	assert.Contains(t, out, "nato            26 items  NATO alphabet")
	assert.Contains(t, out, "(1 duplicate prompts)")

	buf.Reset()
	require.NoError(t, writeDecks(&buf, nil, "/tmp/decks"))
	assert.Contains(t, buf.String(), "/tmp/decks")
}

func TestStatsConfigFromFlags(t *testing.T) {
	newStatsCmd()
	statsSince = "2026-02-30x"
	_, err := statsConfigFromFlags()
	assert.Error(t, err)

	statsSince = "2026-03-01"
	statsLast = 5
	cfg, err := statsConfigFromFlags()
	require.NoError(t, err)
	require.NotNil(t, cfg.Since)
	assert.Equal(t, 5, cfg.Last)
	assert.Equal(t, defaultCurveWindow, cfg.CurveWindow)

	statsCurveWindow = 0
	_, err = statsConfigFromFlags()
	assert.Error(t, err)
}

func TestWritePlainReport(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "mnemo.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, writePlainReport(ctx, &buf, st, model.StatsConfig{CurveWindow: 5}))
	assert.Contains(t, buf.String(), "No passes found.")

	_, err = st.InsertPass(ctx, model.PassRecord{
		StartedAt: time.Unix(0, 0),
		EndedAt:   time.Unix(60, 0),
		Category:  "pegs",
		To:        1,
		BudgetMs:  5000,
		Entries: []model.ResultEntry{
			{Item: model.Item{Index: 0, Prompt: "0", Answer: "hose"}, TimeSpent: time.Second},
			{Item: model.Item{Index: 1, Prompt: "1", Answer: "tie"}, TimeSpent: 4 * time.Second},
		},
	})
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, writePlainReport(ctx, &buf, st, model.StatsConfig{CurveWindow: 5}))
	out := buf.String()
	for _, want := range []string{"Passes: 1", "Learning Curves", "To review (last 1 passes)", "Most drilled"} {
		assert.Contains(t, out, want)
	}
}
