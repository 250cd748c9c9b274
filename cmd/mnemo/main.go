// Package main provides the CLI entrypoint for mnemo.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/mnemo/internal/config"
	"github.com/verte-zerg/mnemo/internal/deck"
	"github.com/verte-zerg/mnemo/internal/device"
	"github.com/verte-zerg/mnemo/internal/generator"
	"github.com/verte-zerg/mnemo/internal/logging"
	"github.com/verte-zerg/mnemo/internal/model"
	"github.com/verte-zerg/mnemo/internal/session"
	"github.com/verte-zerg/mnemo/internal/stats"
	"github.com/verte-zerg/mnemo/internal/statsui"
	"github.com/verte-zerg/mnemo/internal/store"
	"github.com/verte-zerg/mnemo/internal/tui"
)

const (
	defaultCategory    = "pegs"
	defaultFrom        = 0
	defaultTo          = 9
	defaultBudget      = 5.0
	defaultCurveWindow = 10
	defaultReportTop   = 10
)

var (
	drillCategory string
	drillFrom     int
	drillTo       int
	drillBudget   float64
	drillLearning bool
	drillVibrate  bool

	statsCategory    string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mnemo",
		Short:         "Timed recall drills for memory pegs and flashcards",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDrillCmd,
	}

	rootCmd.Flags().StringVar(&drillCategory, "category", defaultCategory, "deck to drill")
	rootCmd.Flags().IntVar(&drillFrom, "from", defaultFrom, "first item index (inclusive)")
	rootCmd.Flags().IntVar(&drillTo, "to", defaultTo, "last item index (inclusive)")
	rootCmd.Flags().Float64Var(&drillBudget, "budget", defaultBudget, "seconds per item")
	rootCmd.Flags().BoolVar(&drillLearning, "learning", false, "show answers and cycle items in order")
	rootCmd.Flags().BoolVar(&drillVibrate, "vibrate", false, "ring the terminal bell on timeout and reveal")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newDecksCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

// loadSettings reads the env overlay and the config file.
func loadSettings() (config.FileConfig, config.Paths, error) {
	if err := config.LoadEnv(config.DefaultEnvPath()); err != nil {
		return config.FileConfig{}, config.Paths{}, err
	}
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, config.Paths{}, fmt.Errorf("failed to load config: %w", err)
	}
	return fileCfg, config.ResolvePaths(fileCfg), nil
}

// openLogger sends structured logs to the log file, since the TUI owns the terminal.
func openLogger(paths config.Paths) (*slog.Logger, func(), error) {
	f, err := logging.OpenFile(paths.LogPath)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.Setup(paths.LogLevel, f)
	return logger, func() {
		if cerr := f.Close(); cerr != nil {
			logErrf("failed to close log file: %v\n", cerr)
		}
	}, nil
}

func drillConfigFrom(cmd *cobra.Command, fileCfg config.FileConfig) model.DrillConfig {
	applyStringConfig(cmd, "category", &drillCategory, fileCfg.Drill.Category)
	applyIntConfig(cmd, "from", &drillFrom, fileCfg.Drill.From)
	applyIntConfig(cmd, "to", &drillTo, fileCfg.Drill.To)
	applyFloatConfig(cmd, "budget", &drillBudget, fileCfg.Drill.BudgetSeconds)
	applyBoolConfig(cmd, "learning", &drillLearning, fileCfg.Drill.Learning)
	applyBoolConfig(cmd, "vibrate", &drillVibrate, fileCfg.Drill.Vibrate)

	cfg := model.DrillConfig{
		Category: strings.TrimSpace(drillCategory),
		From:     drillFrom,
		To:       drillTo,
		Budget:   time.Duration(drillBudget * float64(time.Second)),
		Learning: drillLearning,
		Vibrate:  drillVibrate,
	}
	if fileCfg.Hooks.OnActive != nil {
		cfg.OnActive = *fileCfg.Hooks.OnActive
	}
	if fileCfg.Hooks.OnIdle != nil {
		cfg.OnIdle = *fileCfg.Hooks.OnIdle
	}
	return cfg
}

func runDrillCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, paths, err := loadSettings()
	if err != nil {
		return err
	}
	cfg := drillConfigFrom(cmd, fileCfg)
	if err := config.ValidateDrill(cfg); err != nil {
		return err
	}

	logger, closeLog, err := openLogger(paths)
	if err != nil {
		return err
	}
	defer closeLog()

	lib, err := deck.Open(paths.DecksDir, logger)
	if err != nil {
		return fmt.Errorf("failed to load decks: %w", err)
	}
	deckLen, err := lib.Len(cfg.Category)
	if err != nil {
		if errors.Is(err, deck.ErrUnknownCategory) {
			return fmt.Errorf("%w\nRun: mnemo decks", err)
		}
		return err
	}

	st, err := store.Open(paths.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	sess := session.New(lib, generator.New(), session.Options{Logger: logger})
	if err := sess.Configure(session.Settings{
		Category: cfg.Category,
		From:     cfg.From,
		To:       cfg.To,
		Budget:   cfg.Budget,
		Learning: cfg.Learning,
	}); err != nil {
		return fmt.Errorf("failed to configure session: %w", err)
	}

	hooks := []device.Hook{device.NewCommandHook(cfg.OnActive, cfg.OnIdle, logger)}
	if cfg.Vibrate {
		hooks = append(hooks, device.NewBell(os.Stderr))
	}
	defer sess.Subscribe(device.Listener(logger, hooks...))()

	bridge := tui.NewBridge()
	defer sess.Subscribe(bridge.Listen)()

	drill := tui.NewModel(tui.Options{
		Session: sess,
		Bridge:  bridge,
		Store:   st,
		DeckLen: deckLen,
		Logger:  logger,
	})
	program := tea.NewProgram(drill, tea.WithAltScreen())
	bridge.Attach(program.Send)
	logger.Info("drill started", "category", cfg.Category, "from", cfg.From, "to", cfg.To, "budget", cfg.Budget.String())
	_, runErr := program.Run()
	// Releases the timer and the idle hook when the program exits mid-pass.
	_ = sess.Stop()
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := ensureConfigFile(path); err != nil {
		return err
	}
	editor := strings.Fields(os.Getenv("EDITOR"))
	if len(editor) == 0 {
		editor = []string{"vi"}
	}
	cmd := exec.Command(editor[0], append(editor[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

// ensureConfigFile writes the commented template unless a config already exists.
func ensureConfigFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func newDecksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decks",
		Short: "List available decks",
		Args:  cobra.NoArgs,
		RunE:  runDecksCmd,
	}
}

func runDecksCmd(cmd *cobra.Command, _ []string) error {
	_, paths, err := loadSettings()
	if err != nil {
		return err
	}
	lib, err := deck.Open(paths.DecksDir, logging.Discard())
	if err != nil {
		return fmt.Errorf("failed to load decks: %w", err)
	}
	return writeDecks(cmd.OutOrStdout(), lib.Categories(), paths.DecksDir)
}

func writeDecks(w io.Writer, decks []deck.Summary, dir string) error {
	if len(decks) == 0 {
		_, err := fmt.Fprintf(w, "No decks found. Add *.yaml or *.tsv files to %s\n", dir)
		return err
	}
	for _, d := range decks {
		line := fmt.Sprintf("%-12s %5d items", d.Name, d.Items)
		if d.Description != "" {
			line += "  " + d.Description
		}
		if d.Duplicates > 0 {
			line += fmt.Sprintf("  (%d duplicate prompts)", d.Duplicates)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show pass history",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsCategory, "category", "", "deck filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N passes")
	cmd.Flags().IntVar(&statsCurveWindow, "window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func statsConfigFromFlags() (model.StatsConfig, error) {
	var since *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		since = &parsed
	}
	if statsLast < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if statsCurveWindow < 1 {
		return model.StatsConfig{}, fmt.Errorf("--window must be >= 1")
	}
	return model.StatsConfig{
		Category:    statsCategory,
		Since:       since,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}, nil
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := statsConfigFromFlags()
	if err != nil {
		return err
	}
	_, paths, err := loadSettings()
	if err != nil {
		return err
	}
	st, err := store.Open(paths.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		return writePlainReport(cmd.Context(), cmd.OutOrStdout(), st, cfg)
	}
	program := tea.NewProgram(statsui.NewModel(st, cfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func writePlainReport(ctx context.Context, w io.Writer, src stats.Source, cfg model.StatsConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	report, err := stats.BuildReport(ctx, src, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderSummary(w, report.Passes, cfg.CurveWindow); err != nil {
		return err
	}
	if len(report.Passes) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := stats.RenderCurves(w, report.Passes, cfg.CurveWindow); err != nil {
		return err
	}
	review := stats.SelectSlowPrompts(report.PromptAggsWindow, defaultReportTop)
	title := fmt.Sprintf("To review (last %d passes)", len(report.WindowPassIDs))
	if len(review) == 0 {
		_, err := fmt.Fprintf(w, "%s: nothing flagged\n\n", title)
		if err != nil {
			return err
		}
	} else if err := stats.RenderPromptTable(w, title, review); err != nil {
		return err
	}
	return stats.RenderPromptTable(w, "Most drilled", stats.TopPromptsByAttempts(report.PromptAggsAll, defaultReportTop))
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value != nil && !cmd.Flags().Changed(name) {
		*target = *value
	}
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value != nil && !cmd.Flags().Changed(name) {
		*target = *value
	}
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value != nil && !cmd.Flags().Changed(name) {
		*target = *value
	}
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value != nil && !cmd.Flags().Changed(name) {
		*target = *value
	}
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# mnemo configuration
# Uncomment a value to enable it. CLI flags override config values.
# MNEMO_DB_PATH, MNEMO_DECKS_DIR, MNEMO_LOG_LEVEL and MNEMO_LOG_PATH may be set
# in the environment or in %s.

[drill]
# category = %q        # Deck to drill (see: mnemo decks)
# from = %d                 # First item index (inclusive)
# to = %d                   # Last item index (inclusive)
# budget-seconds = %.1f     # Seconds per item
# learning = false         # Show answers and cycle items in order
# vibrate = false          # Ring the terminal bell on timeout and reveal
# decks-dir = %q

[hooks]
# on-active = "caffeinate -d"   # Started when a pass is running
# on-idle = ""                  # Started when a pass pauses or stops

[log]
# level = "info"           # debug, info, warn or error
# path = %q
`,
		config.DefaultEnvPath(),
		defaultCategory,
		defaultFrom,
		defaultTo,
		defaultBudget,
		config.DefaultDecksDir(),
		config.DefaultLogPath(),
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
