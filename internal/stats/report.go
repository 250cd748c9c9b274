package stats

import (
	"context"

	"github.com/verte-zerg/mnemo/internal/model"
)

// Source is the subset of the store used for reports.
type Source interface {
	ListPasses(ctx context.Context, cfg model.StatsConfig) ([]model.PassAggregate, error)
	ListPromptAggregates(ctx context.Context, passIDs []string) ([]model.PromptAggregate, error)
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Passes           []model.PassAggregate
	WindowPassIDs    []string
	PromptAggsAll    []model.PromptAggregate
	PromptAggsWindow []model.PromptAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig) (Report, error) {
	passes, err := src.ListPasses(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(passes) > cfg.Last {
		passes = passes[len(passes)-cfg.Last:]
	}

	windowIDs := lastPassIDs(passes, cfg.CurveWindow)
	all, err := src.ListPromptAggregates(ctx, passIDs(passes))
	if err != nil {
		return Report{}, err
	}
	window, err := src.ListPromptAggregates(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Passes:           passes,
		WindowPassIDs:    windowIDs,
		PromptAggsAll:    all,
		PromptAggsWindow: window,
	}, nil
}

func passIDs(passes []model.PassAggregate) []string {
	ids := make([]string, len(passes))
	for i, p := range passes {
		ids[i] = p.PassID
	}
	return ids
}

func lastPassIDs(passes []model.PassAggregate, window int) []string {
	if window <= 0 || len(passes) <= window {
		return passIDs(passes)
	}
	return passIDs(passes[len(passes)-window:])
}
