package app

import (
	"context"
	"fmt"
	"slices"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/report"
)

// Load reads every graph under the configured path, attaches them to the
// session and evaluates each one from scratch. Graphs that disappeared from
// the files are detached. When loading fails the previously attached graphs
// are left untouched.
func (a *App) Load(ctx context.Context) ([]*report.Report, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading graphs...", "graph_path", a.config.GraphPath)

	graphs, err := a.loader.Load(ctx, a.config.GraphPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load graphs: %w", err)
	}
	if len(graphs) == 0 {
		logger.Warn("No graphs found, evaluation not required.", "graph_path", a.config.GraphPath)
	}

	ids := make([]string, 0, len(graphs))
	for _, g := range graphs {
		a.session.Attach(g)
		ids = append(ids, g.ID())
	}
	for _, id := range a.graphIDs {
		if !slices.Contains(ids, id) {
			logger.Debug("Detaching removed graph.", "graph_id", id)
			a.session.Detach(id)
		}
	}
	a.graphIDs = ids
	a.session.InvalidateAll()
	logger.Info("Graphs loaded successfully.", "graphs", len(ids))

	reports := make([]*report.Report, 0, len(ids))
	for _, id := range ids {
		rep, err := a.session.Update(ctx, id, nil, "load")
		if err != nil {
			return reports, fmt.Errorf("evaluating graph %q: %w", id, err)
		}
		reports = append(reports, rep)
	}
	return reports, nil
}
