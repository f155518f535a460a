package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/report"
)

// ErrNodesFailed is returned by Run when the initial evaluation left nodes
// in error.
var ErrNodesFailed = errors.New("nodes failed")

// Run loads and evaluates the graphs, then plays the configured frames and,
// in watch mode, keeps reloading on file changes until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")
	defer a.Close()

	a.healthCheckServer()

	a.logger.Info("🚀 Starting evaluation...")
	reports, err := a.Load(ctx)
	if err != nil {
		return err
	}

	if a.config.Frames > 0 {
		if err := a.playFrames(ctx); err != nil {
			return err
		}
	}

	if a.config.Watch {
		return a.watch(ctx)
	}

	a.logger.Info("🏁 Evaluation finished.")
	return failures(reports)
}

// playFrames steps every graph through frames 1..Frames at the configured
// interval. All frames but the last are evaluated as playing, so only the
// last one is presented.
func (a *App) playFrames(ctx context.Context) error {
	a.logger.Info("▶️ Playing frames.", "frames", a.config.Frames, "interval", a.config.FrameInterval)
	ticker := time.NewTicker(a.config.FrameInterval)
	defer ticker.Stop()

	for frame := 1; frame <= a.config.Frames; frame++ {
		select {
		case <-ctx.Done():
			a.logger.Info("Playback interrupted.", "frame", frame)
			return nil
		case <-ticker.C:
		}
		playing := frame < a.config.Frames
		for _, id := range a.graphIDs {
			if _, err := a.session.SetFrame(ctx, id, frame, playing); err != nil {
				return fmt.Errorf("frame %d of graph %q: %w", frame, id, err)
			}
		}
	}
	return nil
}

func failures(reports []*report.Report) error {
	var failed int
	for _, r := range reports {
		_, f, _ := r.Counts()
		failed += f
	}
	if failed > 0 {
		return fmt.Errorf("%d %w", failed, ErrNodesFailed)
	}
	return nil
}
