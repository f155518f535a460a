package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/events"
	"github.com/vk/nodegridgo/internal/executor"
	"github.com/vk/nodegridgo/internal/hcl"
	"github.com/vk/nodegridgo/internal/registry"
	"github.com/vk/nodegridgo/internal/report"
	"github.com/vk/nodegridgo/internal/report/socketio"
	"github.com/vk/nodegridgo/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	loader   *hcl.Loader
	session  *session.Session
	metrics  *prometheus.Registry
	socket   *socketio.Presenter

	// graphIDs are the graphs attached by the last successful load.
	graphIDs []string

	ctx        context.Context
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App with its own logger, kind registry and metrics registry.
// Without modules the core modules are registered. A registry that fails
// validation is a programmer error and panics.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules(outW)
	}
	reg := registry.Load(modules...)
	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}
	logger.Debug("Registry validation passed.", "kinds", reg.Kinds())

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(collectors.NewGoCollector())

	presenters := report.Multi{report.LogPresenter{}, report.NewMetricsPresenter(metrics)}
	var sock *socketio.Presenter
	if cfg.SocketIOURL != "" {
		var err error
		sock, err = socketio.New(socketio.Options{URL: cfg.SocketIOURL})
		if err != nil {
			panic(fmt.Errorf("failed to configure socket.io presenter: %w", err))
		}
		presenters = append(presenters, sock)
		logger.Debug("Socket.IO presenter configured.", "url", cfg.SocketIOURL)
	}

	sess := session.New(
		executor.New(executor.WithPresenter(presenters)),
		session.WithClassifierOptions(
			events.WithDebug(func() bool { return logger.Enabled(ctx, slog.LevelDebug) }),
			events.WithHook(func(ctx context.Context, n events.Normalized) {
				ctxlog.FromContext(ctx).Debug("Event wave classified.", "kind", string(n.Kind), "trigger", string(n.Trigger), "events", len(n.Wave))
			}),
		),
	)

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		loader:   hcl.NewLoader(reg),
		session:  sess,
		metrics:  metrics,
		socket:   sock,
		ctx:      ctx,
	}
}

// Registry returns the application's kind registry.
func (a *App) Registry() *registry.Registry { return a.registry }

// Session returns the session the app's graphs are attached to.
func (a *App) Session() *session.Session { return a.session }

// Metrics returns the registry served on /metrics.
func (a *App) Metrics() *prometheus.Registry { return a.metrics }

// Graphs returns the IDs of the currently attached graphs in load order.
func (a *App) Graphs() []string { return append([]string(nil), a.graphIDs...) }

// Close stops the health check server and disconnects the socket.io
// presenter.
func (a *App) Close() error {
	err := a.closeHealthCheckServer()
	if a.socket != nil {
		a.socket.Close()
	}
	return err
}
