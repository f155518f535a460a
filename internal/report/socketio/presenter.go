// Package socketio pushes evaluation reports to a socket.io server, the way
// an editor panel would receive node errors and timings.
package socketio

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/vk/nodegridgo/internal/report"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultEvent is the event name reports are emitted under.
const DefaultEvent = "nodegrid:report"

// ErrClosed is returned by Present after Close.
var ErrClosed = errors.New("presenter closed")

// Options configures a Presenter.
type Options struct {
	// URL is the server address including the socket.io path, e.g.
	// "http://localhost:3000/socket.io/".
	URL       string
	Namespace string
	// Event defaults to DefaultEvent.
	Event              string
	InsecureSkipVerify bool
}

// Presenter emits one message per report. The connection is opened on the
// first Present; messages emitted before the handshake completes are
// buffered by the client and flushed once it connects.
type Presenter struct {
	opts Options

	mu        sync.Mutex
	io        *socket.Socket
	closed    bool
	connected atomic.Bool
}

var _ report.Presenter = (*Presenter)(nil)

// New validates opts and returns a Presenter. It does not connect.
func New(opts Options) (*Presenter, error) {
	u, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("socket.io URL %q must be absolute", opts.URL)
	}
	if opts.Event == "" {
		opts.Event = DefaultEvent
	}
	if opts.Namespace == "" {
		opts.Namespace = "/"
	}
	return &Presenter{opts: opts}, nil
}

// Connected reports whether the client finished its handshake.
func (p *Presenter) Connected() bool { return p.connected.Load() }

// Present implements report.Presenter.
func (p *Presenter) Present(ctx context.Context, r *report.Report) error {
	io, err := p.client(ctx)
	if err != nil {
		return err
	}
	if err := io.Emit(p.opts.Event, Payload(r)); err != nil {
		return fmt.Errorf("emitting %s: %w", p.opts.Event, err)
	}
	return nil
}

// Close disconnects the client. Later calls to Present fail with ErrClosed.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	if p.io != nil {
		p.io.Disconnect()
		p.io = nil
	}
}

func (p *Presenter) client(ctx context.Context) (*socket.Socket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	if p.io != nil {
		return p.io, nil
	}

	logger := ctxlog.FromContext(ctx).With("presenter", "socketio", "url", p.opts.URL, "namespace", p.opts.Namespace)

	// URL was validated by New.
	parsedURL, _ := url.Parse(p.opts.URL)
	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if p.opts.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(p.opts.Namespace, opts)

	io.On(types.EventName("connect"), func(...any) {
		p.connected.Store(true)
		logger.Info("Successfully connected", "sid", io.Id())
	})
	io.On(types.EventName("disconnect"), func(reason ...any) {
		p.connected.Store(false)
		logger.Debug("Disconnected", "reason", reason)
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		logger.Warn("Connection failed, reports are buffered until it succeeds", "error", errs)
	})

	io.Connect()
	p.io = io
	return io, nil
}

// Payload converts a report into the JSON-friendly message emitted to the
// server. Durations are seconds.
func Payload(r *report.Report) map[string]any {
	nodes := make([]map[string]any, len(r.Nodes))
	for i, n := range r.Nodes {
		entry := map[string]any{
			"id":         n.NodeID,
			"kind":       n.Kind,
			"up_to_date": n.UpToDate,
			"error":      n.Error,
			"update_s":   n.Duration.Seconds(),
		}
		if d, ok := r.CumulativeTimes[n.NodeID]; ok {
			entry["cumulative_s"] = d.Seconds()
		} else {
			entry["cumulative_s"] = nil
		}
		nodes[i] = entry
	}

	results := make([]map[string]any, len(r.Results))
	for i, res := range r.Results {
		entry := map[string]any{
			"id":       res.NodeID,
			"outcome":  res.Outcome.String(),
			"update_s": res.Duration.Seconds(),
		}
		if res.Err != nil {
			entry["error"] = res.Err.Error()
		}
		results[i] = entry
	}

	return map[string]any{
		"run_id":    r.RunID,
		"tree_id":   r.TreeID,
		"trigger":   r.Trigger,
		"started":   r.Started.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		"elapsed_s": r.Elapsed.Seconds(),
		"nodes":     nodes,
		"results":   results,
	}
}
