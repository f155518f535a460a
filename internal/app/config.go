package app

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// DefaultFrameInterval is the playback rate used when none is configured.
const DefaultFrameInterval = 40 * time.Millisecond

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath string // .hcl file or directory

	LogFormat       string
	LogLevel        string
	HealthcheckPort int

	// Watch keeps the app running and reloads the graphs when a file under
	// GraphPath changes.
	Watch bool
	// SocketIOURL, when set, receives every evaluation report.
	SocketIOURL string
	// Frames plays frames 1..Frames after the first evaluation.
	Frames        int
	FrameInterval time.Duration
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}
	if cfg.Frames < 0 {
		return nil, fmt.Errorf("frames must not be negative, got %d", cfg.Frames)
	}
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("healthcheck port %d is out of range", cfg.HealthcheckPort)
	}
	if cfg.SocketIOURL != "" {
		u, err := url.Parse(cfg.SocketIOURL)
		if err != nil || u.Host == "" {
			return nil, fmt.Errorf("socket.io URL %q must be absolute", cfg.SocketIOURL)
		}
		switch u.Scheme {
		case "http", "https", "ws", "wss":
		default:
			return nil, fmt.Errorf("socket.io URL %q has unsupported scheme %q", cfg.SocketIOURL, u.Scheme)
		}
	}
	return &cfg, nil
}
