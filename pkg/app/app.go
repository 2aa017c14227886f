// Package app bootstraps the dashboard: the global fault listener, the instance registry
// and the viewers behind it.
package app

import (
	"context"
	"time"

	"github.com/leakwatch/leakwatch/pkg/domain/interfaces"
	"github.com/leakwatch/leakwatch/pkg/fault"
	"github.com/leakwatch/leakwatch/pkg/service/diag"
	"github.com/leakwatch/leakwatch/pkg/usecase"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

const (
	DefaultTitle              = "Leak Detection Dashboard"
	DefaultAutoRefreshSeconds = 2
)

// App is the bootstrapped dashboard
type App struct {
	listener *fault.Listener
	registry *Registry
	sink     diag.Sink
}

type config struct {
	title       string
	instanceTTL time.Duration
	autoRefresh int
	sink        diag.Sink
}

type Option func(*config)

func WithTitle(title string) Option {
	return func(c *config) {
		c.title = title
	}
}

// WithInstanceTTL sets how long an idle instance is kept
func WithInstanceTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.instanceTTL = ttl
	}
}

// WithAutoRefresh sets the page refresh interval while data is loading. 0 disables it.
func WithAutoRefresh(seconds int) Option {
	return func(c *config) {
		c.autoRefresh = seconds
	}
}

// WithSink sets the diagnostic sink of boundaries, viewers and the listener
func WithSink(sink diag.Sink) Option {
	return func(c *config) {
		c.sink = sink
	}
}

// Bootstrap starts the global fault listener and only then builds the rest of the
// application, so faults raised while serving are never missed.
func Bootstrap(ctx context.Context, api interfaces.BackendAPI, opts ...Option) (*App, error) {
	if api == nil {
		return nil, goerr.New("backend API is required")
	}

	cfg := config{
		title:       DefaultTitle,
		instanceTTL: DefaultInstanceTTL,
		autoRefresh: DefaultAutoRefreshSeconds,
		sink:        diag.Nop{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	listener := fault.NewListener(cfg.sink)
	if err := listener.Start(); err != nil {
		return nil, goerr.Wrap(err, "failed to start fault listener")
	}
	logging.From(ctx).Info("fault listener started")

	uc := usecase.New(api, usecase.WithSink(cfg.sink))
	registry := newRegistry(cfg.instanceTTL, func(id string) *Instance {
		return newInstance(id, uc, cfg.sink, listener, cfg.title, cfg.autoRefresh)
	})

	return &App{
		listener: listener,
		registry: registry,
		sink:     cfg.sink,
	}, nil
}

// Listener returns the started global fault listener
func (a *App) Listener() *fault.Listener {
	return a.listener
}

// Registry returns the instance registry
func (a *App) Registry() *Registry {
	return a.registry
}

// Sink returns the diagnostic sink shared by the application
func (a *App) Sink() diag.Sink {
	return a.sink
}
