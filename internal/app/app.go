package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/boxwire/internal/ctxlog"
	"github.com/specialistvlad/boxwire/internal/editorbridge"
	"github.com/specialistvlad/boxwire/internal/registry"
	"github.com/specialistvlad/boxwire/internal/session"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	ctx        context.Context
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	registry   *registry.Registry
	session    *session.Session
	bridge     *editorbridge.Bridge
	httpServer *http.Server
	ready      chan struct{}
}

// NewApp is the constructor for the main application. It returns an App with
// its own isolated logger and registry. An invalid registry is a programmer
// error and panics.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(modules) == 0 {
		modules = coreModules
	}
	reg := registry.New().Load(modules...)
	logger.Debug("All box modules registered.", "count", len(modules), "types", len(reg.Types()))

	if err := reg.Validate(ctx); err != nil {
		panic(err)
	}

	return &App{
		ctx:      ctx,
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		ready:    make(chan struct{}),
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry { return a.registry }

// Session returns the running session, or nil before Run has loaded the
// program.
func (a *App) Session() *session.Session { return a.session }

// Ready is closed once the program is loaded and the loop is about to start.
func (a *App) Ready() <-chan struct{} { return a.ready }
