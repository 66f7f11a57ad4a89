package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/specialistvlad/boxwire/internal/ctxlog"
	"github.com/specialistvlad/boxwire/internal/editorbridge"
	"github.com/specialistvlad/boxwire/internal/session"
	"github.com/specialistvlad/boxwire/internal/ui"
)

const shutdownTimeout = 5 * time.Second

// Run loads the program, runs it, and shuts everything down. Without Serve
// it returns once no work is left; with Serve it returns when ctx ends.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	logger := a.logger
	logger.Debug("App.Run method started.")

	doc, err := loadProgram(ctx, a.config.ProgramPath)
	if err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}

	shells := []ui.Shell{ui.LogShell{Logger: logger.With("component", "ui")}}
	if a.config.EditorURL != "" {
		conn, err := editorbridge.Dial(ctx, editorbridge.DialConfig{
			URL:       a.config.EditorURL,
			Namespace: a.config.EditorNamespace,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to editor: %w", err)
		}
		a.bridge = editorbridge.New(ctx, conn)
		defer a.bridge.Close()
		shells = append(shells, a.bridge)
	}

	a.session = session.New(ctx, a.registry, a.config.schedulerConfig(), shells...)
	if a.bridge != nil {
		a.bridge.Attach(a.session)
	}
	if err := a.session.Restore(ctx, doc); err != nil {
		err = fmt.Errorf("failed to restore program: %w", err)
		if cerr := a.session.Close(context.WithoutCancel(ctx)); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close session: %w", cerr))
		}
		return err
	}
	logger.Info("🚀 Program loaded.", "boxes", len(doc.Boxes), "wires", len(doc.Wires), "serve", a.config.Serve)

	runErr := a.runLoop(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := a.save(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}
	if err := a.session.Close(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("failed to close session: %w", err))
	}

	stats := a.session.Program().Scheduler().Stats()
	logger.Info("🏁 Program stopped.", "tasks", stats.Finished, "failed", stats.Failed, "cancelled", stats.Cancelled)
	return runErr
}

// runLoop drives the session next to the health server.
func (a *App) runLoop(ctx context.Context) error {
	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	g, gctx := errgroup.WithContext(runCtx)

	if a.config.HealthcheckPort > 0 {
		srv, err := a.startHealthcheckServer(gctx)
		if err != nil {
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			return a.closeHealthCheckServer(srv)
		})
	}

	g.Go(func() error {
		defer stop()
		close(a.ready)
		var err error
		if a.config.Serve {
			err = a.session.Run(gctx)
		} else {
			err = a.session.RunUntilIdle(gctx)
		}
		if errors.Is(err, context.Canceled) {
			if ctx.Err() != nil {
				a.logger.Info("Run interrupted.")
			}
			return nil
		}
		return err
	})

	return g.Wait()
}

func (a *App) save(ctx context.Context) error {
	if a.config.SavePath == "" {
		return nil
	}
	if err := saveProgram(ctx, a.config.SavePath, a.session.Document()); err != nil {
		return fmt.Errorf("failed to save program: %w", err)
	}
	return nil
}
