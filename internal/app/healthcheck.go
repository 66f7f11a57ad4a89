package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/boxwire/internal/ctxlog"
	"github.com/specialistvlad/boxwire/internal/program"
	"github.com/specialistvlad/boxwire/internal/value"
)

const loopRequestTimeout = 2 * time.Second

// healthHandler reports that the process is alive.
func (app *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// programHandler serves the current program, as HCL unless ?format=yaml.
func (app *App) programHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), loopRequestTimeout)
	defer cancel()

	format := r.URL.Query().Get("format")
	switch format {
	case "", formatHCL, formatYAML:
	default:
		http.Error(w, fmt.Sprintf("unknown program format %q", format), http.StatusBadRequest)
		return
	}

	var doc program.Document
	err := app.session.Do(ctx, func(context.Context, *program.Program) error {
		doc = app.session.Document()
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	src, contentType, err := encodeProgram(format, doc)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Write(src)
}

type boxStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	View   any    `json:"view,omitempty"`
}

// statusHandler serves the recorded status of every box as JSON.
func (app *App) statusHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := app.session.Status().Snapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := make(map[string]boxStatus, len(snap))
	for id, e := range snap {
		st := boxStatus{Status: e.Status.String(), View: value.ToNative(e.View)}
		if e.Err != nil {
			st.Error = e.Err.Error()
		}
		out[id] = st
	}
	writeJSON(w, http.StatusOK, out)
}

// promisesHandler lists pending promise names.
func (app *App) promisesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"pending": app.session.Promises().Pending()})
}

type settleRequest struct {
	Value any    `json:"value"`
	Error string `json:"error"`
}

// settlePromiseHandler resolves, or with an "error" field rejects, the named
// promise.
func (app *App) settlePromiseHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var req settleRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	promises := app.session.Promises()
	var err error
	if req.Error != "" {
		err = promises.Reject(name, errors.New(req.Error))
	} else {
		var v value.Value
		if v, err = value.FromNative(req.Value); err == nil {
			err = promises.Resolve(name, v)
		}
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	ctxlog.FromContext(app.ctx).Info("Promise settled over HTTP.", "name", name, "rejected", req.Error != "")
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (app *App) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", app.healthHandler)
	mux.HandleFunc("GET /program", app.programHandler)
	mux.HandleFunc("GET /status", app.statusHandler)
	mux.HandleFunc("GET /promises", app.promisesHandler)
	mux.HandleFunc("POST /promises/{name}", app.settlePromiseHandler)
	return mux
}

// startHealthcheckServer binds the health check port and serves in the
// background.
func (app *App) startHealthcheckServer(ctx context.Context) (*http.Server, error) {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Configuring health check server.")

	addr := fmt.Sprintf(":%d", app.config.HealthcheckPort)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("health check server: %w", err)
	}

	srv := &http.Server{
		Handler:     app.handler(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	app.httpServer = srv

	go func() {
		logger.Info("🩺 Health check server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health check server failed unexpectedly", "error", err)
		}
	}()
	return srv, nil
}

func (app *App) closeHealthCheckServer(srv *http.Server) error {
	logger := ctxlog.FromContext(app.ctx)
	logger.Debug("Closing health check server...")

	ctx, cancel := context.WithTimeout(context.WithoutCancel(app.ctx), shutdownTimeout)
	defer cancel()

	logger.Info("🩺 Shutting down health check server...")
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Health check server shutdown failed", "error", err)
		return err
	}
	logger.Debug("Health check server shut down gracefully.")
	return nil
}
