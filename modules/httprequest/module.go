// Package httprequest provides a box that fetches a URL without blocking the
// program while the response is on its way.
package httprequest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/specialistvlad/boxwire/internal/box"
	"github.com/specialistvlad/boxwire/internal/ctxlog"
	"github.com/specialistvlad/boxwire/internal/eventloop"
	"github.com/specialistvlad/boxwire/internal/registry"
	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/value"
)

const (
	RequestType = "network/http_request"

	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second
)

// Module registers the HTTP request box. A nil Client uses one with
// DefaultTimeout.
type Module struct {
	Client *http.Client
}

func (m *Module) Register(r *registry.Registry) {
	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	r.RegisterBox(RequestType, registry.Metadata{Description: "Fetches a URL."}, func() *box.Box {
		return NewRequest(client)
	})
}

// NewRequest builds a box that sends a request whenever "url" changes and
// publishes {status_code, body} on "response". "method" defaults to GET.
func NewRequest(client *http.Client) *box.Box {
	b := box.New(RequestType)
	method := b.MustInput("method", nil)
	out := b.MustOutput("response")

	b.MustInput("url", func(ctx context.Context, y task.Yield) error {
		u, ok := b.Input("url").Read().(value.String)
		if !ok || u == "" {
			return nil
		}
		m := http.MethodGet
		if s, ok := method.Read().(value.String); ok && s != "" {
			m = strings.ToUpper(string(s))
		}

		// The request outlives this turn; the hold keeps a headless run alive
		// until the response is posted back. Ending the task aborts it.
		reqCtx, cancel := context.WithCancel(ctx)
		release := eventloop.Hold(ctx)
		pending := task.NewFuture()
		go func() {
			defer release()
			v, err := do(reqCtx, client, m, string(u))
			if err != nil {
				pending.Reject(err)
				return
			}
			pending.Resolve(v)
		}()

		v, err := y(pending)
		cancel()
		if err != nil {
			return fmt.Errorf("%s %s: %w", m, u, err)
		}
		return out.Write(v)
	})
	return b
}

// do runs on its own goroutine and must not touch the box.
func do(ctx context.Context, client *http.Client, method, url string) (value.Value, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Making HTTP request", "method", method, "url", url)

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Info("Received HTTP response", "status", resp.Status)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return value.NewMap().
		With("status_code", value.Number(resp.StatusCode)).
		With("body", value.String(body)), nil
}
