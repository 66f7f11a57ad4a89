package httprequest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/boxwire/internal/program"
	"github.com/specialistvlad/boxwire/internal/session/sessiontest"
	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/value"
)

// settleUntil drives the loop until cond holds. The response arrives on
// another goroutine, so a single pass is not enough.
func settleUntil(t *testing.T, h *sessiontest.Harness, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		require.True(t, time.Now().Before(deadline), "condition not reached")
		time.Sleep(5 * time.Millisecond)
		h.Settle(t)
	}
}

func TestRequest_PublishesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%s %s", r.Method, r.URL.Path)
	}))
	defer srv.Close()

	h := sessiontest.New(t, &Module{Client: srv.Client()})
	id := h.Add(t, RequestType)
	h.Set(t, id, "method", value.String("post"))
	h.Set(t, id, "url", value.String(srv.URL+"/hello"))
	h.Settle(t)

	settleUntil(t, h, func() bool { return h.Output(t, id, "response") != nil })

	want := value.NewMap().
		With("status_code", value.Number(200)).
		With("body", value.String("POST /hello"))
	got := h.Output(t, id, "response")
	assert.True(t, value.Equal(want, got), "got %s", value.Format(got))
}

func TestRequest_ReportsTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	h := sessiontest.New(t, &Module{})
	id := h.Add(t, RequestType)
	h.Set(t, id, "url", value.String(url))
	h.Settle(t)

	settleUntil(t, h, func() bool { return h.Shell.LastError(id) != nil })
	assert.ErrorContains(t, h.Shell.LastError(id), "GET "+url)
	assert.Nil(t, h.Output(t, id, "response"))
}

func TestRequest_EmptyURLDoesNothing(t *testing.T) {
	h := sessiontest.New(t, &Module{})
	id := h.Add(t, RequestType)
	h.Set(t, id, "url", value.String(""))
	h.Settle(t)

	state, err := h.Program().State(id)
	require.NoError(t, err)
	assert.Equal(t, task.NotStarted, state)
	assert.Nil(t, h.Output(t, id, "response"))
}

func TestRequest_AbortedWhenTaskIsCancelled(t *testing.T) {
	started := make(chan struct{})
	aborted := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
		close(aborted)
	}))
	defer srv.Close()

	h := sessiontest.New(t, &Module{Client: srv.Client()})
	id := h.Add(t, RequestType)
	h.Set(t, id, "url", value.String(srv.URL))

	runCtx, stop := context.WithCancel(h.Ctx)
	defer stop()
	runErr := make(chan error, 1)
	go func() { runErr <- h.Session.Run(runCtx) }()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("request was never sent")
	}
	require.NoError(t, h.Session.Do(runCtx, func(ctx context.Context, p *program.Program) error {
		return p.TerminateAll(ctx)
	}))

	select {
	case <-aborted:
	case <-time.After(5 * time.Second):
		t.Fatal("request was not aborted")
	}
	stop()
	assert.ErrorIs(t, <-runErr, context.Canceled)
	assert.Nil(t, h.Output(t, id, "response"))
}
