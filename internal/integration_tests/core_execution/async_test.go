package core_execution

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/boxwire/internal/integration_tests/itest"
	"github.com/specialistvlad/boxwire/internal/testutil"
	"github.com/specialistvlad/boxwire/internal/value"
	"github.com/specialistvlad/boxwire/modules/httprequest"
	"github.com/specialistvlad/boxwire/modules/system"
)

// TestCoreExecution_WaitsForSlowRequest checks that a headless run keeps
// going while a request is in flight and delivers the response downstream.
func TestCoreExecution_WaitsForSlowRequest(t *testing.T) {
	t.Parallel()
	// --- Arrange ---
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte("hello"))
	}))
	defer srv.Close()

	out := &testutil.SafeBuffer{}
	programHCL := `
box "url" {
  type = "test/url"
}
box "fetch" {
  type = "network/http_request"
}
box "print" {
  type = "system/print"
}
` + wire("w1", "url", "value", "fetch", "url") +
		wire("w2", "fetch", "response", "print", "value")

	// --- Act ---
	result := itest.Run(t, map[string]string{"main.hcl": programHCL},
		itest.SourceModule{"url": value.String(srv.URL)},
		&httprequest.Module{Client: srv.Client()}, &system.Module{Out: out},
	)
	require.NoError(t, result.Err, "test run failed unexpectedly")

	// --- Assert ---
	assert.Contains(t, out.String(), "hello")
	assert.Contains(t, out.String(), "200")
}
