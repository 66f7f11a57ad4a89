package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/specialistvlad/boxwire/internal/ctxlog"
)

// Context returns a background context carrying a debug-level text logger
// that writes into the returned buffer. Set BOXWIRE_TEST_LOGS=true to dump
// the captured output at the end of the test.
func Context(t testing.TB) (context.Context, *SafeBuffer) {
	t.Helper()
	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	t.Cleanup(func() {
		if os.Getenv("BOXWIRE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
	return ctxlog.WithLogger(context.Background(), logger), buf
}
