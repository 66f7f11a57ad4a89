package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/boxwire/internal/registry"
	"github.com/specialistvlad/boxwire/internal/testutil"
)

// SetupAppTest creates a new app instance for system testing. Logs are
// captured at debug level and dumped when BOXWIRE_TEST_LOGS=true.
func SetupAppTest(t *testing.T, appConfig *Config, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	logBuffer := &testutil.SafeBuffer{}
	appConfig.LogLevel = "debug"
	testApp := NewApp(logBuffer, appConfig, modules...)

	t.Cleanup(func() {
		if os.Getenv("BOXWIRE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}

// WriteProgram writes src into a fresh program file and returns its path.
func WriteProgram(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "program.hcl")
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatalf("failed to write program: %v", err)
	}
	return path
}
