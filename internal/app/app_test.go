package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/boxwire/internal/hclprogram"
	"github.com/specialistvlad/boxwire/internal/program"
	"github.com/specialistvlad/boxwire/internal/testutil"
	"github.com/specialistvlad/boxwire/internal/value"
	"github.com/specialistvlad/boxwire/internal/yamlprogram"
	"github.com/specialistvlad/boxwire/modules/debug"
)

const adderProgram = `
box "s" {
  type = "primitive_io/spinner"
}

box "sum" {
  type = "arithmetic/add"
  x    = 100
}

wire "w" {
  src_box   = "s"
  src_plug  = "value"
  dest_box  = "sum"
  dest_plug = "a"
}
`

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"valid", Config{ProgramPath: "p"}, ""},
		{"missing path", Config{}, "ProgramPath"},
		{"negative", Config{ProgramPath: "p", WarnSlice: -time.Second}, "negative"},
		{"slice order", Config{ProgramPath: "p", WarnSlice: 2 * time.Second, LongSlice: time.Second}, "long-slice"},
		{"namespace", Config{ProgramPath: "p", EditorNamespace: "/x"}, "editor-url"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tc.cfg, *cfg)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestNewApp_RegistersCoreModules(t *testing.T) {
	a, _ := SetupAppTest(t, &Config{ProgramPath: "p"})
	types := a.Registry().Types()
	assert.Contains(t, types, "arithmetic/add")
	assert.Contains(t, types, "primitive_io/spinner")
	assert.Contains(t, types, debug.AwaitType)
}

func TestRun_RunsUntilIdleAndSaves(t *testing.T) {
	savePath := filepath.Join(t.TempDir(), "saved.hcl")
	a, logs := SetupAppTest(t, &Config{ProgramPath: WriteProgram(t, adderProgram), SavePath: savePath})

	require.NoError(t, a.Run(context.Background()))

	assert.Contains(t, logs.String(), "Program stopped.")
	loadCtx, _ := testutil.Context(t)
	doc, err := hclprogram.Load(loadCtx, savePath)
	require.NoError(t, err)
	require.Len(t, doc.Boxes, 2)
	assert.Equal(t, program.BoxRecord{ID: "sum", Type: "arithmetic/add", X: 100}, doc.Boxes[1])
	require.Len(t, doc.Wires, 1)
	assert.Equal(t, "w", doc.Wires[0].ID)
}

func TestRun_LoadError(t *testing.T) {
	a, _ := SetupAppTest(t, &Config{ProgramPath: filepath.Join(t.TempDir(), "missing.hcl")})
	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load program")
}

func TestRun_RestoreError(t *testing.T) {
	path := WriteProgram(t, `
box "x" {
  type = "nope/missing"
}
`)
	a, _ := SetupAppTest(t, &Config{ProgramPath: path})
	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to restore program")
}

// startServing runs the app in serve mode and returns once the loop is up.
func startServing(t *testing.T, src string) *App {
	t.Helper()
	a, _ := SetupAppTest(t, &Config{ProgramPath: WriteProgram(t, src), Serve: true})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("app did not stop")
		}
	})

	select {
	case <-a.Ready():
	case err := <-done:
		t.Fatalf("app stopped early: %v", err)
	}
	return a
}

func serve(a *App, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	a.handler().ServeHTTP(rec, req)
	return rec
}

func TestHandler_Health(t *testing.T) {
	a := startServing(t, adderProgram)
	rec := serve(a, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK\n", rec.Body.String())
}

func TestHandler_Program(t *testing.T) {
	a := startServing(t, adderProgram)
	rec := serve(a, http.MethodGet, "/program", "")
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := hclprogram.Parse(rec.Body.Bytes(), "served.hcl")
	require.NoError(t, err)
	assert.Len(t, doc.Boxes, 2)
	assert.Len(t, doc.Wires, 1)

	rec = serve(a, http.MethodGet, "/program?format=yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	ydoc, err := yamlprogram.Parse(rec.Body.Bytes(), "served.yaml")
	require.NoError(t, err)
	assert.Equal(t, doc.Boxes, ydoc.Boxes)

	rec = serve(a, http.MethodGet, "/program?format=xml", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRun_YAMLProgram(t *testing.T) {
	dir := t.TempDir()
	src := "boxes:\n  - id: s\n    type: primitive_io/spinner\n"
	path := filepath.Join(dir, "program.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	savePath := filepath.Join(dir, "saved.yml")

	a, _ := SetupAppTest(t, &Config{ProgramPath: path, SavePath: savePath})
	require.NoError(t, a.Run(context.Background()))

	loadCtx, _ := testutil.Context(t)
	doc, err := yamlprogram.Load(loadCtx, savePath)
	require.NoError(t, err)
	assert.Equal(t, []program.BoxRecord{{ID: "s", Type: "primitive_io/spinner"}}, doc.Boxes)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, formatYAML, formatOf("a/b.YAML"))
	assert.Equal(t, formatYAML, formatOf("b.yml"))
	assert.Equal(t, formatHCL, formatOf("b.hcl"))
	assert.Equal(t, formatHCL, formatOf("dir"))
}

func TestHandler_Status(t *testing.T) {
	a := startServing(t, adderProgram)

	require.Eventually(t, func() bool {
		rec := serve(a, http.MethodGet, "/status", "")
		return rec.Code == http.StatusOK && strings.Contains(rec.Body.String(), `"sum"`)
	}, 2*time.Second, 10*time.Millisecond)

	rec := serve(a, http.MethodGet, "/status", "")
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"status":"idle"`)
}

func TestHandler_SettlePromise(t *testing.T) {
	a := startServing(t, `
box "wait" {
  type = "debug/await"
}
`)
	ctx := context.Background()
	require.NoError(t, a.Session().Do(ctx, func(_ context.Context, p *program.Program) error {
		return p.SchedulePlugUpdate("wait", "name", value.String("answer"))
	}))

	require.Eventually(t, func() bool {
		rec := serve(a, http.MethodGet, "/promises", "")
		return strings.Contains(rec.Body.String(), `"answer"`)
	}, 2*time.Second, 10*time.Millisecond)

	rec := serve(a, http.MethodPost, "/promises/answer", `{"value": 42}`)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	require.Eventually(t, func() bool {
		var got value.Value
		err := a.Session().Do(ctx, func(_ context.Context, p *program.Program) error {
			b, err := p.Box("wait")
			if err != nil {
				return err
			}
			got = b.Output("value").Read()
			return nil
		})
		return err == nil && value.Equal(got, value.Number(42))
	}, 2*time.Second, 10*time.Millisecond)

	rec = serve(a, http.MethodPost, "/promises/answer", `{"error": "late"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_SettlePromiseMalformed(t *testing.T) {
	a := startServing(t, adderProgram)
	rec := serve(a, http.MethodPost, "/promises/x", `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
