// Package itest runs whole programs through the app for the integration
// suites.
package itest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/boxwire/internal/app"
	"github.com/specialistvlad/boxwire/internal/box"
	"github.com/specialistvlad/boxwire/internal/hclprogram"
	"github.com/specialistvlad/boxwire/internal/program"
	"github.com/specialistvlad/boxwire/internal/registry"
	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/testutil"
	"github.com/specialistvlad/boxwire/internal/value"
)

// Result holds everything a finished run left behind.
type Result struct {
	App       *app.App
	Err       error
	LogOutput string
	// Saved is the program written on shutdown.
	Saved program.Document
}

// Run writes files into a temporary program directory and runs the app on
// it until no work is left.
func Run(t *testing.T, files map[string]string, modules ...registry.Module) *Result {
	t.Helper()

	dir := t.TempDir()
	for name, src := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(src), 0o600))
	}
	savePath := filepath.Join(t.TempDir(), "saved.hcl")

	a, logs := app.SetupAppTest(t, &app.Config{ProgramPath: dir, SavePath: savePath, LogFormat: "text"}, modules...)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res := &Result{App: a, Err: a.Run(ctx), LogOutput: logs.String()}

	if _, err := os.Stat(savePath); err == nil {
		loadCtx, _ := testutil.Context(t)
		res.Saved, err = hclprogram.Load(loadCtx, savePath)
		require.NoError(t, err)
	}
	return res
}

// SourceModule registers one "test/<name>" box per entry. Each publishes its
// value on "value" once attached.
type SourceModule map[string]value.Value

func (m SourceModule) Register(r *registry.Registry) {
	for name, v := range m {
		typeID := "test/" + name
		r.RegisterBox(typeID, registry.Metadata{}, func() *box.Box {
			b := box.New(typeID)
			out := b.MustOutput("value")
			b.ScheduleProcessing(func(context.Context, task.Yield) error {
				return out.Write(v)
			})
			return b
		})
	}
}
