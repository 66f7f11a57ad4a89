// Package system provides boxes that talk to the host process: its
// environment and its output.
package system

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/specialistvlad/boxwire/internal/box"
	"github.com/specialistvlad/boxwire/internal/ctxlog"
	"github.com/specialistvlad/boxwire/internal/registry"
	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/value"
)

const (
	EnvType   = "system/env"
	PrintType = "system/print"
)

// Module registers the system boxes. Environ and Out default to the
// process environment and stdout.
type Module struct {
	Environ func() []string
	Out     io.Writer
}

func (m *Module) Register(r *registry.Registry) {
	environ, out := m.Environ, m.Out
	if environ == nil {
		environ = os.Environ
	}
	if out == nil {
		out = os.Stdout
	}
	r.RegisterBox(EnvType, registry.Metadata{Description: "Environment variables."}, func() *box.Box {
		return NewEnv(environ)
	})
	r.RegisterBox(PrintType, registry.Metadata{Description: "Prints its input."}, func() *box.Box {
		return NewPrint(out)
	})
}

func envMap(environ func() []string) map[string]string {
	m := make(map[string]string)
	for _, e := range environ() {
		if k, v, ok := strings.Cut(e, "="); ok {
			m[k] = v
		}
	}
	return m
}

// NewEnv builds a box that publishes the whole environment on "all" once
// attached, and the variable named by "name" on "value".
func NewEnv(environ func() []string) *box.Box {
	b := box.New(EnvType)
	all := b.MustOutput("all")
	out := b.MustOutput("value")

	b.ScheduleProcessing(func(context.Context, task.Yield) error {
		v, err := value.FromGo(envMap(environ))
		if err != nil {
			return err
		}
		return all.Write(v)
	})

	var name *box.InputPlug
	name = b.MustInput("name", func(context.Context, task.Yield) error {
		n, ok := name.Read().(value.String)
		if !ok {
			return out.Write(nil)
		}
		v, found := envMap(environ)[string(n)]
		if !found {
			return out.Write(nil)
		}
		return out.Write(value.String(v))
	})
	return b
}

// NewPrint builds a box that writes every value reaching "value" to w.
func NewPrint(w io.Writer) *box.Box {
	b := box.New(PrintType)
	var in *box.InputPlug
	in = b.MustInput("value", func(ctx context.Context, _ task.Yield) error {
		ctxlog.FromContext(ctx).Info("Printing input", "box", b.ID())
		_, err := fmt.Fprintf(w, "%s: %s\n", b.ID(), value.Format(in.Read()))
		return err
	})
	return b
}
