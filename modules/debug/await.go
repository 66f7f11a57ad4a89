package debug

import (
	"context"
	"fmt"

	"github.com/specialistvlad/boxwire/internal/box"
	"github.com/specialistvlad/boxwire/internal/session"
	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/value"
)

// NewAwait builds a box that, whenever "name" receives a promise name,
// creates that promise in the session, waits for it and publishes the
// value it resolves with.
func NewAwait() *box.Box {
	b := box.New(AwaitType)
	var name *box.InputPlug
	out := b.MustOutput("value")

	wait := func(ctx context.Context, y task.Yield) error {
		n, ok := name.Read().(value.String)
		if !ok || n == "" {
			return nil
		}
		promises, ok := session.PromisesFrom(ctx)
		if !ok {
			return fmt.Errorf("await %q: no promise registry in context", string(n))
		}
		v, err := y(promises.Create(string(n)))
		if err != nil {
			return fmt.Errorf("await %q: %w", string(n), err)
		}
		return out.Write(v)
	}
	name = b.MustInput("name", wait)
	if err := b.OnEvent(RunEvent, func(ctx context.Context, y task.Yield, _ value.Value) error {
		return wait(ctx, y)
	}); err != nil {
		panic(err)
	}
	return b
}
