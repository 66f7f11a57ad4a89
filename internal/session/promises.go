package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/specialistvlad/boxwire/internal/task"
	"github.com/specialistvlad/boxwire/internal/value"
)

// ErrNoPromise is returned when settling a name nobody created.
var ErrNoPromise = errors.New("no such promise")

// Promises is a registry of named futures. Boxes create a promise and await
// it; an operator settles it by name from the CLI or the editor.
//
// Thread-safety: safe for concurrent use.
type Promises struct {
	mu sync.Mutex
	m  map[string]*task.Future
}

// NewPromises creates an empty registry.
func NewPromises() *Promises {
	return &Promises{m: make(map[string]*task.Future)}
}

// Create returns the pending promise registered under name, or registers a
// new one. A settled promise under the same name is replaced.
func (p *Promises) Create(name string) *task.Future {
	p.mu.Lock()
	defer p.mu.Unlock()
	if f, ok := p.m[name]; ok && !f.Settled() {
		return f
	}
	f := task.NewFuture()
	p.m[name] = f
	return f
}

// Resolve settles the named promise with v.
func (p *Promises) Resolve(name string, v value.Value) error {
	f, err := p.take(name)
	if err != nil {
		return err
	}
	f.Resolve(value.Publish(v))
	return nil
}

// Reject settles the named promise with err.
func (p *Promises) Reject(name string, err error) error {
	f, ferr := p.take(name)
	if ferr != nil {
		return ferr
	}
	f.Reject(err)
	return nil
}

// Pending returns the names of unsettled promises, sorted.
func (p *Promises) Pending() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for name, f := range p.m {
		if !f.Settled() {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// RejectAll rejects every pending promise and empties the registry.
func (p *Promises) RejectAll(err error) {
	p.mu.Lock()
	m := p.m
	p.m = make(map[string]*task.Future)
	p.mu.Unlock()
	for _, f := range m {
		f.Reject(err)
	}
}

func (p *Promises) take(name string) (*task.Future, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f, ok := p.m[name]
	if !ok || f.Settled() {
		return nil, fmt.Errorf("promise %q: %w", name, ErrNoPromise)
	}
	delete(p.m, name)
	return f, nil
}

type promisesKey struct{}

// WithPromises returns a context carrying p. Session.Run installs it so box
// tasks can reach the registry.
func WithPromises(ctx context.Context, p *Promises) context.Context {
	return context.WithValue(ctx, promisesKey{}, p)
}

// PromisesFrom returns the registry carried by ctx.
func PromisesFrom(ctx context.Context) (*Promises, bool) {
	p, ok := ctx.Value(promisesKey{}).(*Promises)
	return p, ok
}
