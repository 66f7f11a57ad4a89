package task

import (
	"errors"
	"sync"

	"github.com/specialistvlad/boxwire/internal/value"
)

var errRejected = errors.New("future rejected")

// Future is a settle-once result. Resolve and Reject may be called from any
// goroutine; only the first call has an effect.
type Future struct {
	mu        sync.Mutex
	settled   bool
	val       value.Value
	err       error
	callbacks []func(value.Value, error)
	done      chan struct{}
}

// NewFuture returns a pending future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a future that already holds v.
func Resolved(v value.Value) *Future {
	f := NewFuture()
	f.Resolve(v)
	return f
}

// Rejected returns a future that already failed with err.
func Rejected(err error) *Future {
	f := NewFuture()
	f.Reject(err)
	return f
}

// Resolve settles the future with v. It reports whether this call settled it.
func (f *Future) Resolve(v value.Value) bool {
	return f.settle(v, nil)
}

// Reject settles the future with err. A nil err is replaced by a generic one
// so a rejection can never be mistaken for a resolution.
func (f *Future) Reject(err error) bool {
	if err == nil {
		err = errRejected
	}
	return f.settle(nil, err)
}

func (f *Future) settle(v value.Value, err error) bool {
	f.mu.Lock()
	if f.settled {
		f.mu.Unlock()
		return false
	}
	f.settled = true
	f.val, f.err = v, err
	cbs := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range cbs {
		cb(v, err)
	}
	return true
}

// OnSettle registers fn to run once the future settles. If it has already
// settled, fn runs immediately on the calling goroutine.
func (f *Future) OnSettle(fn func(value.Value, error)) {
	f.mu.Lock()
	if !f.settled {
		f.callbacks = append(f.callbacks, fn)
		f.mu.Unlock()
		return
	}
	v, err := f.val, f.err
	f.mu.Unlock()
	fn(v, err)
}

// Done is closed once the future settles.
func (f *Future) Done() <-chan struct{} { return f.done }

// Settled reports whether the future has settled.
func (f *Future) Settled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

// Result returns the settled value and error. It must only be called after
// Done is closed.
func (f *Future) Result() (value.Value, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.val, f.err
}
