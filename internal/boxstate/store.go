// Package boxstate defines the store for per-box execution status: whether a
// box is idle, busy or failed, the error of its last busy period, and the
// last rendered view of its plugs.
//
// The store is fed from runtime notifications through Tracker and read by the
// status endpoint, which runs on its own goroutine. It is observability only;
// the scheduler never consults it.
package boxstate

import (
	"context"

	"github.com/specialistvlad/boxwire/internal/value"
)

// Status is the execution status of a box.
type Status int

const (
	// Idle is the default for boxes that have no pending work.
	Idle Status = iota
	// Processing means the box has pending tasks.
	Processing
	// Failed means the last busy period ended with an error.
	Failed
)

func (s Status) String() string {
	switch s {
	case Processing:
		return "processing"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Entry is everything recorded about one box.
type Entry struct {
	Status Status
	Err    error
	View   value.Value
}

// Store records box status.
//
// Thread-safety: implementations must be safe for concurrent use.
type Store interface {
	// SetStatus records the box's status.
	SetStatus(ctx context.Context, id string, status Status) error
	// GetStatus returns Idle for boxes with no recorded status.
	GetStatus(ctx context.Context, id string) (Status, error)
	// SetError records the error of the last busy period; nil clears it.
	SetError(ctx context.Context, id string, err error) error
	// GetError returns nil if nothing failed.
	GetError(ctx context.Context, id string) (error, error)
	// SetView records the box's last rendered plug values.
	SetView(ctx context.Context, id string, view value.Value) error
	// GetView returns nil if the box was never rendered.
	GetView(ctx context.Context, id string) (value.Value, error)
	// Forget drops everything about a deleted box.
	Forget(ctx context.Context, id string) error
	// Snapshot returns every recorded entry.
	Snapshot(ctx context.Context) (map[string]Entry, error)
}
