package boxstate

import (
	"context"

	"github.com/specialistvlad/boxwire/internal/ctxlog"
	"github.com/specialistvlad/boxwire/internal/value"
)

// ViewFunc renders a box by id. ok is false for unknown boxes.
type ViewFunc func(id string) (view value.Value, ok bool)

// Tracker is a ui.Shell that writes notifications into a Store.
type Tracker struct {
	ctx   context.Context
	store Store
	view  ViewFunc
}

// NewTracker creates a tracker. view may be nil, in which case refreshes are
// not recorded.
func NewTracker(ctx context.Context, store Store, view ViewFunc) *Tracker {
	return &Tracker{ctx: ctx, store: store, view: view}
}

// SetViewFunc installs the renderer once the program exists.
func (t *Tracker) SetViewFunc(view ViewFunc) { t.view = view }

func (t *Tracker) StartBoxProcessing(id string) {
	t.check(t.store.SetStatus(t.ctx, id, Processing))
}

func (t *Tracker) FinishBoxProcessing(id string, err error) {
	status := Idle
	if err != nil {
		status = Failed
	}
	t.check(t.store.SetStatus(t.ctx, id, status))
	t.check(t.store.SetError(t.ctx, id, err))
}

func (t *Tracker) RefreshBox(id string) {
	if t.view == nil {
		return
	}
	v, ok := t.view(id)
	if !ok {
		return
	}
	t.check(t.store.SetView(t.ctx, id, v))
}

// RefreshProgramStructure forgets boxes that no longer exist.
func (t *Tracker) RefreshProgramStructure() {
	if t.view == nil {
		return
	}
	snap, err := t.store.Snapshot(t.ctx)
	if err != nil {
		t.check(err)
		return
	}
	for id := range snap {
		if _, ok := t.view(id); !ok {
			t.check(t.store.Forget(t.ctx, id))
		}
	}
}

func (t *Tracker) FlashWireActivity(string) {}

func (t *Tracker) check(err error) {
	if err != nil {
		ctxlog.FromContext(t.ctx).Warn("Failed to record box status.", "error", err)
	}
}
