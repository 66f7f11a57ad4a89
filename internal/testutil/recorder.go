package testutil

import (
	"fmt"
	"sync"
)

// Notification is one call received by a Recorder.
type Notification struct {
	Kind string // start, finish, refresh, structure or flash
	ID   string
	Err  error
}

func (n Notification) String() string {
	if n.Err != nil {
		return fmt.Sprintf("%s:%s:%v", n.Kind, n.ID, n.Err)
	}
	if n.ID == "" {
		return n.Kind
	}
	return n.Kind + ":" + n.ID
}

// Recorder is a ui.Shell that remembers every notification.
type Recorder struct {
	mu    sync.Mutex
	calls []Notification
}

func (r *Recorder) add(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, n)
}

func (r *Recorder) StartBoxProcessing(id string) { r.add(Notification{Kind: "start", ID: id}) }

func (r *Recorder) FinishBoxProcessing(id string, err error) {
	r.add(Notification{Kind: "finish", ID: id, Err: err})
}

func (r *Recorder) RefreshBox(id string)        { r.add(Notification{Kind: "refresh", ID: id}) }
func (r *Recorder) RefreshProgramStructure()    { r.add(Notification{Kind: "structure"}) }
func (r *Recorder) FlashWireActivity(id string) { r.add(Notification{Kind: "flash", ID: id}) }

// All returns a copy of every notification in arrival order.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.calls...)
}

// Strings renders notifications of the given kinds (all kinds when none are
// given) with Notification.String.
func (r *Recorder) Strings(kinds ...string) []string {
	want := map[string]bool{}
	for _, k := range kinds {
		want[k] = true
	}
	var out []string
	for _, n := range r.All() {
		if len(want) == 0 || want[n.Kind] {
			out = append(out, n.String())
		}
	}
	return out
}

// Count returns how many notifications of kind concerned id.
func (r *Recorder) Count(kind, id string) int {
	n := 0
	for _, c := range r.All() {
		if c.Kind == kind && c.ID == id {
			n++
		}
	}
	return n
}

// LastError returns the error of the most recent finish notification for id.
func (r *Recorder) LastError(id string) error {
	all := r.All()
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].Kind == "finish" && all[i].ID == id {
			return all[i].Err
		}
	}
	return nil
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}
