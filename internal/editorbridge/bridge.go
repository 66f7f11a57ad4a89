package editorbridge

import (
	"context"

	"github.com/specialistvlad/boxwire/internal/ctxlog"
	"github.com/specialistvlad/boxwire/internal/session"
	"github.com/specialistvlad/boxwire/internal/value"
)

// Bridge is a ui.Shell that forwards notifications to the editor and feeds
// editor commands to a session.
type Bridge struct {
	ctx  context.Context
	conn Conn
	sess *session.Session
}

// New creates a bridge over conn. Notifications that need the program are
// dropped until Attach is called.
func New(ctx context.Context, conn Conn) *Bridge {
	return &Bridge{ctx: ctxlog.Component(ctx, "editorbridge"), conn: conn}
}

// Attach binds the bridge to sess and starts accepting editor commands.
func (b *Bridge) Attach(sess *session.Session) {
	b.sess = sess
	b.registerCommands()
}

// Close disconnects from the editor.
func (b *Bridge) Close() { b.conn.Close() }

func (b *Bridge) emit(event string, payload any) {
	if err := b.conn.Emit(event, payload); err != nil {
		ctxlog.FromContext(b.ctx).Warn("Failed to emit editor event.", "event", event, "error", err)
	}
}

func (b *Bridge) StartBoxProcessing(id string) {
	b.emit(EventBoxStart, map[string]any{"id": id})
}

func (b *Bridge) FinishBoxProcessing(id string, err error) {
	payload := map[string]any{"id": id}
	if err != nil {
		payload["error"] = err.Error()
	}
	b.emit(EventBoxFinish, payload)
}

func (b *Bridge) RefreshBox(id string) {
	if b.sess == nil {
		return
	}
	view, ok := b.sess.Program().View(id)
	if !ok {
		return
	}
	b.emit(EventBoxRefresh, map[string]any{"id": id, "view": value.ToNative(view)})
}

func (b *Bridge) RefreshProgramStructure() {
	if b.sess == nil {
		return
	}
	doc := b.sess.Document()
	payload := structurePayload{Boxes: []boxPayload{}, Wires: []wirePayload{}}
	for _, r := range doc.Boxes {
		payload.Boxes = append(payload.Boxes, boxPayload{ID: r.ID, Type: r.Type, X: r.X, Y: r.Y})
	}
	for _, w := range doc.Wires {
		payload.Wires = append(payload.Wires, wirePayload{
			ID: w.ID, SrcBox: w.SrcBox, SrcPlug: w.SrcPlug, DestBox: w.DestBox, DestPlug: w.DestPlug,
		})
	}
	b.emit(EventStructure, payload)
}

func (b *Bridge) FlashWireActivity(id string) {
	b.emit(EventWireFlash, map[string]any{"id": id})
}
