package editorbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/specialistvlad/boxwire/internal/ctxlog"
	"github.com/specialistvlad/boxwire/internal/value"
)

type command func(ctx context.Context, raw []byte) error

func (b *Bridge) registerCommands() {
	commands := map[string]command{
		CmdAddBox:         b.addBox,
		CmdDeleteBox:      b.deleteBox,
		CmdMoveBox:        b.moveBox,
		CmdBoxEvent:       b.boxEvent,
		CmdSetPlug:        b.setPlug,
		CmdAddWire:        b.addWire,
		CmdDeleteWire:     b.deleteWire,
		CmdResolvePromise: b.resolvePromise,
		CmdRejectPromise:  b.rejectPromise,
		CmdTerminate:      b.terminate,
		CmdSetView:        b.setView,
	}
	for name, cmd := range commands {
		b.conn.On(name, b.handler(name, cmd))
	}
}

// handler adapts a command to a socket.io listener. Listeners run on the
// socket's goroutine, so the command itself is posted to the loop.
func (b *Bridge) handler(name string, cmd command) func(args ...any) {
	return func(args ...any) {
		var raw []byte
		if len(args) > 0 {
			var err error
			raw, err = json.Marshal(args[0])
			if err != nil {
				b.fail(name, fmt.Errorf("malformed payload: %w", err))
				return
			}
		}
		b.sess.Loop().Post(func(ctx context.Context) {
			ctx = ctxlog.With(ctx, "command", name)
			ctxlog.FromContext(ctx).Debug("Editor command received.")
			if err := cmd(ctx, raw); err != nil {
				b.fail(name, err)
			}
		})
	}
}

func (b *Bridge) fail(name string, err error) {
	ctxlog.FromContext(b.ctx).Warn("Editor command failed.", "command", name, "error", err)
	b.emit(EventCommandError, map[string]any{"command": name, "error": err.Error()})
}

func decode[T any](raw []byte) (T, error) {
	var req T
	if len(raw) == 0 {
		return req, errors.New("missing payload")
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("malformed payload: %w", err)
	}
	return req, nil
}

func (b *Bridge) addBox(ctx context.Context, raw []byte) error {
	req, err := decode[addBoxRequest](raw)
	if err != nil {
		return err
	}
	_, err = b.sess.AddBox(ctx, req.Type, req.ID, req.X, req.Y)
	return err
}

func (b *Bridge) deleteBox(ctx context.Context, raw []byte) error {
	req, err := decode[boxRequest](raw)
	if err != nil {
		return err
	}
	return b.sess.Program().DeleteBox(ctx, req.ID)
}

func (b *Bridge) moveBox(ctx context.Context, raw []byte) error {
	req, err := decode[boxRequest](raw)
	if err != nil {
		return err
	}
	return b.sess.Program().MoveBox(ctx, req.ID, req.X, req.Y)
}

func (b *Bridge) boxEvent(_ context.Context, raw []byte) error {
	req, err := decode[boxEventRequest](raw)
	if err != nil {
		return err
	}
	payload, err := value.FromNative(req.Payload)
	if err != nil {
		return err
	}
	return b.sess.Program().TriggerEvent(req.Box, req.Event, payload)
}

func (b *Bridge) setPlug(_ context.Context, raw []byte) error {
	req, err := decode[setPlugRequest](raw)
	if err != nil {
		return err
	}
	v, err := value.FromNative(req.Value)
	if err != nil {
		return err
	}
	return b.sess.Program().SchedulePlugUpdate(req.Box, req.Plug, v)
}

func (b *Bridge) addWire(ctx context.Context, raw []byte) error {
	req, err := decode[wireRequest](raw)
	if err != nil {
		return err
	}
	_, err = b.sess.Program().AddWire(ctx, req.SrcBox, req.SrcPlug, req.DestBox, req.DestPlug, req.ID)
	return err
}

func (b *Bridge) deleteWire(ctx context.Context, raw []byte) error {
	req, err := decode[wireRequest](raw)
	if err != nil {
		return err
	}
	return b.sess.Program().DeleteWire(ctx, req.ID)
}

func (b *Bridge) resolvePromise(_ context.Context, raw []byte) error {
	req, err := decode[promiseRequest](raw)
	if err != nil {
		return err
	}
	v, err := value.FromNative(req.Value)
	if err != nil {
		return err
	}
	return b.sess.Promises().Resolve(req.Name, v)
}

func (b *Bridge) rejectPromise(_ context.Context, raw []byte) error {
	req, err := decode[promiseRequest](raw)
	if err != nil {
		return err
	}
	msg := req.Error
	if msg == "" {
		msg = "rejected by editor"
	}
	return b.sess.Promises().Reject(req.Name, errors.New(msg))
}

func (b *Bridge) terminate(ctx context.Context, _ []byte) error {
	return b.sess.Program().TerminateAll(ctx)
}

// setView replaces the view settings saved with the program. A null view
// clears them.
func (b *Bridge) setView(_ context.Context, raw []byte) error {
	req, err := decode[viewRequest](raw)
	if err != nil {
		return err
	}
	v, err := value.FromNative(req.View)
	if err != nil {
		return err
	}
	cv, err := value.ToCty(v)
	if err != nil {
		return fmt.Errorf("view: %w", err)
	}
	b.sess.SetView(cv)
	return nil
}
