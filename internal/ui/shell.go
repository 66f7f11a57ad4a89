// Package ui defines the notifications the runtime sends to the editor shell.
//
// The runtime only ever calls into a Shell; the shell reaches back through
// the program's public API. Rendering is entirely the shell's business.
package ui

import (
	"log/slog"
)

// Shell receives runtime notifications. Every method is called from the
// event loop and must not block.
type Shell interface {
	// StartBoxProcessing turns the box's busy indicator on.
	StartBoxProcessing(boxID string)
	// FinishBoxProcessing turns it off; err is the failure to display, if any.
	FinishBoxProcessing(boxID string, err error)
	// RefreshBox asks for the box to be redrawn from its plug state.
	RefreshBox(boxID string)
	// RefreshProgramStructure reports that boxes or wires changed.
	RefreshProgramStructure()
	// FlashWireActivity reports that a value just traversed the wire.
	FlashWireActivity(wireID string)
}

// Nop ignores every notification.
type Nop struct{}

func (Nop) StartBoxProcessing(string)        {}
func (Nop) FinishBoxProcessing(string, error) {}
func (Nop) RefreshBox(string)                {}
func (Nop) RefreshProgramStructure()         {}
func (Nop) FlashWireActivity(string)         {}

// Multi fans notifications out to several shells in order.
type Multi []Shell

func (m Multi) StartBoxProcessing(boxID string) {
	for _, s := range m {
		s.StartBoxProcessing(boxID)
	}
}

func (m Multi) FinishBoxProcessing(boxID string, err error) {
	for _, s := range m {
		s.FinishBoxProcessing(boxID, err)
	}
}

func (m Multi) RefreshBox(boxID string) {
	for _, s := range m {
		s.RefreshBox(boxID)
	}
}

func (m Multi) RefreshProgramStructure() {
	for _, s := range m {
		s.RefreshProgramStructure()
	}
}

func (m Multi) FlashWireActivity(wireID string) {
	for _, s := range m {
		s.FlashWireActivity(wireID)
	}
}

// Join combines shells, dropping nils. It returns Nop when nothing is left.
func Join(shells ...Shell) Shell {
	var out Multi
	for _, s := range shells {
		if s != nil {
			out = append(out, s)
		}
	}
	switch len(out) {
	case 0:
		return Nop{}
	case 1:
		return out[0]
	default:
		return out
	}
}

// LogShell writes every notification to a logger. It is what a headless
// session uses in place of an editor.
type LogShell struct {
	Logger *slog.Logger
}

func (s LogShell) StartBoxProcessing(boxID string) {
	s.Logger.Debug("Box started processing.", "box", boxID)
}

func (s LogShell) FinishBoxProcessing(boxID string, err error) {
	if err != nil {
		s.Logger.Warn("Box finished processing with error.", "box", boxID, "error", err)
		return
	}
	s.Logger.Debug("Box finished processing.", "box", boxID)
}

func (s LogShell) RefreshBox(boxID string) {
	s.Logger.Debug("Box refresh.", "box", boxID)
}

func (s LogShell) RefreshProgramStructure() {
	s.Logger.Debug("Program structure changed.")
}

func (s LogShell) FlashWireActivity(wireID string) {
	s.Logger.Debug("Wire activity.", "wire", wireID)
}
