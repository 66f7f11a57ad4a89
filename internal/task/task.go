// Package task defines the unit of scheduled box work and the suspension
// primitive handed to it.
//
// A Func runs to completion or suspends itself by calling its Yield. Calling
// Yield with a nil Future gives up the rest of the current scheduler turn;
// calling it with a Future parks the task until that future settles. Either
// way Yield returns what the task is resumed with: (nil, nil) after a plain
// yield, the future's result after an await, or ErrCancelled when the task is
// being torn down.
package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/boxwire/internal/value"
)

// ErrCancelled is raised at a task's suspension point when the task is being
// cancelled. Tasks may inspect it but must not resume writing outputs.
var ErrCancelled = errors.New("task cancelled")

// Func is a unit of box work.
type Func func(ctx context.Context, y Yield) error

// Yield suspends the calling task. See the package documentation.
type Yield func(waitOn *Future) (value.Value, error)

// State is the state of the task at the head of a box's queue.
type State int

const (
	NotStarted State = iota
	Executing
	Paused
	Awaiting
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Executing:
		return "executing"
	case Paused:
		return "paused"
	case Awaiting:
		return "awaiting"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
