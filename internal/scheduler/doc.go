// Package scheduler runs box tasks cooperatively on the event loop.
//
// # Model
//
// Every registered box owns a record in an arena, addressed by a stable
// Handle. A record holds the box's FIFO of pending tasks and the state of the
// task at its head: NotStarted, Executing, Paused or Awaiting. Boxes with
// pending work form the active ring, a circular doubly-linked list whose
// next/prev pointers are handles.
//
// At most one task executes at any time. Each dispatch turn (Step) picks the
// current ring box, advances the ring pointer past it, and either starts its
// head task or resumes it. The turn ends when the task finishes or suspends
// through its Yield. A plain yield leaves the box Paused and in the ring; an
// await parks it as Awaiting outside the ring until the awaited future
// settles, at which point it becomes Paused and rejoins the ring.
//
// # Responsiveness
//
// The run loop flushes deferred box refreshes and wire flashes whenever more
// than Config.MaxUIDelay elapsed since the last flush, then gives the event
// loop a turn by re-posting itself. Slices longer than Config.WarnSlice or
// Config.LongSlice are logged; they are never interrupted.
//
// # Cancellation
//
// TerminateAll and TerminateBox drain queues: not-started tasks are dropped
// and suspended tasks are resumed with task.ErrCancelled at their suspension
// point. A late settlement of a future awaited by a cancelled task is
// discarded through a per-suspension generation number.
package scheduler
