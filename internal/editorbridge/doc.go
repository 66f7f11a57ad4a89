// Package editorbridge connects a session to a remote editor over socket.io.
//
// Outgoing, the Bridge is a ui.Shell: every runtime notification is emitted
// as an event. Incoming, editor commands (add a box, set a plug, settle a
// promise, ...) are posted onto the session's event loop, so they run
// between scheduler turns like any other job.
//
// Failed commands are answered with an "error" event naming the command.
package editorbridge
