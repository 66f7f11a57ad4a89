// Package session is the application context of a running program: it owns
// the event loop, the program and its scheduler, the box status store and the
// named promises that boxes can await.
//
// A session is driven by exactly one goroutine calling Run (or RunUntilIdle
// in tests). Other goroutines reach the program through Do.
package session
