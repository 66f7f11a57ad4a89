// Package inmemorystore provides a thread-safe, in-memory implementation of
// boxstate.Store backed by sync.Map.
package inmemorystore
