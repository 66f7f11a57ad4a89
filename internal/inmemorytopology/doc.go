// Package inmemorytopology provides a thread-safe, in-memory implementation
// of topologystore.Store. Programs are small enough to live in memory and are
// persisted separately through hclprogram.
package inmemorytopology
