// Package dag is a small directed graph of named nodes used to order
// definitions that depend on each other. An edge from A to B records that B
// depends on A. The graph detects cycles, reporting the offending path, and
// produces a deterministic topological order.
//
// A Graph is built and queried by a single goroutine; it is not safe for
// concurrent use.
package dag
