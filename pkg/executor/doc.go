// Package executor implements the update executor: the per-row
// read-modify-write state machine that backs both UPDATE and UPSERT. One
// Executor serves every row in a space; Execute runs the full
// lock/read/filter/collect/apply/encode/index-delta/commit/release
// pipeline for a single vertex or edge key, hands the populated write
// batch to the replicated KV layer, and returns a Result, or a
// *StorageError describing why no batch was committed.
//
// The pipeline is a fixed sequence with no per-row polymorphism to
// dispatch on, so Execute is a single function rather than a tree of
// node types.
package executor
