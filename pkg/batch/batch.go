// Package batch implements the write batch builder: an insertion-order
// accumulator of puts and removes. The builder itself
// imposes no dedup or reordering; the replicated KV layer (pkg/replicatedkv
// via pkg/kvengine) guarantees all-or-nothing atomicity and that the last
// operation on a key within the batch wins.
package batch

import "github.com/cuemby/graphd/pkg/kvengine"

// Batch accumulates puts and removes in insertion order.
type Batch struct {
	ops []kvengine.Op
}

// New returns an empty Batch.
func New() *Batch {
	return &Batch{}
}

// Put appends a put operation.
func (b *Batch) Put(key, value []byte) {
	b.ops = append(b.ops, kvengine.Op{Key: key, Value: value})
}

// Remove appends a remove operation.
func (b *Batch) Remove(key []byte) {
	b.ops = append(b.ops, kvengine.Op{Key: key, Value: nil})
}

// Len returns the number of accumulated operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Ops returns the accumulated operations in insertion order. The slice is
// shared with the Batch; callers must not mutate it.
func (b *Batch) Ops() []kvengine.Op {
	return b.ops
}
