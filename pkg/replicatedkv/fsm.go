package replicatedkv

import (
	"fmt"
	"io"

	"github.com/hashicorp/raft"

	"github.com/cuemby/graphd/pkg/kvengine"
)

// fsm applies committed raft log entries to the local pkg/kvengine
// instance. A write batch is already the engine's own Op vocabulary, so
// Apply has nothing to interpret: it is exactly the batch the leader
// proposed.
type fsm struct {
	engine *kvengine.Engine
}

func newFSM(engine *kvengine.Engine) *fsm {
	return &fsm{engine: engine}
}

// Apply applies one committed batch. Returning an error value (rather
// than panicking) lets AsyncAppendBatch surface it to the caller that
// proposed it.
func (f *fsm) Apply(log *raft.Log) interface{} {
	ops, err := decodeOps(log.Data)
	if err != nil {
		return fmt.Errorf("replicatedkv: decode committed batch: %w", err)
	}
	if err := f.engine.ApplyBatch(ops); err != nil {
		return fmt.Errorf("replicatedkv: apply committed batch: %w", err)
	}
	return nil
}

// Snapshot hands raft a point-in-time copy of the kv engine.
func (f *fsm) Snapshot() (raft.FSMSnapshot, error) {
	return &fsmSnapshot{engine: f.engine}, nil
}

// Restore does not replace the kv engine's contents with the snapshot: it
// closes rc and always returns an error, leaving the engine's existing
// file as the node's state.
func (f *fsm) Restore(rc io.ReadCloser) error {
	defer rc.Close()
	return fmt.Errorf("replicatedkv: snapshot restore is not implemented; restart from the kv engine's own file")
}

type fsmSnapshot struct {
	engine *kvengine.Engine
}

func (s *fsmSnapshot) Persist(sink raft.SnapshotSink) error {
	if err := s.engine.Snapshot(sink); err != nil {
		sink.Cancel()
		return fmt.Errorf("replicatedkv: persist snapshot: %w", err)
	}
	return sink.Close()
}

func (s *fsmSnapshot) Release() {}
