package replicatedkv

import "fmt"

// LeaderChangedError reports that a write was refused because the local
// node is not the current leader for the targeted partition. Leader
// carries the current leader's address, if known, so the caller can
// redirect.
type LeaderChangedError struct {
	Leader string
}

func (e *LeaderChangedError) Error() string {
	return fmt.Sprintf("replicatedkv: not leader, current leader hint %q", e.Leader)
}

// LeaderHint implements pkg/executor's leaderHinter interface so the
// executor can surface a redirect without importing this package.
func (e *LeaderChangedError) LeaderHint() string {
	return e.Leader
}

// PartitionNotFoundError reports a request for a (space, part) this
// process does not host a replica of.
type PartitionNotFoundError struct {
	Space int32
	Part  uint32
}

func (e *PartitionNotFoundError) Error() string {
	return fmt.Sprintf("replicatedkv: no local replica for space=%d part=%d", e.Space, e.Part)
}
