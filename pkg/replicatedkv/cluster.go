package replicatedkv

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/raft"

	"github.com/cuemby/graphd/pkg/kvengine"
	"github.com/cuemby/graphd/pkg/types"
)

const applyTimeout = 5 * time.Second

// applyTimeoutFor derives the raft apply timeout from ctx's deadline when
// it carries one, so the caller's deadline reaches the replicated-append
// call, falling back to applyTimeout otherwise.
func applyTimeoutFor(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if remaining := time.Until(dl); remaining > 0 {
			return remaining
		}
	}
	return applyTimeout
}

// AsyncAppendBatch proposes ops as one raft log entry for this node's
// partition and blocks until it is either committed locally or the
// proposal fails. Reads do not go through this path: Get hits the local
// engine snapshot directly.
func (n *Node) AsyncAppendBatch(ctx context.Context, ops []kvengine.Op) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.raft.State() != raft.Leader {
		return &LeaderChangedError{Leader: string(n.raft.Leader())}
	}
	data, err := encodeOps(ops)
	if err != nil {
		return err
	}
	future := n.raft.Apply(data, applyTimeoutFor(ctx))
	if err := future.Error(); err != nil {
		if err == raft.ErrNotLeader || err == raft.ErrLeadershipLost {
			return &LeaderChangedError{Leader: string(n.raft.Leader())}
		}
		return err
	}
	if result := future.Response(); result != nil {
		if applyErr, ok := result.(error); ok {
			return applyErr
		}
	}
	return nil
}

// Get reads key from the local kv engine snapshot.
func (n *Node) Get(key []byte) ([]byte, error) {
	return n.engine.Get(key)
}

// Leader returns the current leader's address hint for this partition,
// or the empty string if unknown.
func (n *Node) Leader() string {
	return string(n.raft.Leader())
}

// Cluster routes a (space, part)-scoped operation to the Node that
// replicates that partition locally, the way pkg/dispatcher fans a
// multi-partition request out per partition.
type Cluster struct {
	mu    sync.RWMutex
	nodes map[partKey]*Node
}

type partKey struct {
	space types.SpaceID
	part  types.PartitionID
}

// NewCluster builds an empty Cluster.
func NewCluster() *Cluster {
	return &Cluster{nodes: make(map[partKey]*Node)}
}

// Register associates a partition with the Node that replicates it
// locally.
func (c *Cluster) Register(space types.SpaceID, part types.PartitionID, node *Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes[partKey{space, part}] = node
}

func (c *Cluster) lookup(space types.SpaceID, part types.PartitionID) (*Node, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n, ok := c.nodes[partKey{space, part}]
	if !ok {
		return nil, &PartitionNotFoundError{Space: int32(space), Part: uint32(part)}
	}
	return n, nil
}

// AsyncAppendBatch implements the ReplicatedKV collaborator contract for
// the partition-routing case.
func (c *Cluster) AsyncAppendBatch(ctx context.Context, space types.SpaceID, part types.PartitionID, ops []kvengine.Op) error {
	n, err := c.lookup(space, part)
	if err != nil {
		return err
	}
	return n.AsyncAppendBatch(ctx, ops)
}

// Get implements the ReplicatedKV collaborator contract.
func (c *Cluster) Get(space types.SpaceID, part types.PartitionID, key []byte) ([]byte, error) {
	n, err := c.lookup(space, part)
	if err != nil {
		return nil, err
	}
	return n.Get(key)
}

// PartLeader implements the ReplicatedKV collaborator contract.
func (c *Cluster) PartLeader(space types.SpaceID, part types.PartitionID) (string, error) {
	n, err := c.lookup(space, part)
	if err != nil {
		return "", err
	}
	return n.Leader(), nil
}
