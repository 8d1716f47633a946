package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cuemby/graphd/pkg/types"
)

type partKey struct {
	space types.SpaceID
	part  types.PartitionID
}

// activeCounters tracks, per partition, how many Execute calls are
// currently in flight, so a background index rebuilder can quiesce by
// waiting for the count to drain to zero before flipping an index to
// Locked.
type activeCounters struct {
	mu     sync.Mutex
	counts map[partKey]*int64
}

func newActiveCounters() *activeCounters {
	return &activeCounters{counts: make(map[partKey]*int64)}
}

func (a *activeCounters) counter(space types.SpaceID, part types.PartitionID) *int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	k := partKey{space, part}
	c, ok := a.counts[k]
	if !ok {
		c = new(int64)
		a.counts[k] = c
	}
	return c
}

func (a *activeCounters) enter(space types.SpaceID, part types.PartitionID) func() {
	c := a.counter(space, part)
	atomic.AddInt64(c, 1)
	return func() { atomic.AddInt64(c, -1) }
}

// ActiveCount returns the number of Execute calls currently in flight for
// (space, part).
func (e *Executor) ActiveCount(space types.SpaceID, part types.PartitionID) int64 {
	return atomic.LoadInt64(e.active.counter(space, part))
}

// Quiesce blocks until ActiveCount(space, part) drains to zero or ctx is
// done, whichever comes first.
func (e *Executor) Quiesce(ctx context.Context, space types.SpaceID, part types.PartitionID) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		if e.ActiveCount(space, part) == 0 {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
