package replicatedkv

import (
	"fmt"
	"time"

	"github.com/hashicorp/raft"

	"github.com/cuemby/graphd/pkg/metrics"
	"github.com/cuemby/graphd/pkg/types"
)

// statsCollector periodically samples raft.Stats for one partition into
// the process's Prometheus registry, ticker-driven the way a cluster
// metrics collector samples cluster state.
type statsCollector struct {
	node   *Node
	space  types.SpaceID
	part   types.PartitionID
	stopCh chan struct{}
}

func newStatsCollector(node *Node, space types.SpaceID, part types.PartitionID) *statsCollector {
	return &statsCollector{node: node, space: space, part: part, stopCh: make(chan struct{})}
}

// Start begins the sampling loop.
func (c *statsCollector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop halts the sampling loop.
func (c *statsCollector) Stop() {
	close(c.stopCh)
}

func (c *statsCollector) collect() {
	if c.node.raft == nil {
		return
	}
	space := fmt.Sprintf("%d", c.space)
	part := fmt.Sprintf("%d", c.part)

	isLeader := 0.0
	if c.node.raft.State() == raft.Leader {
		isLeader = 1.0
	}
	metrics.RaftLeader.WithLabelValues(space, part).Set(isLeader)

	stats := c.node.raft.Stats()
	if appliedStr, ok := stats["applied_index"]; ok {
		var applied float64
		if _, err := fmt.Sscanf(appliedStr, "%f", &applied); err == nil {
			metrics.RaftAppliedIndex.WithLabelValues(space, part).Set(applied)
		}
	}
}
