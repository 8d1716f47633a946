package replicatedkv

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/raft"
	raftboltdb "github.com/hashicorp/raft-boltdb"
	"github.com/rs/zerolog"

	"github.com/cuemby/graphd/pkg/kvengine"
	"github.com/cuemby/graphd/pkg/types"
)

// Config is the constructor-supplied configuration for one partition's
// consensus group. No environment variables are part of the contract:
// every value arrives here.
type Config struct {
	NodeID   string
	BindAddr string
	DataDir  string
	Space    types.SpaceID
	Part     types.PartitionID
}

// Node is one partition's raft-replicated key/value store.
type Node struct {
	cfg       Config
	raft      *raft.Raft
	engine    *kvengine.Engine
	logger    zerolog.Logger
	collector *statsCollector
}

// Open creates the local kv engine and raft transport/stores for this
// partition but does not yet join or bootstrap a cluster.
func Open(cfg Config, logger zerolog.Logger) (*Node, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("replicatedkv: create data dir: %w", err)
	}
	engine, err := kvengine.Open(filepath.Join(cfg.DataDir, "data.db"))
	if err != nil {
		return nil, err
	}
	return &Node{cfg: cfg, engine: engine, logger: logger}, nil
}

// Engine returns the partition's underlying kv engine, for collaborators
// like pkg/indexstate that need direct read/write access outside the
// raft-replicated path.
func (n *Node) Engine() *kvengine.Engine {
	return n.engine
}

// Close releases the node's engine and raft resources.
func (n *Node) Close() error {
	if n.collector != nil {
		n.collector.Stop()
	}
	if n.raft != nil {
		if err := n.raft.Shutdown().Error(); err != nil {
			n.logger.Warn().Err(err).Msg("raft shutdown error")
		}
	}
	return n.engine.Close()
}

func (n *Node) startCollector() {
	n.collector = newStatsCollector(n, n.cfg.Space, n.cfg.Part)
	n.collector.Start()
}

func (n *Node) raftConfig() *raft.Config {
	cfg := raft.DefaultConfig()
	cfg.LocalID = raft.ServerID(n.cfg.NodeID)
	cfg.HeartbeatTimeout = 500 * time.Millisecond
	cfg.ElectionTimeout = 500 * time.Millisecond
	cfg.CommitTimeout = 50 * time.Millisecond
	cfg.LeaderLeaseTimeout = 250 * time.Millisecond
	return cfg
}

func (n *Node) newRaft() (*raft.Raft, *raft.NetworkTransport, error) {
	addr, err := net.ResolveTCPAddr("tcp", n.cfg.BindAddr)
	if err != nil {
		return nil, nil, fmt.Errorf("replicatedkv: resolve bind addr: %w", err)
	}
	transport, err := raft.NewTCPTransport(n.cfg.BindAddr, addr, 3, 10*time.Second, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("replicatedkv: create transport: %w", err)
	}
	snapshotStore, err := raft.NewFileSnapshotStore(n.cfg.DataDir, 2, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("replicatedkv: create snapshot store: %w", err)
	}
	logStore, err := raftboltdb.NewBoltStore(filepath.Join(n.cfg.DataDir, "raft-log.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("replicatedkv: create log store: %w", err)
	}
	stableStore, err := raftboltdb.NewBoltStore(filepath.Join(n.cfg.DataDir, "raft-stable.db"))
	if err != nil {
		return nil, nil, fmt.Errorf("replicatedkv: create stable store: %w", err)
	}
	r, err := raft.NewRaft(n.raftConfig(), newFSM(n.engine), logStore, stableStore, snapshotStore, transport)
	if err != nil {
		return nil, nil, fmt.Errorf("replicatedkv: create raft: %w", err)
	}
	return r, transport, nil
}

// Bootstrap starts a brand-new single-node cluster for this partition.
func (n *Node) Bootstrap() error {
	r, transport, err := n.newRaft()
	if err != nil {
		return err
	}
	n.raft = r
	config := raft.Configuration{
		Servers: []raft.Server{{ID: raft.ServerID(n.cfg.NodeID), Address: transport.LocalAddr()}},
	}
	if err := n.raft.BootstrapCluster(config).Error(); err != nil {
		return fmt.Errorf("replicatedkv: bootstrap cluster: %w", err)
	}
	n.startCollector()
	return nil
}

// Join starts raft for this partition without bootstrapping; the caller
// is expected to already be a voter in an existing configuration (added
// there via AddVoter by the current leader).
func (n *Node) Join() error {
	r, _, err := n.newRaft()
	if err != nil {
		return err
	}
	n.raft = r
	n.startCollector()
	return nil
}

// AddVoter adds a new peer to this partition's configuration. Must be
// called against the current leader.
func (n *Node) AddVoter(id, addr string) error {
	if n.raft.State() != raft.Leader {
		return &LeaderChangedError{Leader: string(n.raft.Leader())}
	}
	return n.raft.AddVoter(raft.ServerID(id), raft.ServerAddress(addr), 0, 10*time.Second).Error()
}
