package replicatedkv

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/graphd/pkg/kvengine"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func bootstrapTestNode(t *testing.T) *Node {
	t.Helper()
	cfg := Config{
		NodeID:   "node-1",
		BindAddr: freeAddr(t),
		DataDir:  t.TempDir(),
		Space:    1,
		Part:     1,
	}
	n, err := Open(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, n.Bootstrap())
	t.Cleanup(func() { n.Close() })

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if n.raft.State().String() == "Leader" {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	return n
}

func TestSingleNodeBootstrapBecomesLeader(t *testing.T) {
	n := bootstrapTestNode(t)
	assert.Equal(t, "Leader", n.raft.State().String())
}

func TestAsyncAppendBatchThenGet(t *testing.T) {
	n := bootstrapTestNode(t)

	err := n.AsyncAppendBatch(context.Background(), []kvengine.Op{
		{Key: []byte("a"), Value: []byte("1")},
	})
	require.NoError(t, err)

	v, err := n.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)
}

func TestClusterRoutesToRegisteredPartition(t *testing.T) {
	n := bootstrapTestNode(t)
	c := NewCluster()
	c.Register(1, 1, n)

	err := c.AsyncAppendBatch(context.Background(), 1, 1, []kvengine.Op{{Key: []byte("k"), Value: []byte("v")}})
	require.NoError(t, err)

	v, err := c.Get(1, 1, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	_, err = c.Get(1, 2, []byte("k"))
	var notFound *PartitionNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
