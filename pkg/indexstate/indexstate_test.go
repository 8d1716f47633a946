package indexstate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/graphd/pkg/kvengine"
	"github.com/cuemby/graphd/pkg/types"
)

func newTestOracle(t *testing.T) *Oracle {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	e, err := kvengine.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return New(e)
}

func TestUntrackedIndexDefaultsToNormal(t *testing.T) {
	o := newTestOracle(t)
	state, err := o.State(1, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, types.IndexNormal, state)
}

func TestSetStateThenReadBack(t *testing.T) {
	o := newTestOracle(t)
	require.NoError(t, o.SetState(1, 2, 100, types.IndexRebuilding))

	state, err := o.State(1, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, types.IndexRebuilding, state)

	require.NoError(t, o.SetState(1, 2, 100, types.IndexLocked))
	state, err = o.State(1, 2, 100)
	require.NoError(t, err)
	assert.Equal(t, types.IndexLocked, state)
}

func TestStateIsScopedPerSpacePartIndex(t *testing.T) {
	o := newTestOracle(t)
	require.NoError(t, o.SetState(1, 2, 100, types.IndexLocked))

	other, err := o.State(1, 2, 101)
	require.NoError(t, err)
	assert.Equal(t, types.IndexNormal, other)

	otherPart, err := o.State(1, 3, 100)
	require.NoError(t, err)
	assert.Equal(t, types.IndexNormal, otherPart)
}
