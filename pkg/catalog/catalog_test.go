package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/graphd/pkg/metaservice"
	"github.com/cuemby/graphd/pkg/types"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestLatestTagReflectsMostRecentPush(t *testing.T) {
	b := metaservice.NewBroker(0)
	b.Start()
	defer b.Stop()

	c := New(b)
	defer c.Close()

	_, err := c.LatestTag(1, 10)
	var nf *NotFound
	require.ErrorAs(t, err, &nf)

	b.PublishTag(&types.TagSchema{Space: 1, TagID: 10, Version: 1, Name: "person"})
	waitFor(t, func() bool {
		s, err := c.LatestTag(1, 10)
		return err == nil && s.Version == 1
	})

	b.PublishTag(&types.TagSchema{Space: 1, TagID: 10, Version: 2, Name: "person"})
	waitFor(t, func() bool {
		s, err := c.LatestTag(1, 10)
		return err == nil && s.Version == 2
	})

	old, err := c.TagByVersion(1, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, types.SchemaVersion(1), old.Version)
}

func TestLatestEdgeIgnoresDirectionSign(t *testing.T) {
	b := metaservice.NewBroker(0)
	b.Start()
	defer b.Stop()

	c := New(b)
	defer c.Close()

	b.PublishEdge(&types.EdgeSchema{Space: 1, EdgeType: 5, Version: 1, Name: "follows"})
	waitFor(t, func() bool {
		_, err := c.LatestEdge(1, 5)
		return err == nil
	})

	byNeg, err := c.LatestEdge(1, -5)
	require.NoError(t, err)
	assert.Equal(t, "follows", byNeg.Name)
}

func TestIndexesForAccumulatesRegistrations(t *testing.T) {
	b := metaservice.NewBroker(0)
	b.Start()
	defer b.Stop()

	c := New(b)
	defer c.Close()

	assert.Empty(t, c.IndexesFor(10))

	b.PublishIndex(&types.IndexDef{Space: 1, IndexID: 1, SchemaID: 10, Fields: []types.IndexField{{Column: "age", Type: types.ColumnInt}}})
	b.PublishIndex(&types.IndexDef{Space: 1, IndexID: 2, SchemaID: 10, Fields: []types.IndexField{{Column: "name", Type: types.ColumnString, Width: 32}}})

	waitFor(t, func() bool {
		return len(c.IndexesFor(10)) == 2
	})

	defs := c.IndexesFor(10)
	assert.Equal(t, uint32(1), defs[0].IndexID)
	assert.Equal(t, uint32(2), defs[1].IndexID)
}

func TestPinHoldsASnapshotSteadyAcrossALaterPush(t *testing.T) {
	b := metaservice.NewBroker(0)
	b.Start()
	defer b.Stop()

	c := New(b)
	defer c.Close()

	b.PublishTag(&types.TagSchema{Space: 1, TagID: 10, Version: 1, Name: "person"})
	waitFor(t, func() bool {
		s, err := c.LatestTag(1, 10)
		return err == nil && s.Version == 1
	})

	pinned := c.Pin()

	b.PublishTag(&types.TagSchema{Space: 1, TagID: 10, Version: 2, Name: "person"})
	waitFor(t, func() bool {
		s, err := c.LatestTag(1, 10)
		return err == nil && s.Version == 2
	})

	s, err := pinned.LatestTag(1, 10)
	require.NoError(t, err)
	assert.Equal(t, types.SchemaVersion(1), s.Version, "a pinned snapshot must not see a push that lands after Pin")

	fresh, err := c.LatestTag(1, 10)
	require.NoError(t, err)
	assert.Equal(t, types.SchemaVersion(2), fresh.Version, "a direct Catalog call pins fresh each time and should see the new push")
}

func TestNameLookupNotFound(t *testing.T) {
	b := metaservice.NewBroker(0)
	b.Start()
	defer b.Stop()

	c := New(b)
	defer c.Close()

	_, err := c.Name(999)
	var nf *NotFound
	assert.ErrorAs(t, err, &nf)
}
