// Package catalog is the schema catalog view the update executor and row
// reader/writer consult for tag and edge schemas. Catalog's own methods
// each load the live snapshot independently, so a caller making several
// lookups through Catalog directly may see the catalog advance
// underneath it if a metaservice push lands in between. A caller that
// needs every lookup in one operation to agree with each other should
// call Pin once and make all of its lookups through the returned
// Snapshot instead.
package catalog

import (
	"fmt"
	"sync/atomic"

	"github.com/cuemby/graphd/pkg/metaservice"
	"github.com/cuemby/graphd/pkg/types"
)

// NotFound is returned by LatestTag, TagByVersion, LatestEdge,
// EdgeByVersion, and Name when no schema matches the lookup.
type NotFound struct {
	Space types.SpaceID
	ID    types.SchemaID
}

func (e *NotFound) Error() string {
	return fmt.Sprintf("catalog: no schema for space=%d id=%d", e.Space, e.ID)
}

type tagKey struct {
	space types.SpaceID
	id    types.SchemaID
}

type tagVerKey struct {
	space types.SpaceID
	id    types.SchemaID
	ver   types.SchemaVersion
}

type edgeKey struct {
	space    types.SpaceID
	edgeType int32
}

type edgeVerKey struct {
	space    types.SpaceID
	edgeType int32
	ver      types.SchemaVersion
}

// snapshot is an immutable view of every known schema version, swapped
// atomically on each metaservice push.
type snapshot struct {
	latestTag  map[tagKey]*types.TagSchema
	tagByVer   map[tagVerKey]*types.TagSchema
	latestEdge map[edgeKey]*types.EdgeSchema
	edgeByVer  map[edgeVerKey]*types.EdgeSchema
	names      map[types.SchemaID]string
	indexes    map[types.SchemaID][]*types.IndexDef
}

func emptySnapshot() *snapshot {
	return &snapshot{
		latestTag:  make(map[tagKey]*types.TagSchema),
		tagByVer:   make(map[tagVerKey]*types.TagSchema),
		latestEdge: make(map[edgeKey]*types.EdgeSchema),
		edgeByVer:  make(map[edgeVerKey]*types.EdgeSchema),
		names:      make(map[types.SchemaID]string),
		indexes:    make(map[types.SchemaID][]*types.IndexDef),
	}
}

// clone returns a shallow copy of the snapshot's maps so a single push can
// be applied without mutating the snapshot any other goroutine is reading.
func (s *snapshot) clone() *snapshot {
	out := emptySnapshot()
	for k, v := range s.latestTag {
		out.latestTag[k] = v
	}
	for k, v := range s.tagByVer {
		out.tagByVer[k] = v
	}
	for k, v := range s.latestEdge {
		out.latestEdge[k] = v
	}
	for k, v := range s.edgeByVer {
		out.edgeByVer[k] = v
	}
	for k, v := range s.names {
		out.names[k] = v
	}
	for k, v := range s.indexes {
		out.indexes[k] = append([]*types.IndexDef{}, v...)
	}
	return out
}

// Catalog is the live, push-updated schema catalog view.
type Catalog struct {
	snap atomic.Pointer[snapshot]
	sub  metaservice.Subscriber
	stop chan struct{}
}

// New creates a Catalog subscribed to broker. Call Close to stop
// consuming pushes and release the subscription.
func New(broker *metaservice.Broker) *Catalog {
	c := &Catalog{
		sub:  broker.Subscribe(),
		stop: make(chan struct{}),
	}
	c.snap.Store(emptySnapshot())
	go c.run(broker)
	return c
}

func (c *Catalog) run(broker *metaservice.Broker) {
	for {
		select {
		case p, ok := <-c.sub:
			if !ok {
				return
			}
			c.apply(p)
		case <-c.stop:
			broker.Unsubscribe(c.sub)
			return
		}
	}
}

func (c *Catalog) apply(p metaservice.Push) {
	cur := c.snap.Load()
	next := cur.clone()
	switch p.Kind {
	case metaservice.KindTag:
		s := p.Tag
		next.latestTag[tagKey{s.Space, s.TagID}] = s
		next.tagByVer[tagVerKey{s.Space, s.TagID, s.Version}] = s
		next.names[s.TagID] = s.Name
	case metaservice.KindEdge:
		s := p.Edge
		canon := s.EdgeType
		if canon < 0 {
			canon = -canon
		}
		next.latestEdge[edgeKey{s.Space, canon}] = s
		next.edgeByVer[edgeVerKey{s.Space, canon, s.Version}] = s
		next.names[types.SchemaID(canon)] = s.Name
	case metaservice.KindIndex:
		d := p.Index
		next.indexes[d.SchemaID] = append(append([]*types.IndexDef{}, next.indexes[d.SchemaID]...), d)
	}
	c.snap.Store(next)
}

// Close stops the catalog from consuming further pushes.
func (c *Catalog) Close() {
	close(c.stop)
}

// Snapshot is a pinned, point-in-time view of the catalog obtained via
// Pin. Every lookup made through one Snapshot agrees with every other
// lookup made through it, even if a metaservice push lands on the live
// Catalog while the Snapshot is in use.
type Snapshot struct {
	s *snapshot
}

// Pin captures the catalog's current snapshot. A caller that needs a
// schema lookup and a later index-list lookup (or any two lookups) to
// see the same point-in-time state for the duration of one operation
// should Pin once at the start of that operation and make every lookup
// through the returned Snapshot, rather than through Catalog's methods.
func (c *Catalog) Pin() *Snapshot {
	return &Snapshot{s: c.snap.Load()}
}

// LatestTag returns the newest known version of the tag schema for
// (space, tagID).
func (sn *Snapshot) LatestTag(space types.SpaceID, tagID types.SchemaID) (*types.TagSchema, error) {
	s, ok := sn.s.latestTag[tagKey{space, tagID}]
	if !ok {
		return nil, &NotFound{Space: space, ID: tagID}
	}
	return s, nil
}

// TagByVersion returns the exact version of the tag schema requested.
func (sn *Snapshot) TagByVersion(space types.SpaceID, tagID types.SchemaID, ver types.SchemaVersion) (*types.TagSchema, error) {
	s, ok := sn.s.tagByVer[tagVerKey{space, tagID, ver}]
	if !ok {
		return nil, &NotFound{Space: space, ID: tagID}
	}
	return s, nil
}

// LatestEdge returns the newest known version of the edge schema for
// (space, edgeType). edgeType's sign is ignored: both directions of an
// edge type share one schema.
func (sn *Snapshot) LatestEdge(space types.SpaceID, edgeType int32) (*types.EdgeSchema, error) {
	canon := edgeType
	if canon < 0 {
		canon = -canon
	}
	s, ok := sn.s.latestEdge[edgeKey{space, canon}]
	if !ok {
		return nil, &NotFound{Space: space, ID: types.SchemaID(edgeType)}
	}
	return s, nil
}

// EdgeByVersion returns the exact version of the edge schema requested.
func (sn *Snapshot) EdgeByVersion(space types.SpaceID, edgeType int32, ver types.SchemaVersion) (*types.EdgeSchema, error) {
	canon := edgeType
	if canon < 0 {
		canon = -canon
	}
	s, ok := sn.s.edgeByVer[edgeVerKey{space, canon, ver}]
	if !ok {
		return nil, &NotFound{Space: space, ID: types.SchemaID(edgeType)}
	}
	return s, nil
}

// IndexesFor returns every index definition registered against schemaID,
// in registration order. An unindexed schema returns an empty slice, not
// an error.
func (sn *Snapshot) IndexesFor(schemaID types.SchemaID) []*types.IndexDef {
	return sn.s.indexes[schemaID]
}

// Name returns the human-readable name registered for a tag or edge
// schema id.
func (sn *Snapshot) Name(id types.SchemaID) (string, error) {
	name, ok := sn.s.names[id]
	if !ok {
		return "", &NotFound{ID: id}
	}
	return name, nil
}

// LatestTag returns the newest known version of the tag schema for
// (space, tagID). It pins a fresh snapshot for this one lookup; callers
// making more than one lookup per operation should use Pin instead.
func (c *Catalog) LatestTag(space types.SpaceID, tagID types.SchemaID) (*types.TagSchema, error) {
	return c.Pin().LatestTag(space, tagID)
}

// TagByVersion returns the exact version of the tag schema requested. It
// pins a fresh snapshot for this one lookup; callers making more than one
// lookup per operation should use Pin instead.
func (c *Catalog) TagByVersion(space types.SpaceID, tagID types.SchemaID, ver types.SchemaVersion) (*types.TagSchema, error) {
	return c.Pin().TagByVersion(space, tagID, ver)
}

// LatestEdge returns the newest known version of the edge schema for
// (space, edgeType). It pins a fresh snapshot for this one lookup;
// callers making more than one lookup per operation should use Pin
// instead.
func (c *Catalog) LatestEdge(space types.SpaceID, edgeType int32) (*types.EdgeSchema, error) {
	return c.Pin().LatestEdge(space, edgeType)
}

// EdgeByVersion returns the exact version of the edge schema requested.
// It pins a fresh snapshot for this one lookup; callers making more than
// one lookup per operation should use Pin instead.
func (c *Catalog) EdgeByVersion(space types.SpaceID, edgeType int32, ver types.SchemaVersion) (*types.EdgeSchema, error) {
	return c.Pin().EdgeByVersion(space, edgeType, ver)
}

// IndexesFor returns every index definition registered against schemaID,
// in registration order. An unindexed schema returns an empty slice, not
// an error. It pins a fresh snapshot for this one lookup; callers making
// more than one lookup per operation should use Pin instead.
func (c *Catalog) IndexesFor(schemaID types.SchemaID) []*types.IndexDef {
	return c.Pin().IndexesFor(schemaID)
}

// Name returns the human-readable name registered for a tag or edge
// schema id. It pins a fresh snapshot for this one lookup; callers
// making more than one lookup per operation should use Pin instead.
func (c *Catalog) Name(id types.SchemaID) (string, error) {
	return c.Pin().Name(id)
}
