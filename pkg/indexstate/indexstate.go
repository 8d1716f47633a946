// Package indexstate implements the index state oracle: state(space,
// part, index) -> Normal | Rebuilding | Locked, the table writers consult
// before deciding whether to write an index entry directly, emit an
// operation-log record, or refuse the write.
//
// The oracle is itself backed by pkg/kvengine, under a reserved key
// prefix disjoint from the vertex/edge/index/oplog keyspaces pkg/keycodec
// defines, so a real rebuild subsystem (out of scope here) could flip a
// state byte and have every writer observe it on the next lookup.
package indexstate

import (
	"encoding/binary"

	"github.com/cuemby/graphd/pkg/kvengine"
	"github.com/cuemby/graphd/pkg/types"
)

// reservedMarker must never collide with keycodec's vertex/edge/index/
// oplog markers (0x01-0x05).
const reservedMarker = 0xF0

func stateKey(space types.SpaceID, part types.PartitionID, indexID uint32) []byte {
	key := make([]byte, 1+4+4+4)
	key[0] = reservedMarker
	binary.LittleEndian.PutUint32(key[1:], uint32(space))
	binary.LittleEndian.PutUint32(key[5:], uint32(part))
	binary.LittleEndian.PutUint32(key[9:], indexID)
	return key
}

// Oracle reports and mutates index lifecycle state.
type Oracle struct {
	engine *kvengine.Engine
}

// New builds an Oracle backed by engine.
func New(engine *kvengine.Engine) *Oracle {
	return &Oracle{engine: engine}
}

// State returns the current lifecycle state for (space, part, index).
// An index with no recorded state is Normal: the oracle only has to
// start tracking an index once something other than "business as usual"
// happens to it.
func (o *Oracle) State(space types.SpaceID, part types.PartitionID, indexID uint32) (types.IndexState, error) {
	v, err := o.engine.Get(stateKey(space, part, indexID))
	if err != nil {
		if err == kvengine.ErrNotFound {
			return types.IndexNormal, nil
		}
		return types.IndexNormal, err
	}
	if len(v) != 1 {
		return types.IndexNormal, nil
	}
	return types.IndexState(v[0]), nil
}

// SetState records a new lifecycle state for (space, part, index).
func (o *Oracle) SetState(space types.SpaceID, part types.PartitionID, indexID uint32, state types.IndexState) error {
	return o.engine.ApplyBatch([]kvengine.Op{
		{Key: stateKey(space, part, indexID), Value: []byte{byte(state)}},
	})
}
