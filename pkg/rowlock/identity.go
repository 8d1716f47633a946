package rowlock

import (
	"fmt"

	"github.com/cuemby/graphd/pkg/types"
)

// VertexIdentity builds the lock-table key for a vertex row identity:
// (space, part, tag, vid).
func VertexIdentity(space types.SpaceID, part types.PartitionID, tagID types.SchemaID, vid []byte) string {
	return fmt.Sprintf("v|%d|%d|%d|%x", space, part, tagID, vid)
}

// EdgeIdentity builds the lock-table key for an edge row identity:
// (space, part, src, type, rank, dst). edgeType's sign is significant: an
// out-edge and its mirrored in-edge are distinct identities.
func EdgeIdentity(space types.SpaceID, part types.PartitionID, src []byte, edgeType int32, rank int64, dst []byte) string {
	return fmt.Sprintf("e|%d|%d|%x|%d|%d|%x", space, part, src, edgeType, rank, dst)
}
