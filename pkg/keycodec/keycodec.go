package keycodec

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cuemby/graphd/pkg/types"
)

// Marker bytes. Each leading byte unambiguously identifies the key family so
// a prefix scan or point lookup never has to guess a layout from length
// alone.
const (
	VertexMarker byte = 0x01
	EdgeMarker   byte = 0x02
	IndexMarker  byte = 0x03

	OpLogDeleteMarker byte = 0x04
	OpLogModifyMarker byte = 0x05
)

const partIDLen = 3

// VertexKey is the decoded form of a vertex row key.
type VertexKey struct {
	Part  types.PartitionID
	VID   []byte
	TagID types.SchemaID
}

// EdgeKey is the decoded form of an edge row key. EdgeType carries the sign
// that denotes direction (+out, -in); a row authored with one sign is a
// distinct logical edge from the same (src, rank, dst) with the other.
type EdgeKey struct {
	Part     types.PartitionID
	Src      []byte
	EdgeType int32
	Ranking  int64
	Dst      []byte
}

func putPartID(buf []byte, part types.PartitionID) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(part))
	copy(buf, tmp[:partIDLen])
}

func getPartID(buf []byte) types.PartitionID {
	var tmp [4]byte
	copy(tmp[:partIDLen], buf[:partIDLen])
	return types.PartitionID(binary.LittleEndian.Uint32(tmp[:]))
}

// EncodeVertexKey lays out tag_marker | part_id(3) | vid(vidLen) | tag_id(4).
// vid must already be exactly vidLen bytes (the space's fixed vertex-id
// length); the codec does not pad or truncate vertex ids.
func EncodeVertexKey(part types.PartitionID, vid []byte, tagID types.SchemaID, vidLen int) ([]byte, error) {
	if len(vid) != vidLen {
		return nil, fmt.Errorf("keycodec: vertex id length %d, want %d", len(vid), vidLen)
	}
	key := make([]byte, 1+partIDLen+vidLen+4)
	key[0] = VertexMarker
	putPartID(key[1:], part)
	copy(key[1+partIDLen:], vid)
	binary.LittleEndian.PutUint32(key[1+partIDLen+vidLen:], uint32(tagID))
	return key, nil
}

// DecodeVertexKey parses a key previously produced by EncodeVertexKey.
func DecodeVertexKey(key []byte, vidLen int) (VertexKey, error) {
	want := 1 + partIDLen + vidLen + 4
	if len(key) != want {
		return VertexKey{}, fmt.Errorf("keycodec: vertex key length %d, want %d", len(key), want)
	}
	if key[0] != VertexMarker {
		return VertexKey{}, fmt.Errorf("keycodec: vertex key marker %#x, want %#x", key[0], VertexMarker)
	}
	vid := make([]byte, vidLen)
	copy(vid, key[1+partIDLen:1+partIDLen+vidLen])
	tagID := binary.LittleEndian.Uint32(key[1+partIDLen+vidLen:])
	return VertexKey{
		Part:  getPartID(key[1:]),
		VID:   vid,
		TagID: types.SchemaID(tagID),
	}, nil
}

// encodeRanking produces 8 big-endian bytes whose unsigned comparison order
// equals the signed numeric order of r, by flipping the sign bit.
func encodeRanking(r int64) [8]byte {
	var out [8]byte
	binary.BigEndian.PutUint64(out[:], uint64(r)^(1<<63))
	return out
}

func decodeRanking(b []byte) int64 {
	return int64(binary.BigEndian.Uint64(b) ^ (1 << 63))
}

// EncodeEdgeKey lays out edge_marker | part_id(3) | src(vidLen) |
// edge_type(4, signed) | ranking(8, big-endian biased) | dst(vidLen) |
// placeholder(1).
func EncodeEdgeKey(part types.PartitionID, src []byte, edgeType int32, ranking int64, dst []byte, vidLen int) ([]byte, error) {
	if len(src) != vidLen || len(dst) != vidLen {
		return nil, fmt.Errorf("keycodec: edge vid length src=%d dst=%d, want %d", len(src), len(dst), vidLen)
	}
	key := make([]byte, 1+partIDLen+vidLen+4+8+vidLen+1)
	off := 0
	key[off] = EdgeMarker
	off++
	putPartID(key[off:], part)
	off += partIDLen
	copy(key[off:], src)
	off += vidLen
	binary.LittleEndian.PutUint32(key[off:], uint32(edgeType))
	off += 4
	rk := encodeRanking(ranking)
	copy(key[off:], rk[:])
	off += 8
	copy(key[off:], dst)
	off += vidLen
	key[off] = 0
	return key, nil
}

// DecodeEdgeKey parses a key previously produced by EncodeEdgeKey.
func DecodeEdgeKey(key []byte, vidLen int) (EdgeKey, error) {
	want := 1 + partIDLen + vidLen + 4 + 8 + vidLen + 1
	if len(key) != want {
		return EdgeKey{}, fmt.Errorf("keycodec: edge key length %d, want %d", len(key), want)
	}
	if key[0] != EdgeMarker {
		return EdgeKey{}, fmt.Errorf("keycodec: edge key marker %#x, want %#x", key[0], EdgeMarker)
	}
	off := 1
	part := getPartID(key[off:])
	off += partIDLen
	src := make([]byte, vidLen)
	copy(src, key[off:off+vidLen])
	off += vidLen
	edgeType := int32(binary.LittleEndian.Uint32(key[off:]))
	off += 4
	ranking := decodeRanking(key[off : off+8])
	off += 8
	dst := make([]byte, vidLen)
	copy(dst, key[off:off+vidLen])
	return EdgeKey{Part: part, Src: src, EdgeType: edgeType, Ranking: ranking, Dst: dst}, nil
}

// EncodeFieldValue produces the fixed-width encoding of one index field.
// Bool and Int and Float are always fixed size regardless of width; String
// is truncated or zero-padded to exactly width bytes so that a shorter
// string sorts before any string it is a prefix of.
func EncodeFieldValue(v types.Value, width int) ([]byte, error) {
	switch v.Kind {
	case types.KindBool:
		if v.B {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case types.KindInt:
		b := encodeRanking(v.I)
		return b[:], nil
	case types.KindFloat:
		bits := floatSortableBits(v.F)
		var out [8]byte
		binary.BigEndian.PutUint64(out[:], bits)
		return out[:], nil
	case types.KindString:
		if width <= 0 {
			return nil, fmt.Errorf("keycodec: string index field requires positive width")
		}
		out := make([]byte, width)
		n := copy(out, v.S)
		_ = n
		return out, nil
	case types.KindTimestamp:
		b := encodeRanking(v.T.UnixNano())
		return b[:], nil
	default:
		return nil, fmt.Errorf("keycodec: cannot encode index field of kind %d", v.Kind)
	}
}

// floatSortableBits maps a float64 to a uint64 whose unsigned order matches
// the float's numeric order: for non-negative floats flip the sign bit,
// for negative floats flip every bit (so larger magnitude negatives sort
// first).
func floatSortableBits(f float64) uint64 {
	bits := math.Float64bits(f)
	if bits&(1<<63) != 0 {
		return ^bits
	}
	return bits | (1 << 63)
}

// EncodeIndexKey lays out index_marker | part_id(3) | index_id(4) |
// fields(fixed width, in field order) | primaryID.
func EncodeIndexKey(part types.PartitionID, indexID uint32, fields [][]byte, primaryID []byte) []byte {
	total := 1 + partIDLen + 4
	for _, f := range fields {
		total += len(f)
	}
	total += len(primaryID)
	key := make([]byte, total)
	off := 0
	key[off] = IndexMarker
	off++
	putPartID(key[off:], part)
	off += partIDLen
	binary.LittleEndian.PutUint32(key[off:], indexID)
	off += 4
	for _, f := range fields {
		copy(key[off:], f)
		off += len(f)
	}
	copy(key[off:], primaryID)
	return key
}

// IndexScanPrefix returns the key prefix that bounds a prefix scan to one
// index within one partition (no field bytes appended yet).
func IndexScanPrefix(part types.PartitionID, indexID uint32) []byte {
	key := make([]byte, 1+partIDLen+4)
	key[0] = IndexMarker
	putPartID(key[1:], part)
	binary.LittleEndian.PutUint32(key[1+partIDLen:], indexID)
	return key
}

var opSeq uint64

// NextOpSeq returns a process-local monotonically increasing sequence
// number used to keep operation-log keys unique within a partition.
func NextOpSeq() uint64 {
	return atomic.AddUint64(&opSeq, 1)
}

func opLogKey(marker byte, part types.PartitionID, seq uint64, target []byte) []byte {
	key := make([]byte, 1+partIDLen+8+len(target))
	off := 0
	key[off] = marker
	off++
	putPartID(key[off:], part)
	off += partIDLen
	binary.BigEndian.PutUint64(key[off:], seq)
	off += 8
	copy(key[off:], target)
	return key
}

// DeleteOperationKey builds the stable key for a delete-operation-log
// record: a rebuild subsystem (out of scope here) replays these to retire
// an index entry it has not yet built.
func DeleteOperationKey(part types.PartitionID, seq uint64, oldIndexKey []byte) []byte {
	return opLogKey(OpLogDeleteMarker, part, seq, oldIndexKey)
}

// ModifyOperationKey builds the stable key for a modify-operation-log
// record carrying a new index entry a rebuild subsystem has not yet built.
func ModifyOperationKey(part types.PartitionID, seq uint64, newIndexKey []byte) []byte {
	return opLogKey(OpLogModifyMarker, part, seq, newIndexKey)
}
