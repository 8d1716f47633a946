package row

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/cuemby/graphd/pkg/types"
)

func encodeValue(v types.Value) ([]byte, error) {
	switch v.Kind {
	case types.KindBool:
		if v.B {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case types.KindInt:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(v.I))
		return b[:], nil
	case types.KindFloat:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(v.F))
		return b[:], nil
	case types.KindString:
		head := make([]byte, 4)
		binary.LittleEndian.PutUint32(head, uint32(len(v.S)))
		return append(head, v.S...), nil
	case types.KindTimestamp:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(v.T.UnixNano()))
		return b[:], nil
	default:
		return nil, fmt.Errorf("row: cannot encode value of kind %d", v.Kind)
	}
}

// decodeValue reads one value of the given column type from buf, starting
// at off, and returns the value along with the offset just past it.
func decodeValue(colType types.ColumnType, buf []byte, off int) (types.Value, int, error) {
	switch colType {
	case types.ColumnBool:
		if off+1 > len(buf) {
			return types.Null, off, fmt.Errorf("row: truncated bool value")
		}
		return types.BoolValue(buf[off] != 0), off + 1, nil
	case types.ColumnInt:
		if off+8 > len(buf) {
			return types.Null, off, fmt.Errorf("row: truncated int value")
		}
		i := int64(binary.LittleEndian.Uint64(buf[off : off+8]))
		return types.IntValue(i), off + 8, nil
	case types.ColumnFloat:
		if off+8 > len(buf) {
			return types.Null, off, fmt.Errorf("row: truncated float value")
		}
		bits := binary.LittleEndian.Uint64(buf[off : off+8])
		return types.FloatValue(math.Float64frombits(bits)), off + 8, nil
	case types.ColumnString:
		if off+4 > len(buf) {
			return types.Null, off, fmt.Errorf("row: truncated string length")
		}
		n := int(binary.LittleEndian.Uint32(buf[off : off+4]))
		off += 4
		if off+n > len(buf) {
			return types.Null, off, fmt.Errorf("row: truncated string value")
		}
		return types.StringValue(string(buf[off : off+n])), off + n, nil
	case types.ColumnTimestamp:
		if off+8 > len(buf) {
			return types.Null, off, fmt.Errorf("row: truncated timestamp value")
		}
		ns := int64(binary.LittleEndian.Uint64(buf[off : off+8]))
		return types.TimestampValue(time.Unix(0, ns).UTC()), off + 8, nil
	default:
		return types.Null, off, fmt.Errorf("row: cannot decode column of unknown type")
	}
}
