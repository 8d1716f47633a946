package keycodec

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/graphd/pkg/types"
)

func TestVertexKeyRoundTrip(t *testing.T) {
	vid := []byte("00000001")
	key, err := EncodeVertexKey(types.PartitionID(7), vid, types.SchemaID(42), len(vid))
	require.NoError(t, err)

	decoded, err := DecodeVertexKey(key, len(vid))
	require.NoError(t, err)
	assert.Equal(t, types.PartitionID(7), decoded.Part)
	assert.Equal(t, vid, decoded.VID)
	assert.Equal(t, types.SchemaID(42), decoded.TagID)
}

func TestVertexKeyRejectsWrongVIDLength(t *testing.T) {
	_, err := EncodeVertexKey(types.PartitionID(1), []byte("short"), types.SchemaID(1), 8)
	assert.Error(t, err)
}

func TestEdgeKeyRoundTripAndSignMismatch(t *testing.T) {
	src := []byte("aaaaaaaa")
	dst := []byte("bbbbbbbb")

	out, err := EncodeEdgeKey(types.PartitionID(3), src, 10, 5, dst, len(src))
	require.NoError(t, err)
	in, err := EncodeEdgeKey(types.PartitionID(3), src, -10, 5, dst, len(src))
	require.NoError(t, err)

	// Same (src, rank, dst) but opposite-sign type must not collide.
	assert.False(t, bytes.Equal(out, in))

	decoded, err := DecodeEdgeKey(out, len(src))
	require.NoError(t, err)
	assert.Equal(t, int32(10), decoded.EdgeType)
	assert.Equal(t, int64(5), decoded.Ranking)
	assert.Equal(t, src, decoded.Src)
	assert.Equal(t, dst, decoded.Dst)
}

func TestRankingByteOrderMatchesNumericOrder(t *testing.T) {
	values := []int64{-100, -1, 0, 1, 100, 1 << 40, -(1 << 40)}
	type enc struct {
		v int64
		b [8]byte
	}
	encoded := make([]enc, len(values))
	for i, v := range values {
		encoded[i] = enc{v: v, b: encodeRanking(v)}
	}

	sortedByValue := append([]enc{}, encoded...)
	sort.Slice(sortedByValue, func(i, j int) bool { return sortedByValue[i].v < sortedByValue[j].v })

	sortedByBytes := append([]enc{}, encoded...)
	sort.Slice(sortedByBytes, func(i, j int) bool {
		return bytes.Compare(sortedByBytes[i].b[:], sortedByBytes[j].b[:]) < 0
	})

	for i := range sortedByValue {
		assert.Equal(t, sortedByValue[i].v, sortedByBytes[i].v, "byte order diverges from numeric order at index %d", i)
	}

	for _, e := range encoded {
		assert.Equal(t, e.v, decodeRanking(e.b[:]))
	}
}

func TestFloatFieldByteOrderMatchesNumericOrder(t *testing.T) {
	values := []float64{-3.5, -1.0, -0.001, 0, 0.001, 1.0, 3.5, 1e10, -1e10}
	type enc struct {
		v float64
		b []byte
	}
	encoded := make([]enc, len(values))
	for i, v := range values {
		b, err := EncodeFieldValue(types.FloatValue(v), 8)
		require.NoError(t, err)
		encoded[i] = enc{v: v, b: b}
	}

	sortedByValue := append([]enc{}, encoded...)
	sort.Slice(sortedByValue, func(i, j int) bool { return sortedByValue[i].v < sortedByValue[j].v })

	sortedByBytes := append([]enc{}, encoded...)
	sort.Slice(sortedByBytes, func(i, j int) bool { return bytes.Compare(sortedByBytes[i].b, sortedByBytes[j].b) < 0 })

	for i := range sortedByValue {
		assert.Equal(t, sortedByValue[i].v, sortedByBytes[i].v, "byte order diverges from numeric order at index %d", i)
	}
}

func TestStringFieldFixedWidthPadAndTruncate(t *testing.T) {
	short, err := EncodeFieldValue(types.StringValue("ab"), 5)
	require.NoError(t, err)
	assert.Equal(t, []byte{'a', 'b', 0, 0, 0}, short)

	long, err := EncodeFieldValue(types.StringValue("abcdefgh"), 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcde"), long)

	// A string that is a strict prefix of another must sort first.
	ab, _ := EncodeFieldValue(types.StringValue("ab"), 5)
	abc, _ := EncodeFieldValue(types.StringValue("abc"), 5)
	assert.True(t, bytes.Compare(ab, abc) < 0)
}

func TestIndexKeyPrefixBoundsScanToPartitionAndIndex(t *testing.T) {
	prefix := IndexScanPrefix(types.PartitionID(9), 100)
	field, _ := EncodeFieldValue(types.IntValue(5), 8)
	full := EncodeIndexKey(types.PartitionID(9), 100, [][]byte{field}, []byte("vid123"))
	assert.True(t, bytes.HasPrefix(full, prefix))

	otherPart := IndexScanPrefix(types.PartitionID(10), 100)
	assert.False(t, bytes.HasPrefix(full, otherPart))
}

func TestOperationLogKeysAreDistinctByMarkerAndSeq(t *testing.T) {
	target := []byte("some-index-key")
	del := DeleteOperationKey(types.PartitionID(1), 1, target)
	mod := ModifyOperationKey(types.PartitionID(1), 1, target)
	assert.NotEqual(t, del[0], mod[0])
	assert.Equal(t, OpLogDeleteMarker, del[0])
	assert.Equal(t, OpLogModifyMarker, mod[0])

	a := DeleteOperationKey(types.PartitionID(1), NextOpSeq(), target)
	b := DeleteOperationKey(types.PartitionID(1), NextOpSeq(), target)
	assert.False(t, bytes.Equal(a, b))
}
