package row

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/graphd/pkg/types"
)

func personSchema() []types.Column {
	return []types.Column{
		{Name: "name", Type: types.ColumnString, Nullable: false},
		{Name: "age", Type: types.ColumnInt, Nullable: true},
		{Name: "score", Type: types.ColumnFloat, Nullable: false, HasDefault: true, Default: []byte("0.0")},
		{Name: "active", Type: types.ColumnBool, Nullable: false},
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	schema := personSchema()
	w := NewWriter(schema)
	w.Set("name", types.StringValue("ada"))
	w.Set("age", types.IntValue(30))
	w.Set("active", types.BoolValue(true))

	payload, err := w.Finish(1, nil)
	require.NoError(t, err)

	r, err := NewReader(payload, schema)
	require.NoError(t, err)
	assert.Equal(t, types.SchemaVersion(1), r.Version())

	name, err := r.Get(schema[0])
	require.NoError(t, err)
	assert.Equal(t, types.StringValue("ada"), name)

	// score was never set but has a default; reader must evaluate it.
	score, err := r.Get(schema[2])
	require.NoError(t, err)
	assert.Equal(t, types.FloatValue(0.0), score)
}

func TestIntToFloatPromotionOnWrite(t *testing.T) {
	schema := personSchema()
	w := NewWriter(schema)
	w.Set("name", types.StringValue("ada"))
	w.Set("active", types.BoolValue(true))
	w.Set("score", types.IntValue(5))

	payload, err := w.Finish(1, nil)
	require.NoError(t, err)

	r, err := NewReader(payload, schema)
	require.NoError(t, err)
	score, err := r.Get(schema[2])
	require.NoError(t, err)
	assert.Equal(t, types.FloatValue(5.0), score)
}

func TestFloatToIntNotPromoted(t *testing.T) {
	schema := personSchema()
	w := NewWriter(schema)
	w.Set("name", types.StringValue("ada"))
	w.Set("active", types.BoolValue(true))
	w.Set("age", types.FloatValue(5.5))

	_, err := w.Finish(1, nil)
	var invalid *InvalidFieldValue
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "age", invalid.Column)
}

func TestNonNullableWithoutDefaultMustBeSet(t *testing.T) {
	schema := personSchema()
	w := NewWriter(schema)
	w.Set("age", types.IntValue(1))

	_, err := w.Finish(1, nil)
	var missing *NoDefaultAndNotNullable
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "name", missing.Column)
}

func TestReadAbsentNonNullableUndefaultedFails(t *testing.T) {
	schema := []types.Column{
		{Name: "required", Type: types.ColumnInt, Nullable: false},
	}
	// Build a payload where "required" is explicitly absent, simulating
	// a row written under an older schema version that lacked the column.
	payload := []byte{1, 0, 0, 0, 0, 0, 0, 0, 0}
	r, err := NewReader(payload, schema)
	require.NoError(t, err)

	_, err = r.Get(schema[0])
	var failed *ReadPropFailed
	assert.ErrorAs(t, err, &failed)
}

func TestPeekVersionReadsHeaderWithoutASchema(t *testing.T) {
	schema := personSchema()
	w := NewWriter(schema)
	w.Set("name", types.StringValue("ada"))
	w.Set("active", types.BoolValue(true))
	payload, err := w.Finish(7, nil)
	require.NoError(t, err)

	ver, err := PeekVersion(payload)
	require.NoError(t, err)
	assert.Equal(t, types.SchemaVersion(7), ver)
}

func TestPeekVersionRejectsShortPayload(t *testing.T) {
	_, err := PeekVersion([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestTTLColumnMustBeSet(t *testing.T) {
	schema := []types.Column{
		{Name: "expires_at", Type: types.ColumnTimestamp, Nullable: true},
	}
	ttl := &types.TTLSpec{Column: "expires_at"}
	w := NewWriter(schema)

	_, err := w.Finish(1, ttl)
	var invalid *InvalidFieldValue
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "expires_at", invalid.Column)
}
