package row

import (
	"encoding/binary"
	"fmt"

	"github.com/cuemby/graphd/pkg/exprengine"
	"github.com/cuemby/graphd/pkg/types"
)

// Reader decodes one stored row payload against the schema version that
// authored it.
type Reader struct {
	schema  []types.Column
	version types.SchemaVersion
	values  map[string]types.Value
	present map[string]bool
}

// PeekVersion reads the version header embedded in payload without
// decoding any columns. Callers use it to resolve which schema version
// authored the row before they have a schema to decode it against.
func PeekVersion(payload []byte) (types.SchemaVersion, error) {
	if len(payload) < 8 {
		return 0, fmt.Errorf("row: payload too short for version header")
	}
	return types.SchemaVersion(binary.LittleEndian.Uint64(payload[:8])), nil
}

// NewReader decodes payload against schema. payload's leading 8 bytes are
// the version the payload claims to have been authored under; callers
// pass the schema that actually authored that version (recovered via
// PeekVersion and a catalog lookup), not necessarily the latest schema.
func NewReader(payload []byte, schema []types.Column) (*Reader, error) {
	if len(payload) < 8 {
		return nil, fmt.Errorf("row: payload too short for version header")
	}
	version := types.SchemaVersion(binary.LittleEndian.Uint64(payload[:8]))
	off := 8
	values := make(map[string]types.Value, len(schema))
	present := make(map[string]bool, len(schema))
	for _, col := range schema {
		if off >= len(payload) {
			return nil, fmt.Errorf("row: payload truncated before column %q", col.Name)
		}
		hasValue := payload[off] != 0
		off++
		present[col.Name] = hasValue
		if !hasValue {
			continue
		}
		v, next, err := decodeValue(col.Type, payload, off)
		if err != nil {
			return nil, fmt.Errorf("row: decoding column %q: %w", col.Name, err)
		}
		values[col.Name] = v
		off = next
	}
	return &Reader{schema: schema, version: version, values: values, present: present}, nil
}

// Version returns the schema version the decoded payload claims to have
// been authored under.
func (r *Reader) Version() types.SchemaVersion { return r.version }

// Get resolves one logical column: stored value, then evaluated default,
// then null, in that order. It fails with ReadPropFailed only when the
// column is absent, undefaulted, and non-nullable.
func (r *Reader) Get(col types.Column) (types.Value, error) {
	if r.present[col.Name] {
		return r.values[col.Name], nil
	}
	if col.HasDefault {
		v, err := exprengine.Eval(string(col.Default), exprengine.NullContext)
		if err != nil {
			return types.Null, &InvalidDefault{Column: col.Name, Reason: err.Error()}
		}
		return v, nil
	}
	if col.Nullable {
		return types.Null, nil
	}
	return types.Null, &ReadPropFailed{Column: col.Name}
}

// Writer accumulates set(name, value) calls against the latest schema and
// validates them on Finish.
type Writer struct {
	schema []types.Column
	set    map[string]types.Value
}

// NewWriter begins encoding a row against the given (latest) schema
// columns.
func NewWriter(schema []types.Column) *Writer {
	return &Writer{schema: schema, set: make(map[string]types.Value, len(schema))}
}

// Set records a value for a column, in any order. A later Set for the
// same name overwrites an earlier one.
func (w *Writer) Set(name string, v types.Value) {
	w.set[name] = v
}

// Finish validates every accumulated Set against the schema and encodes
// the row payload, or returns the first validation failure.
//
// Validation order, per column: (1) a non-nullable column without a
// default must have been set; (2) a set value's runtime type must match
// the declared type or be coercible by the numeric promotion rules
// (int -> float is allowed; float -> int is not, since it would silently
// truncate); (3) if the schema declares a TTL, its anchor column must
// have been set.
func (w *Writer) Finish(version types.SchemaVersion, ttl *types.TTLSpec) ([]byte, error) {
	encoded := make(map[string][]byte, len(w.schema))
	presence := make(map[string]bool, len(w.schema))

	for _, col := range w.schema {
		v, isSet := w.set[col.Name]
		if !isSet {
			if col.HasDefault {
				continue
			}
			if col.Nullable {
				continue
			}
			return nil, &NoDefaultAndNotNullable{Column: col.Name}
		}
		coerced, err := coerce(col, v)
		if err != nil {
			return nil, &InvalidFieldValue{Column: col.Name, Reason: err.Error()}
		}
		if coerced.IsNull() {
			// An explicit null set on a nullable column is equivalent to
			// never having set it: the reader falls back to default/null.
			continue
		}
		b, err := encodeValue(coerced)
		if err != nil {
			return nil, &InvalidFieldValue{Column: col.Name, Reason: err.Error()}
		}
		encoded[col.Name] = b
		presence[col.Name] = true
	}

	if ttl != nil {
		if _, ok := w.set[ttl.Column]; !ok {
			return nil, &InvalidFieldValue{Column: ttl.Column, Reason: "TTL column was not set"}
		}
	}

	var out []byte
	var verBuf [8]byte
	binary.LittleEndian.PutUint64(verBuf[:], uint64(version))
	out = append(out, verBuf[:]...)
	for _, col := range w.schema {
		if presence[col.Name] {
			out = append(out, 1)
			out = append(out, encoded[col.Name]...)
		} else {
			out = append(out, 0)
		}
	}
	return out, nil
}

// coerce applies the documented numeric promotion rules: an int value may
// be promoted to a float column; any other kind mismatch is rejected.
func coerce(col types.Column, v types.Value) (types.Value, error) {
	if v.IsNull() {
		if col.Nullable {
			return v, nil
		}
		return types.Null, fmt.Errorf("column is not nullable")
	}
	if v.TypeOf() == col.Type {
		return v, nil
	}
	if col.Type == types.ColumnFloat && v.Kind == types.KindInt {
		return types.FloatValue(float64(v.I)), nil
	}
	return types.Null, fmt.Errorf("value of type %s is not assignable to column of type %s", v.TypeOf(), col.Type)
}
