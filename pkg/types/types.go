// Package types holds the data-model values shared across the storage-node
// write path: graph spaces, schemas, columns, and the tagged property value
// every row reader/writer and expression evaluation passes around.
package types

import "time"

// SpaceID identifies a graph namespace. Vertex-id length is fixed and
// uniform within a space and does not change after creation.
type SpaceID int32

// PartitionID identifies a shard within a space.
type PartitionID uint32

// SchemaID identifies a tag or edge type within a space. For edges the
// sign of the corresponding EdgeType (not SchemaID) denotes direction;
// SchemaID itself is always the unsigned type id.
type SchemaID uint32

// SchemaVersion is a monotonically increasing schema revision. Many
// versions may coexist for the same SchemaID; the latest is used to encode
// new rows, older versions remain decodable.
type SchemaVersion uint64

// ColumnType is the declared type of a schema column.
type ColumnType uint8

const (
	ColumnUnknown ColumnType = iota
	ColumnBool
	ColumnInt
	ColumnFloat
	ColumnString
	ColumnTimestamp
)

func (t ColumnType) String() string {
	switch t {
	case ColumnBool:
		return "bool"
	case ColumnInt:
		return "int"
	case ColumnFloat:
		return "float"
	case ColumnString:
		return "string"
	case ColumnTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Column is one typed field of a tag or edge schema.
type Column struct {
	Name       string
	Type       ColumnType
	Nullable   bool
	HasDefault bool
	// Default is the undecoded expression bytes evaluated under a null
	// context when the column is absent from a stored row. Nil when
	// HasDefault is false.
	Default []byte
}

// TTLSpec names the column whose value anchors a row's expiry and how long
// after that anchor the row is considered expired.
type TTLSpec struct {
	Column   string
	Duration time.Duration
}

// TagSchema is one version of a vertex tag's column layout.
type TagSchema struct {
	Space   SpaceID
	TagID   SchemaID
	Version SchemaVersion
	Name    string
	Columns []Column
	TTL     *TTLSpec
}

// EdgeSchema is one version of an edge type's column layout. EdgeType
// carries the sign: positive is the canonical (out) direction, negative is
// its mirror (in) direction stored at the destination partition.
type EdgeSchema struct {
	Space    SpaceID
	EdgeType int32
	Version  SchemaVersion
	Name     string
	Columns  []Column
	TTL      *TTLSpec
}

// ValueKind tags the active field of a Value.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindTimestamp
)

// Value is a tagged property value: the runtime counterpart of ColumnType,
// passed between the row reader/writer, the expression engine, and index
// key encoding.
type Value struct {
	Kind ValueKind
	B    bool
	I    int64
	F    float64
	S    string
	T    time.Time
}

// Null is the canonical null value.
var Null = Value{Kind: KindNull}

func BoolValue(b bool) Value           { return Value{Kind: KindBool, B: b} }
func IntValue(i int64) Value           { return Value{Kind: KindInt, I: i} }
func FloatValue(f float64) Value       { return Value{Kind: KindFloat, F: f} }
func StringValue(s string) Value       { return Value{Kind: KindString, S: s} }
func TimestampValue(t time.Time) Value { return Value{Kind: KindTimestamp, T: t} }

// IsNull reports whether v carries no value.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// TypeOf returns the ColumnType that a value of this kind would satisfy.
func (v Value) TypeOf() ColumnType {
	switch v.Kind {
	case KindBool:
		return ColumnBool
	case KindInt:
		return ColumnInt
	case KindFloat:
		return ColumnFloat
	case KindString:
		return ColumnString
	case KindTimestamp:
		return ColumnTimestamp
	default:
		return ColumnUnknown
	}
}

// IndexField names one column participating in a secondary index, in
// index-key order. Width is only meaningful for ColumnString, where it is
// the fixed encoded byte length (values are truncated or zero-padded).
type IndexField struct {
	Column string
	Type   ColumnType
	Width  int
}

// IndexDef describes one secondary index over a tag or edge schema.
type IndexDef struct {
	Space    SpaceID
	IndexID  uint32
	SchemaID SchemaID
	Fields   []IndexField
}

// IndexState is the oracle-reported lifecycle phase of a secondary index.
type IndexState uint8

const (
	IndexNormal IndexState = iota
	IndexRebuilding
	IndexLocked
)

func (s IndexState) String() string {
	switch s {
	case IndexNormal:
		return "normal"
	case IndexRebuilding:
		return "rebuilding"
	case IndexLocked:
		return "locked"
	default:
		return "unknown"
	}
}
