package executor

import "github.com/cuemby/graphd/pkg/types"

// RowKind selects which of the two row-key shapes a Request targets.
type RowKind uint8

const (
	KindVertex RowKind = iota
	KindEdge
)

// Key identifies the single row a Request mutates. Only the fields for
// Kind are meaningful.
type Key struct {
	Kind RowKind

	// Vertex fields.
	TagID types.SchemaID
	VID   []byte

	// Edge fields. EdgeType's sign selects the direction; a request for
	// one sign never matches a row stored under the other, since the
	// sign is baked into the stored key bytes themselves.
	Src      []byte
	EdgeType int32
	Ranking  int64
	Dst      []byte
}

// Update is one `set name = expr` clause, evaluated and applied in the
// order it appears in Request.Updates.
type Update struct {
	Column string
	Expr   string
}

// Request is one row's worth of work for Execute.
type Request struct {
	Space types.SpaceID
	Part  types.PartitionID
	Key   Key

	Updates []Update
	// Filter is an exprengine expression evaluated against the row's
	// property context; empty means no filter. Must evaluate to a bool.
	Filter string
	// Yields are exprengine expressions evaluated against the final (or,
	// on FilteredOut, the pre-update) property context and returned by
	// name in Result.Yields.
	Yields []string
	// Insertable allows the MISSING branch to create a new row instead
	// of failing KeyNotFound (the UPSERT case).
	Insertable bool
}

// Result is what Execute returns on every non-error path, including the
// informational FilteredOut outcome.
type Result struct {
	Code   Code
	Leader string
	Yields map[string]types.Value
}
