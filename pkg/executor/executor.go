package executor

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/cuemby/graphd/pkg/batch"
	"github.com/cuemby/graphd/pkg/catalog"
	"github.com/cuemby/graphd/pkg/exprengine"
	"github.com/cuemby/graphd/pkg/indexstate"
	"github.com/cuemby/graphd/pkg/keycodec"
	"github.com/cuemby/graphd/pkg/kvengine"
	"github.com/cuemby/graphd/pkg/row"
	"github.com/cuemby/graphd/pkg/rowlock"
	"github.com/cuemby/graphd/pkg/types"
)

// ReplicatedKV is the collaborator contract the executor needs from the
// replicated storage layer. pkg/replicatedkv.Cluster satisfies it.
type ReplicatedKV interface {
	AsyncAppendBatch(ctx context.Context, space types.SpaceID, part types.PartitionID, ops []kvengine.Op) error
	Get(space types.SpaceID, part types.PartitionID, key []byte) ([]byte, error)
}

// TxnManager is the optional cross-shard collaborator, consulted only
// for edge updates. When nil the executor commits the
// edge's own side of the write directly through ReplicatedKV instead of
// routing through a two-phase protocol.
type TxnManager interface {
	UpdateEdgeAtomic(ctx context.Context, vidLen int, space types.SpaceID, part types.PartitionID, key []byte, apply func() ([]kvengine.Op, error)) error
}

// ExecutorContext holds the immutable, shared handles to every
// collaborator an Execute call consults, rather than a mutable
// back-pointer environment. It owns no per-call state; execState
// (unexported, built fresh inside Execute) holds that instead.
type ExecutorContext struct {
	Catalog *catalog.Catalog
	Locks   *rowlock.Table
	Oracle  *indexstate.Oracle
	KV      ReplicatedKV
	Txn     TxnManager
	VIDLen  int
}

// Executor runs the read-modify-write pipeline against one
// ExecutorContext.
type Executor struct {
	ctx    ExecutorContext
	active *activeCounters
}

// New builds an Executor over ctx.
func New(ctx ExecutorContext) *Executor {
	return &Executor{ctx: ctx, active: newActiveCounters()}
}

// nowFunc is indirected so TTL-expiry tests can pin "now" without real
// sleeps.
var nowFunc = time.Now

// execState is the small mutable scratch space one Execute call owns and
// drops at the end; nothing here outlives the call.
type execState struct {
	snap *catalog.Snapshot

	schema     []types.Column
	schemaID   types.SchemaID
	ttl        *types.TTLSpec
	version    types.SchemaVersion
	storageKey []byte

	found      bool
	insertPath bool
	ttlExpired bool

	oldReader *row.Reader
	ctxValues exprengine.MapContext
	batch     *batch.Batch
}

// Execute runs one row's full lock/read/filter/collect/apply/encode/
// index-delta/commit/release pipeline.
func (e *Executor) Execute(ctx context.Context, req Request) (Result, error) {
	lockKey := identityFor(req)
	guard, err := e.ctx.Locks.Acquire(lockKey)
	if err != nil {
		var conflict *rowlock.ConflictError
		if errors.As(err, &conflict) {
			return Result{}, &StorageError{Code: CodeConcurrentModify, Reason: conflict.Error()}
		}
		return Result{}, storageErr(CodeConcurrentModify, err.Error())
	}
	defer guard.Release()

	leave := e.active.enter(req.Space, req.Part)
	defer leave()

	st := &execState{snap: e.ctx.Catalog.Pin()}
	if err := e.resolveSchema(req, st); err != nil {
		return Result{}, err
	}

	st.storageKey, err = encodeKey(req, e.ctx.VIDLen)
	if err != nil {
		return Result{}, storageErr(CodeIllegalData, err.Error())
	}

	if err := e.readRow(req, st); err != nil {
		return Result{}, err
	}

	if !st.found {
		if !req.Insertable {
			return Result{}, &StorageError{Code: CodeKeyNotFound}
		}
		st.insertPath = true
	}

	implicit := implicitColumns(req)
	st.ctxValues = make(exprengine.MapContext)
	for k, v := range implicit {
		st.ctxValues[k] = v
	}

	if st.found {
		for _, col := range st.schema {
			v, err := st.oldReader.Get(col)
			if err != nil {
				return Result{}, storageErr(CodeIllegalData, err.Error())
			}
			st.ctxValues[col.Name] = v
		}
	} else {
		for _, col := range st.schema {
			if v, ok := defaultOrNull(col); ok {
				st.ctxValues[col.Name] = v
			}
		}
	}

	st.ctxValues["_inserted"] = types.BoolValue(st.insertPath)
	st.ctxValues["_ttl_expired"] = types.BoolValue(st.ttlExpired)

	if st.found && req.Filter != "" {
		v, err := exprengine.Eval(req.Filter, st.ctxValues)
		if err != nil {
			return Result{}, storageErr(CodeIllegalData, fmt.Sprintf("filter: %s", err))
		}
		if v.Kind != types.KindBool {
			return Result{}, storageErr(CodeIllegalData, "filter did not evaluate to a bool")
		}
		if !v.B {
			yields, err := evalYields(req.Yields, st.ctxValues)
			if err != nil {
				return Result{}, err
			}
			return Result{Code: CodeFilteredOut, Yields: yields}, nil
		}
	}

	for _, u := range req.Updates {
		v, err := exprengine.Eval(u.Expr, st.ctxValues)
		if err != nil {
			return Result{}, storageErr(CodeIllegalData, fmt.Sprintf("update %s: %s", u.Column, err))
		}
		st.ctxValues[u.Column] = v
	}

	payload, err := e.encodeRow(st)
	if err != nil {
		return Result{}, err
	}

	st.batch = batch.New()
	st.batch.Put(st.storageKey, payload)

	if err := e.indexDelta(req, st, payload); err != nil {
		return Result{}, err
	}

	if err := e.commit(ctx, req, st); err != nil {
		return Result{}, err
	}

	yields, err := evalYields(req.Yields, st.ctxValues)
	if err != nil {
		return Result{}, err
	}
	return Result{Code: CodeOK, Yields: yields}, nil
}

func defaultOrNull(col types.Column) (types.Value, bool) {
	if col.HasDefault {
		v, err := exprengine.Eval(string(col.Default), exprengine.NullContext)
		if err != nil {
			return types.Null, false
		}
		return v, true
	}
	if col.Nullable {
		return types.Null, true
	}
	return types.Null, false
}

func evalYields(yields []string, ctxValues exprengine.MapContext) (map[string]types.Value, error) {
	if len(yields) == 0 {
		return nil, nil
	}
	out := make(map[string]types.Value, len(yields))
	for _, y := range yields {
		v, err := exprengine.Eval(y, ctxValues)
		if err != nil {
			return nil, storageErr(CodeIllegalData, fmt.Sprintf("yield %s: %s", y, err))
		}
		out[y] = v
	}
	return out, nil
}

func (e *Executor) resolveSchema(req Request, st *execState) error {
	switch req.Key.Kind {
	case KindVertex:
		s, err := st.snap.LatestTag(req.Space, req.Key.TagID)
		if err != nil {
			var nf *catalog.NotFound
			if errors.As(err, &nf) {
				return &StorageError{Code: CodeSchemaTagNotFound, Reason: err.Error()}
			}
			return storageErr(CodeIllegalData, err.Error())
		}
		st.schema = s.Columns
		st.schemaID = req.Key.TagID
		st.ttl = s.TTL
		st.version = s.Version
	case KindEdge:
		s, err := st.snap.LatestEdge(req.Space, req.Key.EdgeType)
		if err != nil {
			var nf *catalog.NotFound
			if errors.As(err, &nf) {
				return &StorageError{Code: CodeSchemaEdgeNotFound, Reason: err.Error()}
			}
			return storageErr(CodeIllegalData, err.Error())
		}
		st.schema = s.Columns
		st.schemaID = types.SchemaID(canon(req.Key.EdgeType))
		st.ttl = s.TTL
		st.version = s.Version
	default:
		return storageErr(CodeIllegalData, "unknown row kind")
	}
	return nil
}

func (e *Executor) readRow(req Request, st *execState) error {
	raw, err := e.ctx.KV.Get(req.Space, req.Part, st.storageKey)
	if err != nil {
		if errors.Is(err, kvengine.ErrNotFound) {
			st.found = false
			return nil
		}
		return storageErr(CodeKVEngineError, err.Error())
	}

	authorSchema, authorTTL, err := e.resolveAuthoringSchema(req, st, raw)
	if err != nil {
		return err
	}

	r, err := row.NewReader(raw, authorSchema)
	if err != nil {
		return storageErr(CodeIllegalData, err.Error())
	}
	st.found = true
	st.oldReader = r

	if authorTTL != nil {
		anchor, err := r.Get(findColumn(authorSchema, authorTTL.Column))
		if err == nil && anchor.Kind == types.KindTimestamp {
			if anchor.T.Add(authorTTL.Duration).Before(nowFunc()) {
				st.ttlExpired = true
				st.found = false
			}
		}
	}
	return nil
}

// resolveAuthoringSchema peeks the version header embedded in raw and
// resolves the exact schema version that encoded it, which is not
// necessarily st.schema (the latest version, already resolved by
// resolveSchema): a row written before the most recent schema change
// must be decoded against the columns it was actually laid out with, or
// NewReader misreads later bytes as belonging to the wrong column.
func (e *Executor) resolveAuthoringSchema(req Request, st *execState, raw []byte) ([]types.Column, *types.TTLSpec, error) {
	ver, err := row.PeekVersion(raw)
	if err != nil {
		return nil, nil, storageErr(CodeIllegalData, err.Error())
	}
	if ver == st.version {
		return st.schema, st.ttl, nil
	}
	switch req.Key.Kind {
	case KindVertex:
		s, err := st.snap.TagByVersion(req.Space, req.Key.TagID, ver)
		if err != nil {
			return nil, nil, storageErr(CodeIllegalData, fmt.Sprintf("resolving authoring schema version %d: %s", ver, err))
		}
		return s.Columns, s.TTL, nil
	case KindEdge:
		s, err := st.snap.EdgeByVersion(req.Space, req.Key.EdgeType, ver)
		if err != nil {
			return nil, nil, storageErr(CodeIllegalData, fmt.Sprintf("resolving authoring schema version %d: %s", ver, err))
		}
		return s.Columns, s.TTL, nil
	default:
		return nil, nil, storageErr(CodeIllegalData, "unknown row kind")
	}
}

func findColumn(schema []types.Column, name string) types.Column {
	for _, c := range schema {
		if c.Name == name {
			return c
		}
	}
	return types.Column{Name: name}
}

func (e *Executor) encodeRow(st *execState) ([]byte, error) {
	w := row.NewWriter(st.schema)
	for _, col := range st.schema {
		if v, ok := st.ctxValues[col.Name]; ok {
			w.Set(col.Name, v)
		}
	}
	payload, err := w.Finish(st.version, st.ttl)
	if err != nil {
		var noDefault *row.NoDefaultAndNotNullable
		var invalidField *row.InvalidFieldValue
		var invalidDefault *row.InvalidDefault
		switch {
		case errors.As(err, &noDefault):
			return nil, &StorageError{Code: CodeNoDefaultAndNotNullable, Reason: err.Error()}
		case errors.As(err, &invalidField):
			return nil, &StorageError{Code: CodeInvalidFieldValue, Reason: err.Error()}
		case errors.As(err, &invalidDefault):
			return nil, &StorageError{Code: CodeInvalidDefault, Reason: err.Error()}
		default:
			return nil, storageErr(CodeIllegalData, err.Error())
		}
	}
	return payload, nil
}

func (e *Executor) indexDelta(req Request, st *execState, payload []byte) error {
	defs := st.snap.IndexesFor(st.schemaID)
	if len(defs) == 0 {
		return nil
	}
	newReader, err := row.NewReader(payload, st.schema)
	if err != nil {
		return storageErr(CodeIllegalData, err.Error())
	}

	for _, def := range defs {
		state, err := e.ctx.Oracle.State(req.Space, req.Part, def.IndexID)
		if err != nil {
			return storageErr(CodeKVEngineError, err.Error())
		}
		if state == types.IndexLocked {
			return &StorageError{Code: CodeIndexLocked, Reason: fmt.Sprintf("index %d is locked", def.IndexID)}
		}

		var oldKey []byte
		if !st.insertPath {
			oldKey, err = buildIndexKey(req.Part, def, func(name string) (types.Value, error) {
				return st.oldReader.Get(findColumn(st.schema, name))
			}, st.storageKey)
			if err != nil {
				return storageErr(CodeIllegalData, err.Error())
			}
		}
		newKey, err := buildIndexKey(req.Part, def, func(name string) (types.Value, error) {
			return newReader.Get(findColumn(st.schema, name))
		}, st.storageKey)
		if err != nil {
			return storageErr(CodeIllegalData, err.Error())
		}

		switch state {
		case types.IndexRebuilding:
			if len(oldKey) > 0 {
				seq := keycodec.NextOpSeq()
				st.batch.Put(keycodec.DeleteOperationKey(req.Part, seq, oldKey), []byte{1})
			}
			if len(newKey) > 0 {
				seq := keycodec.NextOpSeq()
				st.batch.Put(keycodec.ModifyOperationKey(req.Part, seq, newKey), []byte{1})
			}
		default: // Normal
			if len(oldKey) > 0 && string(oldKey) != string(newKey) {
				st.batch.Remove(oldKey)
			}
			if len(newKey) > 0 {
				st.batch.Put(newKey, st.storageKey)
			}
		}
	}
	return nil
}

// buildIndexKey resolves every field of def via get and encodes the
// index key, or returns a nil key (not an error) when any field resolves
// to null: a null-valued field produces no index entry.
func buildIndexKey(part types.PartitionID, def *types.IndexDef, get func(string) (types.Value, error), primaryID []byte) ([]byte, error) {
	fieldBytes := make([][]byte, 0, len(def.Fields))
	for _, f := range def.Fields {
		v, err := get(f.Column)
		if err != nil {
			return nil, err
		}
		if v.IsNull() {
			return nil, nil
		}
		b, err := keycodec.EncodeFieldValue(v, f.Width)
		if err != nil {
			return nil, err
		}
		fieldBytes = append(fieldBytes, b)
	}
	return keycodec.EncodeIndexKey(part, def.IndexID, fieldBytes, primaryID), nil
}

func (e *Executor) commit(ctx context.Context, req Request, st *execState) error {
	ops := st.batch.Ops()
	var err error
	if req.Key.Kind == KindEdge && e.ctx.Txn != nil {
		err = e.ctx.Txn.UpdateEdgeAtomic(ctx, e.ctx.VIDLen, req.Space, req.Part, st.storageKey, func() ([]kvengine.Op, error) {
			return ops, nil
		})
	} else {
		err = e.ctx.KV.AsyncAppendBatch(ctx, req.Space, req.Part, ops)
	}
	if err != nil {
		var lh leaderHinter
		if errors.As(err, &lh) {
			return &StorageError{Code: CodeLeaderChanged, Leader: lh.LeaderHint()}
		}
		return storageErr(CodeKVEngineError, err.Error())
	}
	return nil
}

func identityFor(req Request) string {
	switch req.Key.Kind {
	case KindEdge:
		return rowlock.EdgeIdentity(req.Space, req.Part, req.Key.Src, req.Key.EdgeType, req.Key.Ranking, req.Key.Dst)
	default:
		return rowlock.VertexIdentity(req.Space, req.Part, req.Key.TagID, req.Key.VID)
	}
}

func encodeKey(req Request, vidLen int) ([]byte, error) {
	switch req.Key.Kind {
	case KindEdge:
		return keycodec.EncodeEdgeKey(req.Part, req.Key.Src, req.Key.EdgeType, req.Key.Ranking, req.Key.Dst, vidLen)
	default:
		return keycodec.EncodeVertexKey(req.Part, req.Key.VID, req.Key.TagID, vidLen)
	}
}

func implicitColumns(req Request) map[string]types.Value {
	if req.Key.Kind == KindEdge {
		return map[string]types.Value{
			"src":  types.StringValue(hex.EncodeToString(req.Key.Src)),
			"type": types.IntValue(int64(req.Key.EdgeType)),
			"rank": types.IntValue(req.Key.Ranking),
			"dst":  types.StringValue(hex.EncodeToString(req.Key.Dst)),
		}
	}
	return map[string]types.Value{
		"vid":    types.StringValue(hex.EncodeToString(req.Key.VID)),
		"tag_id": types.IntValue(int64(req.Key.TagID)),
	}
}

func canon(edgeType int32) int32 {
	if edgeType < 0 {
		return -edgeType
	}
	return edgeType
}
