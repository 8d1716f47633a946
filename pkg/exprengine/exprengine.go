package exprengine

import "github.com/cuemby/graphd/pkg/types"

// Context resolves property names during evaluation.
type Context interface {
	Get(name string) (types.Value, bool)
}

// MapContext is a Context backed by a plain map, the shape the executor
// builds for a single row and uses for both its filter and its "apply
// updates" steps.
type MapContext map[string]types.Value

// Get implements Context.
func (m MapContext) Get(name string) (types.Value, bool) {
	v, ok := m[name]
	return v, ok
}

// NullContext is the context column defaults are evaluated under: every
// property reference is undefined, so only literal-only default
// expressions succeed.
var NullContext Context = MapContext(nil)

// Eval parses and evaluates src against ctx in one step.
func Eval(src string, ctx Context) (types.Value, error) {
	expr, err := Parse(src)
	if err != nil {
		return types.Null, err
	}
	return expr.eval(ctx)
}

// EvalCompiled evaluates an already-parsed Expr against ctx, avoiding a
// re-parse when the same default or filter expression runs many times.
func EvalCompiled(expr Expr, ctx Context) (types.Value, error) {
	return expr.eval(ctx)
}
