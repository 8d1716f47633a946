package exprengine

import (
	"fmt"

	"github.com/cuemby/graphd/pkg/types"
)

// EvalError reports a failure during expression evaluation not covered by
// a more specific error type.
type EvalError struct {
	Op     string
	Reason string
}

func (e *EvalError) Error() string {
	return fmt.Sprintf("exprengine: %s: %s", e.Op, e.Reason)
}

// UndefinedNameError reports a property reference the context has no
// value for.
type UndefinedNameError struct {
	Name string
}

func (e *UndefinedNameError) Error() string {
	return fmt.Sprintf("exprengine: undefined name %q", e.Name)
}

// TypeMismatchError reports an operator applied to operand kinds it does
// not support.
type TypeMismatchError struct {
	Op    string
	Left  types.ValueKind
	Right types.ValueKind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("exprengine: operator %q not defined for kinds (%d, %d)", e.Op, e.Left, e.Right)
}

func asBool(v types.Value) (bool, error) {
	if v.Kind != types.KindBool {
		return false, &TypeMismatchError{Op: "bool-context", Left: v.Kind}
	}
	return v.B, nil
}

func logicalNot(v types.Value) (types.Value, error) {
	b, err := asBool(v)
	if err != nil {
		return types.Null, err
	}
	return types.BoolValue(!b), nil
}

func negate(v types.Value) (types.Value, error) {
	switch v.Kind {
	case types.KindInt:
		return types.IntValue(-v.I), nil
	case types.KindFloat:
		return types.FloatValue(-v.F), nil
	default:
		return types.Null, &TypeMismatchError{Op: "-", Left: v.Kind}
	}
}

// isNumeric reports whether v is an int or float.
func isNumeric(v types.Value) bool {
	return v.Kind == types.KindInt || v.Kind == types.KindFloat
}

func asFloat(v types.Value) float64 {
	if v.Kind == types.KindInt {
		return float64(v.I)
	}
	return v.F
}

func arithmetic(op string, l, r types.Value) (types.Value, error) {
	if !isNumeric(l) || !isNumeric(r) {
		if l.Kind == types.KindString && r.Kind == types.KindString && op == "+" {
			return types.StringValue(l.S + r.S), nil
		}
		return types.Null, &TypeMismatchError{Op: op, Left: l.Kind, Right: r.Kind}
	}
	if l.Kind == types.KindInt && r.Kind == types.KindInt {
		switch op {
		case "+":
			return types.IntValue(l.I + r.I), nil
		case "-":
			return types.IntValue(l.I - r.I), nil
		case "*":
			return types.IntValue(l.I * r.I), nil
		case "/":
			if r.I == 0 {
				return types.Null, &EvalError{Op: op, Reason: "division by zero"}
			}
			return types.IntValue(l.I / r.I), nil
		}
	}
	lf, rf := asFloat(l), asFloat(r)
	switch op {
	case "+":
		return types.FloatValue(lf + rf), nil
	case "-":
		return types.FloatValue(lf - rf), nil
	case "*":
		return types.FloatValue(lf * rf), nil
	case "/":
		if rf == 0 {
			return types.Null, &EvalError{Op: op, Reason: "division by zero"}
		}
		return types.FloatValue(lf / rf), nil
	}
	return types.Null, &EvalError{Op: op, Reason: "unreachable"}
}

func compare(op string, l, r types.Value) (types.Value, error) {
	if isNumeric(l) && isNumeric(r) {
		lf, rf := asFloat(l), asFloat(r)
		var b bool
		switch op {
		case "==":
			b = lf == rf
		case "!=":
			b = lf != rf
		case "<":
			b = lf < rf
		case "<=":
			b = lf <= rf
		case ">":
			b = lf > rf
		case ">=":
			b = lf >= rf
		}
		return types.BoolValue(b), nil
	}
	if l.Kind != r.Kind {
		if op == "==" {
			return types.BoolValue(false), nil
		}
		if op == "!=" {
			return types.BoolValue(true), nil
		}
		return types.Null, &TypeMismatchError{Op: op, Left: l.Kind, Right: r.Kind}
	}
	switch l.Kind {
	case types.KindBool:
		return boolCompare(op, l.B, r.B)
	case types.KindString:
		return stringCompare(op, l.S, r.S)
	case types.KindTimestamp:
		lu, ru := l.T.UnixNano(), r.T.UnixNano()
		return intCompare(op, lu, ru)
	default:
		return types.Null, &TypeMismatchError{Op: op, Left: l.Kind, Right: r.Kind}
	}
}

func boolCompare(op string, l, r bool) (types.Value, error) {
	switch op {
	case "==":
		return types.BoolValue(l == r), nil
	case "!=":
		return types.BoolValue(l != r), nil
	default:
		return types.Null, &EvalError{Op: op, Reason: "ordering operators not defined for bool"}
	}
}

func stringCompare(op string, l, r string) (types.Value, error) {
	switch op {
	case "==":
		return types.BoolValue(l == r), nil
	case "!=":
		return types.BoolValue(l != r), nil
	case "<":
		return types.BoolValue(l < r), nil
	case "<=":
		return types.BoolValue(l <= r), nil
	case ">":
		return types.BoolValue(l > r), nil
	case ">=":
		return types.BoolValue(l >= r), nil
	default:
		return types.Null, &EvalError{Op: op, Reason: "unknown comparison operator"}
	}
}

func intCompare(op string, l, r int64) (types.Value, error) {
	switch op {
	case "==":
		return types.BoolValue(l == r), nil
	case "!=":
		return types.BoolValue(l != r), nil
	case "<":
		return types.BoolValue(l < r), nil
	case "<=":
		return types.BoolValue(l <= r), nil
	case ">":
		return types.BoolValue(l > r), nil
	case ">=":
		return types.BoolValue(l >= r), nil
	default:
		return types.Null, &EvalError{Op: op, Reason: "unknown comparison operator"}
	}
}
