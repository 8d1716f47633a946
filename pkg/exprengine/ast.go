package exprengine

import "github.com/cuemby/graphd/pkg/types"

// Expr is a parsed expression tree node.
type Expr interface {
	eval(ctx Context) (types.Value, error)
}

type literalExpr struct {
	v types.Value
}

func (e *literalExpr) eval(ctx Context) (types.Value, error) { return e.v, nil }

type nameExpr struct {
	name string
}

func (e *nameExpr) eval(ctx Context) (types.Value, error) {
	v, ok := ctx.Get(e.name)
	if !ok {
		return types.Null, &UndefinedNameError{Name: e.name}
	}
	return v, nil
}

type unaryExpr struct {
	op      string
	operand Expr
}

func (e *unaryExpr) eval(ctx Context) (types.Value, error) {
	v, err := e.operand.eval(ctx)
	if err != nil {
		return types.Null, err
	}
	switch e.op {
	case "-":
		return negate(v)
	case "!":
		return logicalNot(v)
	default:
		return types.Null, &EvalError{Op: e.op, Reason: "unknown unary operator"}
	}
}

type binaryExpr struct {
	op          string
	left, right Expr
}

func (e *binaryExpr) eval(ctx Context) (types.Value, error) {
	// Logical operators short-circuit and therefore evaluate the right
	// side lazily.
	switch e.op {
	case "&&":
		l, err := e.left.eval(ctx)
		if err != nil {
			return types.Null, err
		}
		lb, err := asBool(l)
		if err != nil {
			return types.Null, err
		}
		if !lb {
			return types.BoolValue(false), nil
		}
		r, err := e.right.eval(ctx)
		if err != nil {
			return types.Null, err
		}
		rb, err := asBool(r)
		if err != nil {
			return types.Null, err
		}
		return types.BoolValue(rb), nil
	case "||":
		l, err := e.left.eval(ctx)
		if err != nil {
			return types.Null, err
		}
		lb, err := asBool(l)
		if err != nil {
			return types.Null, err
		}
		if lb {
			return types.BoolValue(true), nil
		}
		r, err := e.right.eval(ctx)
		if err != nil {
			return types.Null, err
		}
		rb, err := asBool(r)
		if err != nil {
			return types.Null, err
		}
		return types.BoolValue(rb), nil
	}

	l, err := e.left.eval(ctx)
	if err != nil {
		return types.Null, err
	}
	r, err := e.right.eval(ctx)
	if err != nil {
		return types.Null, err
	}

	switch e.op {
	case "+", "-", "*", "/":
		return arithmetic(e.op, l, r)
	case "==", "!=", "<", "<=", ">", ">=":
		return compare(e.op, l, r)
	default:
		return types.Null, &EvalError{Op: e.op, Reason: "unknown binary operator"}
	}
}
