package expr

import "reflect"

// DefaultParamName is the display name of the document parameter
const DefaultParamName = "x"

// Param returns the document parameter
func Param() ParamExpr {
	return ParamExpr{Name: DefaultParamName}
}

// Field returns the member chain Param().names[0].names[1]...
func Field(names ...string) Expr {
	var e Expr = Param()
	for _, n := range names {
		e = MemberExpr{X: e, Name: n}
	}
	return e
}

// Member accesses name on x
func Member(x Expr, name string) MemberExpr {
	return MemberExpr{X: x, Name: name}
}

// Const wraps a value
func Const(v any) ConstExpr {
	return ConstExpr{Value: v}
}

// lift turns non-Expr operands into constants so builders read naturally
func lift(v any) Expr {
	if e, ok := v.(Expr); ok {
		return e
	}
	return ConstExpr{Value: v}
}

func Eq(l, r any) BinaryExpr { return BinaryExpr{Op: OpEq, Left: lift(l), Right: lift(r)} }
func Ne(l, r any) BinaryExpr { return BinaryExpr{Op: OpNe, Left: lift(l), Right: lift(r)} }
func Lt(l, r any) BinaryExpr { return BinaryExpr{Op: OpLt, Left: lift(l), Right: lift(r)} }
func Le(l, r any) BinaryExpr { return BinaryExpr{Op: OpLe, Left: lift(l), Right: lift(r)} }
func Gt(l, r any) BinaryExpr { return BinaryExpr{Op: OpGt, Left: lift(l), Right: lift(r)} }
func Ge(l, r any) BinaryExpr { return BinaryExpr{Op: OpGe, Left: lift(l), Right: lift(r)} }

// Binary builds an arbitrary binary expression
func Binary(op BinaryOp, l, r any) BinaryExpr {
	return BinaryExpr{Op: op, Left: lift(l), Right: lift(r)}
}

// And left-folds xs with &&. It panics when xs is empty.
func And(xs ...Expr) Expr {
	return fold(OpAndAlso, xs)
}

// Or left-folds xs with ||. It panics when xs is empty.
func Or(xs ...Expr) Expr {
	return fold(OpOrElse, xs)
}

func fold(op BinaryOp, xs []Expr) Expr {
	if len(xs) == 0 {
		panic("expr: " + op.String() + " needs at least one operand")
	}
	e := xs[0]
	for _, x := range xs[1:] {
		e = BinaryExpr{Op: op, Left: e, Right: x}
	}
	return e
}

// Not negates x
func Not(x Expr) UnaryExpr {
	return UnaryExpr{Op: OpNot, X: x}
}

// Unary applies op to x
func Unary(op UnaryOp, x any) UnaryExpr {
	return UnaryExpr{Op: op, X: lift(x)}
}

// In tests field for membership in values, in order. A single slice argument
// is taken as the value list itself.
func In(field Expr, values ...any) CallExpr {
	return CallExpr{Receiver: field, Method: MethodIn, Args: []Expr{valueList(values)}}
}

// NotIn tests field for non-membership in values
func NotIn(field Expr, values ...any) CallExpr {
	return CallExpr{Receiver: field, Method: MethodNotIn, Args: []Expr{valueList(values)}}
}

func valueList(values []any) ConstExpr {
	if len(values) == 1 && values[0] != nil {
		rv := reflect.ValueOf(values[0])
		if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
			return ConstExpr{Value: values[0]}
		}
	}
	return ConstExpr{Value: values}
}

// Contains is seq.Contains(field) for a constant sequence such as []string
func Contains(seq any, field Expr) CallExpr {
	return CallExpr{Receiver: lift(seq), Method: MethodContains, Args: []Expr{field}}
}

// Call invokes method on recv with args
func Call(recv Expr, method string, args ...any) CallExpr {
	es := make([]Expr, len(args))
	for i, a := range args {
		es[i] = lift(a)
	}
	return CallExpr{Receiver: recv, Method: method, Args: es}
}

// Index is x[i]
func Index(x Expr, i any) IndexExpr {
	return IndexExpr{X: x, Index: lift(i)}
}

// Lambda wraps body in a nested function literal
func Lambda(body Expr, params ...string) LambdaExpr {
	return LambdaExpr{Params: params, Body: body}
}

// Method names recognized for membership tests
const (
	MethodIn       = "In"
	MethodNotIn    = "NotIn"
	MethodContains = "Contains"
	FuncContains   = "contains"
)
