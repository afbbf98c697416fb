// Package expr is the caller-facing expression tree for typed predicates and
// member selectors.
//
// A predicate is a boolean expression over a single document parameter, built
// either with the helpers in this package or parsed from Go-like source text
// with Parse. The tree is deliberately wider than what the compiler accepts:
// arithmetic, arbitrary calls, indexers and nested lambdas can be expressed so
// that they can be rejected with a precise diagnostic.
package expr

import (
	"fmt"
	"strconv"
	"strings"
)

// Expr represents a node of a caller expression tree
type Expr interface {
	isExpr()
	String() string
}

// BinaryOp is a binary operator
type BinaryOp int

const (
	OpEq BinaryOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAndAlso
	OpOrElse
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
)

func (op BinaryOp) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpNe:
		return "!="
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAndAlso:
		return "&&"
	case OpOrElse:
		return "||"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	default:
		return "?"
	}
}

// IsComparison reports whether op is one of == != < <= > >=
func (op BinaryOp) IsComparison() bool {
	return op >= OpEq && op <= OpGe
}

// UnaryOp is a unary operator
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "!"
	case OpNeg:
		return "-"
	default:
		return "?"
	}
}

// ParamExpr is the document instance the predicate is evaluated against
type ParamExpr struct {
	Name string
}

func (ParamExpr) isExpr() {}

func (p ParamExpr) String() string {
	if p.Name == "" {
		return DefaultParamName
	}
	return p.Name
}

// MemberExpr accesses a named member of X
type MemberExpr struct {
	X    Expr
	Name string
}

func (MemberExpr) isExpr() {}

func (m MemberExpr) String() string {
	return describe(m.X) + "." + m.Name
}

// ConstExpr is a value known when the tree is built
type ConstExpr struct {
	Value any
}

func (ConstExpr) isExpr() {}

func (c ConstExpr) String() string {
	return formatValue(c.Value)
}

// ListExpr is a list literal; it is constant when all elements are
type ListExpr struct {
	Elems []Expr
}

func (ListExpr) isExpr() {}

func (l ListExpr) String() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = describe(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// BinaryExpr applies Op to Left and Right
type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

func (BinaryExpr) isExpr() {}

func (b BinaryExpr) String() string {
	return operand(b.Left) + " " + b.Op.String() + " " + operand(b.Right)
}

// UnaryExpr applies Op to X
type UnaryExpr struct {
	Op UnaryOp
	X  Expr
}

func (UnaryExpr) isExpr() {}

func (u UnaryExpr) String() string {
	return u.Op.String() + operand(u.X)
}

// CallExpr invokes Method on Receiver. Receiver is nil for free functions.
type CallExpr struct {
	Receiver Expr
	Method   string
	Args     []Expr
}

func (CallExpr) isExpr() {}

func (c CallExpr) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = describe(a)
	}
	call := c.Method + "(" + strings.Join(args, ", ") + ")"
	if c.Receiver == nil {
		return call
	}
	return describe(c.Receiver) + "." + call
}

// IndexExpr indexes X with Index
type IndexExpr struct {
	X     Expr
	Index Expr
}

func (IndexExpr) isExpr() {}

func (i IndexExpr) String() string {
	return describe(i.X) + "[" + describe(i.Index) + "]"
}

// LambdaExpr is a nested function literal
type LambdaExpr struct {
	Params []string
	Body   Expr
}

func (LambdaExpr) isExpr() {}

func (l LambdaExpr) String() string {
	return "func(" + strings.Join(l.Params, ", ") + ") { return " + describe(l.Body) + " }"
}

func describe(e Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}

// operand parenthesizes nested operators so descriptions stay unambiguous
func operand(e Expr) string {
	switch e.(type) {
	case BinaryExpr:
		return "(" + e.String() + ")"
	default:
		return describe(e)
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

// Depth returns the nesting depth of e, counting e itself
func Depth(e Expr) int {
	switch x := e.(type) {
	case nil:
		return 0
	case MemberExpr:
		return 1 + Depth(x.X)
	case ListExpr:
		return 1 + maxDepth(x.Elems...)
	case BinaryExpr:
		return 1 + maxDepth(x.Left, x.Right)
	case UnaryExpr:
		return 1 + Depth(x.X)
	case CallExpr:
		return 1 + maxDepth(append([]Expr{x.Receiver}, x.Args...)...)
	case IndexExpr:
		return 1 + maxDepth(x.X, x.Index)
	case LambdaExpr:
		return 1 + Depth(x.Body)
	default:
		return 1
	}
}

func maxDepth(es ...Expr) int {
	d := 0
	for _, e := range es {
		if n := Depth(e); n > d {
			d = n
		}
	}
	return d
}
