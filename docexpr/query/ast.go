// Package query holds the predicate AST and the builder that recognizes
// caller expression trees into it.
package query

import (
	"fmt"
	"strings"
)

// Node represents a predicate AST node
type Node interface {
	isNode()
	String() string
}

// CmpOp is a comparison operator
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNe
	CmpLt
	CmpLte
	CmpGt
	CmpGte
)

func (op CmpOp) String() string {
	switch op {
	case CmpEq:
		return "Eq"
	case CmpNe:
		return "Ne"
	case CmpLt:
		return "Lt"
	case CmpLte:
		return "Lte"
	case CmpGt:
		return "Gt"
	case CmpGte:
		return "Gte"
	default:
		return "?"
	}
}

// Flip returns the operator for swapped operands: c < f is f > c
func (op CmpOp) Flip() CmpOp {
	switch op {
	case CmpLt:
		return CmpGt
	case CmpLte:
		return CmpGte
	case CmpGt:
		return CmpLt
	case CmpGte:
		return CmpLte
	default:
		return op
	}
}

// Negate returns the complementary operator: !(f < c) is f >= c
func (op CmpOp) Negate() CmpOp {
	switch op {
	case CmpEq:
		return CmpNe
	case CmpNe:
		return CmpEq
	case CmpLt:
		return CmpGte
	case CmpLte:
		return CmpGt
	case CmpGt:
		return CmpLte
	case CmpGte:
		return CmpLt
	default:
		return op
	}
}

// LogicalOp is a boolean connective
type LogicalOp int

const (
	LogicAnd LogicalOp = iota
	LogicOr
)

func (op LogicalOp) String() string {
	if op == LogicOr {
		return "Or"
	}
	return "And"
}

// Dual swaps And and Or
func (op LogicalOp) Dual() LogicalOp {
	if op == LogicOr {
		return LogicAnd
	}
	return LogicOr
}

// Constant is a value known when the predicate is built
type Constant struct {
	Value any
}

func (Constant) isNode() {}

func (c Constant) String() string {
	return fmt.Sprintf("Constant(%v)", c.Value)
}

// Field is a resolved, dotted field path
type Field struct {
	Path string
}

func (Field) isNode() {}

func (f Field) String() string {
	return "Field(" + f.Path + ")"
}

// Compare tests Field against a constant
type Compare struct {
	Op    CmpOp
	Field Field
	Value Constant
}

func (Compare) isNode() {}

func (c Compare) String() string {
	return fmt.Sprintf("Compare(%s, %s, %v)", c.Op, c.Field.Path, c.Value.Value)
}

// Membership tests Field for (non-)membership in Values
type Membership struct {
	Field   Field
	Values  []any
	Negated bool
}

func (Membership) isNode() {}

func (m Membership) String() string {
	vals := make([]string, len(m.Values))
	for i, v := range m.Values {
		vals[i] = fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("Membership(%s, [%s], negated=%t)", m.Field.Path, strings.Join(vals, " "), m.Negated)
}

// Logical combines two predicates
type Logical struct {
	Op    LogicalOp
	Left  Node
	Right Node
}

func (Logical) isNode() {}

func (l Logical) String() string {
	return fmt.Sprintf("%s(%s, %s)", l.Op, describe(l.Left), describe(l.Right))
}

// Not negates Inner. Build never emits it.
type Not struct {
	Inner Node
}

func (Not) isNode() {}

func (n Not) String() string {
	return "Not(" + describe(n.Inner) + ")"
}

func describe(n Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.String()
}
