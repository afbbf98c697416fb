package query

import (
	"fmt"

	"github.com/nonibytes/docexpr/docexpr/expr"
	"github.com/nonibytes/docexpr/docexpr/internal/bsonval"
	"github.com/nonibytes/docexpr/docexpr/mapping"
)

// UnsupportedError reports an expression shape outside the recognized
// predicate grammar
type UnsupportedError struct {
	Expr   string // description of the offending sub-expression
	Reason string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported expression %s: %s", e.Expr, e.Reason)
}

func unsupported(e expr.Expr, format string, args ...any) *UnsupportedError {
	desc := "<nil>"
	if e != nil {
		desc = e.String()
	}
	return &UnsupportedError{Expr: desc, Reason: fmt.Sprintf(format, args...)}
}

// FieldResolver maps member chains to field paths
type FieldResolver interface {
	Resolve(chain expr.Expr) (mapping.FieldPath, error)
}

// Build recognizes a predicate expression into an AST with negations pushed
// down to the leaves. Member chains are resolved through r; resolution
// failures are returned as is.
func Build(e expr.Expr, r FieldResolver) (Node, error) {
	b := &builder{resolver: r}
	return b.predicate(e)
}

type builder struct {
	resolver FieldResolver
}

func (b *builder) predicate(e expr.Expr) (Node, error) {
	switch x := e.(type) {
	case expr.BinaryExpr:
		switch {
		case x.Op == expr.OpAndAlso || x.Op == expr.OpOrElse:
			return b.logical(x)
		case x.Op.IsComparison():
			return b.comparison(x)
		default:
			return nil, unsupported(x, "operator %s is not a predicate", x.Op)
		}

	case expr.UnaryExpr:
		if x.Op != expr.OpNot {
			return nil, unsupported(x, "operator %s is not a predicate", x.Op)
		}
		inner, err := b.predicate(x.X)
		if err != nil {
			return nil, err
		}
		return Negate(inner), nil

	case expr.MemberExpr, expr.ParamExpr:
		return b.booleanMember(x)

	case expr.CallExpr:
		return b.call(x)

	case expr.ConstExpr:
		return nil, unsupported(x, "constant predicates are not supported")

	case expr.LambdaExpr:
		return nil, unsupported(x, "nested lambdas are not supported")

	case nil:
		return nil, unsupported(nil, "missing predicate")

	default:
		return nil, unsupported(x, "not a boolean predicate")
	}
}

func (b *builder) logical(x expr.BinaryExpr) (Node, error) {
	left, err := b.predicate(x.Left)
	if err != nil {
		return nil, err
	}
	right, err := b.predicate(x.Right)
	if err != nil {
		return nil, err
	}

	op := LogicAnd
	if x.Op == expr.OpOrElse {
		op = LogicOr
	}
	return Logical{Op: op, Left: left, Right: right}, nil
}

var cmpOps = map[expr.BinaryOp]CmpOp{
	expr.OpEq: CmpEq,
	expr.OpNe: CmpNe,
	expr.OpLt: CmpLt,
	expr.OpLe: CmpLte,
	expr.OpGt: CmpGt,
	expr.OpGe: CmpGte,
}

// comparison normalizes field-vs-constant in either order to field on the left
func (b *builder) comparison(x expr.BinaryExpr) (Node, error) {
	op := cmpOps[x.Op]

	left, err := b.operand(x.Left)
	if err != nil {
		return nil, err
	}
	right, err := b.operand(x.Right)
	if err != nil {
		return nil, err
	}

	switch {
	case left.field && right.field:
		return nil, unsupported(x, "comparing two fields is not supported")
	case !left.field && !right.field:
		return nil, unsupported(x, "comparison does not reference a document field")
	case left.field:
		f, err := b.resolve(x.Left)
		if err != nil {
			return nil, err
		}
		return Compare{Op: op, Field: f, Value: Constant{Value: right.value}}, nil
	default:
		f, err := b.resolve(x.Right)
		if err != nil {
			return nil, err
		}
		return Compare{Op: op.Flip(), Field: f, Value: Constant{Value: left.value}}, nil
	}
}

type operand struct {
	field bool
	value any
}

// operand classifies one side of a comparison as a field access or a
// constant. Calls and computed values are rejected here; indexers rooted at
// the document are left to the resolver.
func (b *builder) operand(e expr.Expr) (operand, error) {
	if v, ok := constant(e); ok {
		return operand{value: v}, nil
	}
	if call, ok := findCall(e); ok {
		return operand{}, unsupported(call, "method %s is not supported in comparisons", call.Method)
	}
	if rootedAtParam(e) {
		return operand{field: true}, nil
	}
	return operand{}, unsupported(e, "comparand must be a document field or a constant")
}

func (b *builder) resolve(e expr.Expr) (Field, error) {
	fp, err := b.resolver.Resolve(e)
	if err != nil {
		return Field{}, err
	}
	return Field{Path: fp.Path}, nil
}

// booleanMember treats a bare boolean member as member == true
func (b *builder) booleanMember(e expr.Expr) (Node, error) {
	fp, err := b.resolver.Resolve(e)
	if err != nil {
		return nil, err
	}
	switch fp.Leaf.Type {
	case mapping.TypeBool, mapping.TypeAny:
		return Compare{Op: CmpEq, Field: Field{Path: fp.Path}, Value: Constant{Value: true}}, nil
	}
	return nil, unsupported(e, "member of type %s is not a boolean predicate", fp.Leaf.Type)
}

func (b *builder) call(x expr.CallExpr) (Node, error) {
	switch {
	case x.Receiver == nil && x.Method == expr.FuncContains:
		if len(x.Args) != 2 {
			return nil, unsupported(x, "contains takes a sequence and a field")
		}
		return b.sequenceContains(x, x.Args[0], x.Args[1])

	case x.Receiver == nil:
		return nil, unsupported(x, "function %s is not supported", x.Method)

	case x.Method == expr.MethodIn || x.Method == expr.MethodNotIn:
		return b.in(x)

	case x.Method == expr.MethodContains:
		if len(x.Args) != 1 {
			return nil, unsupported(x, "Contains takes exactly one argument")
		}
		if _, ok := constant(x.Receiver); ok {
			return b.sequenceContains(x, x.Receiver, x.Args[0])
		}
		return b.arrayContains(x)

	default:
		return nil, unsupported(x, "method %s is not supported", x.Method)
	}
}

// in handles field.In(v1, v2, ...) and field.In(seq)
func (b *builder) in(x expr.CallExpr) (Node, error) {
	if _, ok := findCall(x.Receiver); ok || !rootedAtParam(x.Receiver) {
		return nil, unsupported(x.Receiver, "%s must be called on a document field", x.Method)
	}

	var values []any
	if len(x.Args) == 1 {
		if v, ok := constant(x.Args[0]); ok {
			if seq, ok := bsonval.Seq(v); ok {
				values = []any(seq)
			}
		}
	}
	if values == nil {
		values = make([]any, 0, len(x.Args))
		for _, a := range x.Args {
			v, ok := constant(a)
			if !ok {
				return nil, unsupported(a, "%s values must be constants", x.Method)
			}
			values = append(values, v)
		}
	}

	f, err := b.resolve(x.Receiver)
	if err != nil {
		return nil, err
	}
	return Membership{Field: f, Values: values, Negated: x.Method == expr.MethodNotIn}, nil
}

// sequenceContains handles seq.Contains(field) and contains(seq, field)
func (b *builder) sequenceContains(x expr.CallExpr, seqExpr, fieldExpr expr.Expr) (Node, error) {
	v, ok := constant(seqExpr)
	if !ok {
		return nil, unsupported(seqExpr, "Contains needs a constant sequence")
	}
	seq, ok := bsonval.Seq(v)
	if !ok {
		return nil, unsupported(seqExpr, "Contains needs a sequence, got %T", v)
	}
	if _, isCall := findCall(fieldExpr); isCall || !rootedAtParam(fieldExpr) {
		return nil, unsupported(x, "Contains argument must be a document field")
	}

	f, err := b.resolve(fieldExpr)
	if err != nil {
		return nil, err
	}
	return Membership{Field: f, Values: []any(seq), Negated: false}, nil
}

// arrayContains handles arrayField.Contains(c) as element equality
func (b *builder) arrayContains(x expr.CallExpr) (Node, error) {
	if _, ok := findCall(x.Receiver); ok || !rootedAtParam(x.Receiver) {
		return nil, unsupported(x, "method Contains is not supported on %s", x.Receiver)
	}
	v, ok := constant(x.Args[0])
	if !ok {
		return nil, unsupported(x.Args[0], "Contains argument must be a constant")
	}

	fp, err := b.resolver.Resolve(x.Receiver)
	if err != nil {
		return nil, err
	}
	if !fp.Leaf.IsArray() {
		return nil, unsupported(x, "Contains is only supported on array members, %s is %s", x.Receiver, fp.Leaf.Type)
	}
	return Compare{Op: CmpEq, Field: Field{Path: fp.Path}, Value: Constant{Value: v}}, nil
}

// constant returns the value of a constant or an all-constant list literal
func constant(e expr.Expr) (any, bool) {
	switch x := e.(type) {
	case expr.ConstExpr:
		return x.Value, true
	case expr.ListExpr:
		out := make([]any, 0, len(x.Elems))
		for _, el := range x.Elems {
			v, ok := constant(el)
			if !ok {
				return nil, false
			}
			out = append(out, v)
		}
		return out, true
	}
	return nil, false
}

// rootedAtParam reports whether e is built from member accesses and indexers
// over the document parameter
func rootedAtParam(e expr.Expr) bool {
	for {
		switch x := e.(type) {
		case expr.ParamExpr:
			return true
		case expr.MemberExpr:
			e = x.X
		case expr.IndexExpr:
			e = x.X
		case expr.CallExpr:
			if x.Receiver == nil {
				return false
			}
			e = x.Receiver
		default:
			return false
		}
	}
}

// findCall returns the outermost call in a receiver chain
func findCall(e expr.Expr) (expr.CallExpr, bool) {
	for {
		switch x := e.(type) {
		case expr.CallExpr:
			return x, true
		case expr.MemberExpr:
			e = x.X
		case expr.IndexExpr:
			e = x.X
		default:
			return expr.CallExpr{}, false
		}
	}
}
