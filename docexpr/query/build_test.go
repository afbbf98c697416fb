package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonibytes/docexpr/docexpr/expr"
	"github.com/nonibytes/docexpr/docexpr/mapping"
)

type address struct {
	City string `bson:"city"`
}

type task struct {
	Name     string   `bson:"name"`
	Summary  string   `bson:"summary"`
	Age      int      `bson:"age"`
	Done     bool     `bson:"done"`
	Tags     []string `bson:"tags"`
	Address  address  `bson:"addr"`
	Priority float64
}

func newResolver(t *testing.T) *mapping.Resolver {
	t.Helper()
	typ, err := mapping.TypeOf[task](mapping.NameAsIs)
	require.NoError(t, err)
	return mapping.NewResolver(typ)
}

func build(t *testing.T, e expr.Expr) Node {
	t.Helper()
	n, err := Build(e, newResolver(t))
	require.NoError(t, err, "build %s", e)
	return n
}

func name() expr.Expr { return expr.Field("Name") }
func age() expr.Expr  { return expr.Field("Age") }

func TestBuildComparisons(t *testing.T) {
	tests := []struct {
		e    expr.Expr
		want Node
	}{
		{expr.Eq(name(), "U1"), Compare{Op: CmpEq, Field: Field{Path: "name"}, Value: Constant{Value: "U1"}}},
		{expr.Ne(name(), "U1"), Compare{Op: CmpNe, Field: Field{Path: "name"}, Value: Constant{Value: "U1"}}},
		{expr.Lt(age(), 3), Compare{Op: CmpLt, Field: Field{Path: "age"}, Value: Constant{Value: 3}}},
		{expr.Le(age(), 3), Compare{Op: CmpLte, Field: Field{Path: "age"}, Value: Constant{Value: 3}}},
		{expr.Gt(age(), 3), Compare{Op: CmpGt, Field: Field{Path: "age"}, Value: Constant{Value: 3}}},
		{expr.Ge(age(), 3), Compare{Op: CmpGte, Field: Field{Path: "age"}, Value: Constant{Value: 3}}},
		{expr.Eq(expr.Field("Address", "City"), "Oslo"), Compare{Op: CmpEq, Field: Field{Path: "addr.city"}, Value: Constant{Value: "Oslo"}}},
		{expr.Eq(expr.Field("Priority"), 1.5), Compare{Op: CmpEq, Field: Field{Path: "Priority"}, Value: Constant{Value: 1.5}}},
		{expr.Eq(name(), nil), Compare{Op: CmpEq, Field: Field{Path: "name"}, Value: Constant{Value: nil}}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, build(t, tt.e), "build %s", tt.e)
	}
}

func TestBuildConstantOnLeftFlips(t *testing.T) {
	tests := []struct {
		flipped expr.Expr
		natural expr.Expr
	}{
		{expr.Eq("U1", name()), expr.Eq(name(), "U1")},
		{expr.Ne("U1", name()), expr.Ne(name(), "U1")},
		{expr.Lt(3, age()), expr.Gt(age(), 3)},
		{expr.Le(3, age()), expr.Ge(age(), 3)},
		{expr.Gt(3, age()), expr.Lt(age(), 3)},
		{expr.Ge(3, age()), expr.Le(age(), 3)},
	}

	for _, tt := range tests {
		assert.Equal(t, build(t, tt.natural), build(t, tt.flipped), "build %s", tt.flipped)
	}
}

func TestBuildLogical(t *testing.T) {
	e := expr.Or(expr.And(expr.Eq(name(), "U1"), expr.Gt(age(), 3)), expr.Field("Done"))
	want := Logical{
		Op: LogicOr,
		Left: Logical{
			Op:    LogicAnd,
			Left:  Compare{Op: CmpEq, Field: Field{Path: "name"}, Value: Constant{Value: "U1"}},
			Right: Compare{Op: CmpGt, Field: Field{Path: "age"}, Value: Constant{Value: 3}},
		},
		Right: Compare{Op: CmpEq, Field: Field{Path: "done"}, Value: Constant{Value: true}},
	}
	assert.Equal(t, want, build(t, e))
}

func TestBuildMembership(t *testing.T) {
	want := Membership{Field: Field{Path: "name"}, Values: []any{"U1", "U2"}}

	tests := []expr.Expr{
		expr.In(name(), "U1", "U2"),
		expr.In(name(), []string{"U1", "U2"}),
		expr.Contains([]string{"U1", "U2"}, name()),
		expr.Call(nil, expr.FuncContains, []string{"U1", "U2"}, name()),
		expr.Call(name(), expr.MethodIn, expr.ListExpr{Elems: []expr.Expr{expr.Const("U1"), expr.Const("U2")}}),
	}
	for _, e := range tests {
		assert.Equal(t, want, build(t, e), "build %s", e)
	}

	negated := build(t, expr.NotIn(name(), "U1", "U2"))
	assert.Equal(t, Membership{Field: Field{Path: "name"}, Values: []any{"U1", "U2"}, Negated: true}, negated)

	empty := build(t, expr.In(name()))
	assert.Equal(t, Membership{Field: Field{Path: "name"}, Values: []any{}}, empty)
}

func TestBuildArrayContains(t *testing.T) {
	n := build(t, expr.Call(expr.Field("Tags"), expr.MethodContains, "urgent"))
	assert.Equal(t, Compare{Op: CmpEq, Field: Field{Path: "tags"}, Value: Constant{Value: "urgent"}}, n)
}

func TestBuildNegationPushDown(t *testing.T) {
	tests := []struct {
		e    expr.Expr
		want Node
	}{
		{expr.Not(expr.Eq(name(), "U1")), Compare{Op: CmpNe, Field: Field{Path: "name"}, Value: Constant{Value: "U1"}}},
		{expr.Not(expr.Ne(name(), "U1")), Compare{Op: CmpEq, Field: Field{Path: "name"}, Value: Constant{Value: "U1"}}},
		{expr.Not(expr.Lt(age(), 3)), Compare{Op: CmpGte, Field: Field{Path: "age"}, Value: Constant{Value: 3}}},
		{expr.Not(expr.Le(age(), 3)), Compare{Op: CmpGt, Field: Field{Path: "age"}, Value: Constant{Value: 3}}},
		{expr.Not(expr.Gt(age(), 3)), Compare{Op: CmpLte, Field: Field{Path: "age"}, Value: Constant{Value: 3}}},
		{expr.Not(expr.Ge(age(), 3)), Compare{Op: CmpLt, Field: Field{Path: "age"}, Value: Constant{Value: 3}}},
		{expr.Not(expr.Not(expr.Eq(name(), "U1"))), Compare{Op: CmpEq, Field: Field{Path: "name"}, Value: Constant{Value: "U1"}}},
		{expr.Not(expr.In(name(), "U1")), Membership{Field: Field{Path: "name"}, Values: []any{"U1"}, Negated: true}},
		{expr.Not(expr.Field("Done")), Compare{Op: CmpNe, Field: Field{Path: "done"}, Value: Constant{Value: true}}},
		{
			expr.Not(expr.And(expr.Eq(name(), "U1"), expr.Or(expr.Lt(age(), 3), expr.NotIn(name(), "U2")))),
			Logical{
				Op:   LogicOr,
				Left: Compare{Op: CmpNe, Field: Field{Path: "name"}, Value: Constant{Value: "U1"}},
				Right: Logical{
					Op:    LogicAnd,
					Left:  Compare{Op: CmpGte, Field: Field{Path: "age"}, Value: Constant{Value: 3}},
					Right: Membership{Field: Field{Path: "name"}, Values: []any{"U2"}},
				},
			},
		},
	}

	for _, tt := range tests {
		got := build(t, tt.e)
		assert.Equal(t, tt.want, got, "build %s", tt.e)
		assert.False(t, containsNot(got), "Not left in %s", got)
	}
}

func containsNot(n Node) bool {
	switch x := n.(type) {
	case Not:
		return true
	case Logical:
		return containsNot(x.Left) || containsNot(x.Right)
	}
	return false
}

func TestBuildUnsupported(t *testing.T) {
	tests := []struct {
		name    string
		e       expr.Expr
		subExpr string
	}{
		{"arbitrary method", expr.Call(expr.Call(name(), "GetEnumerator"), "Equals", "U1"), `x.Name.GetEnumerator().Equals("U1")`},
		{"method in comparand", expr.Eq(expr.Call(name(), "ToLower"), "u1"), "x.Name.ToLower()"},
		{"arithmetic comparand", expr.Gt(expr.Binary(expr.OpAdd, age(), 1), 3), "x.Age + 1"},
		{"arithmetic predicate", expr.Binary(expr.OpAdd, age(), 1), "x.Age + 1"},
		{"field vs field", expr.Eq(name(), expr.Field("Summary")), `x.Name == x.Summary`},
		{"constant vs constant", expr.Eq(1, 1), "1 == 1"},
		{"constant predicate", expr.Const(true), "true"},
		{"nested lambda", expr.Lambda(expr.Eq(name(), "U1"), "y"), `func(y) { return x.Name == "U1" }`},
		{"negation operator", expr.Unary(expr.OpNeg, age()), "-x.Age"},
		{"non-boolean member", name(), "x.Name"},
		{"string contains", expr.Call(name(), expr.MethodContains, "U"), `x.Name.Contains("U")`},
		{"in with field value", expr.Call(name(), expr.MethodIn, expr.Field("Summary")), "x.Summary"},
		{"in on constant", expr.In(expr.Const("a"), "a"), `"a"`},
		{"contains non-sequence", expr.Contains("abc", name()), `"abc"`},
		{"unknown function", expr.Call(nil, "startsWith", name(), "U"), `startsWith(x.Name, "U")`},
		{"index predicate", expr.Index(expr.Field("Tags"), 0), "x.Tags[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.e, newResolver(t))
			require.Error(t, err)
			var ue *UnsupportedError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.subExpr, ue.Expr)
		})
	}
}

func TestBuildUnresolvable(t *testing.T) {
	tests := []expr.Expr{
		expr.Eq(expr.Field("Missing"), 1),
		expr.Eq(expr.Index(expr.Field("Tags"), 0), "a"),
		expr.In(expr.Field("Address", "Street"), "a"),
		expr.Field("Unknown"),
	}

	for _, e := range tests {
		_, err := Build(e, newResolver(t))
		var re *mapping.ResolveError
		assert.ErrorAs(t, err, &re, "build %s", e)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	e := expr.And(expr.In(name(), "U1", "U2"), expr.Not(expr.Or(expr.Lt(age(), 3), expr.Field("Done"))))
	assert.Equal(t, build(t, e), build(t, e))
}
