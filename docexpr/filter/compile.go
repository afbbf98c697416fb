// Package filter compiles predicate ASTs into filter documents.
package filter

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nonibytes/docexpr/docexpr/internal/bsonval"
	"github.com/nonibytes/docexpr/docexpr/query"
)

// Reserved filter keys
const (
	KeyOr  = "$or"
	KeyAnd = "$and"
	KeyEq  = "$eq"
	KeyIn  = "$in"
	KeyNin = "$nin"
)

var opKeywords = map[query.CmpOp]string{
	query.CmpEq:  KeyEq,
	query.CmpNe:  "$ne",
	query.CmpLt:  "$lt",
	query.CmpLte: "$lte",
	query.CmpGt:  "$gt",
	query.CmpGte: "$gte",
}

// Keyword returns the operator keyword for op
func Keyword(op query.CmpOp) string {
	return opKeywords[op]
}

// InvariantError reports an AST node the compiler has no rule for. Build
// never produces one; seeing it means builder and compiler disagree.
type InvariantError struct {
	Node query.Node
}

func (e *InvariantError) Error() string {
	if e.Node == nil {
		return "no compilation rule for nil node"
	}
	return fmt.Sprintf("no compilation rule for %T node %s", e.Node, e.Node)
}

// Output is the result of compiling a predicate
type Output struct {
	Filter       bson.D
	ExplainSteps []string
}

// Compiler compiles predicate ASTs to filter documents
type Compiler struct {
	explainSteps []string
}

// Compile compiles n into a filter document
func Compile(n query.Node) (bson.D, error) {
	out, err := CompileExplain(n)
	if err != nil {
		return nil, err
	}
	return out.Filter, nil
}

// CompileExplain compiles n and records the steps taken
func CompileExplain(n query.Node) (*Output, error) {
	c := &Compiler{}
	doc, err := c.compileDoc(n)
	if err != nil {
		return nil, err
	}
	return &Output{Filter: doc, ExplainSteps: c.explainSteps}, nil
}

func (c *Compiler) explain(format string, args ...any) {
	c.explainSteps = append(c.explainSteps, fmt.Sprintf(format, args...))
}

// compileDoc compiles n as one conjunctive level
func (c *Compiler) compileDoc(n query.Node) (bson.D, error) {
	var leaves []query.Node
	flatten(n, query.LogicAnd, &leaves)

	conj := &conjunction{index: make(map[string]int)}
	for _, leaf := range leaves {
		cl, err := c.compileClause(leaf)
		if err != nil {
			return nil, err
		}
		c.merge(conj, cl)
	}
	if len(leaves) > 1 {
		c.explain("AND %d conjuncts into %d keys", len(leaves), len(conj.clauses))
	}
	return conj.render(), nil
}

// flatten collects the operands of a chain of op, left to right
func flatten(n query.Node, op query.LogicalOp, out *[]query.Node) {
	if l, ok := n.(query.Logical); ok && l.Op == op {
		flatten(l.Left, op, out)
		flatten(l.Right, op, out)
		return
	}
	*out = append(*out, n)
}

func (c *Compiler) compileClause(n query.Node) (*clause, error) {
	switch e := n.(type) {
	case query.Compare:
		kw, ok := opKeywords[e.Op]
		if !ok {
			return nil, errors.WithStack(&InvariantError{Node: n})
		}
		value := bsonval.Normalize(e.Value.Value)
		if e.Op == query.CmpEq {
			c.explain("EQ %s", e.Field.Path)
			return &clause{key: e.Field.Path, eq: value, isEq: true}, nil
		}
		c.explain("%s %s", kw, e.Field.Path)
		return &clause{key: e.Field.Path, ops: bson.D{{Key: kw, Value: value}}}, nil

	case query.Membership:
		values := make(bson.A, len(e.Values))
		for i, v := range e.Values {
			values[i] = bsonval.Normalize(v)
		}
		kw := KeyIn
		if e.Negated {
			kw = KeyNin
		}
		c.explain("%s %s (%d values)", kw, e.Field.Path, len(values))
		return &clause{key: e.Field.Path, ops: bson.D{{Key: kw, Value: values}}}, nil

	case query.Logical:
		if e.Op != query.LogicOr {
			// unreachable: compileDoc flattens Ands
			return nil, errors.WithStack(&InvariantError{Node: n})
		}
		var branches []query.Node
		flatten(e, query.LogicOr, &branches)
		arr := make(bson.A, 0, len(branches))
		for _, b := range branches {
			doc, err := c.compileDoc(b)
			if err != nil {
				return nil, err
			}
			arr = append(arr, doc)
		}
		c.explain("OR %d branches", len(arr))
		return &clause{key: KeyOr, or: arr}, nil

	default:
		return nil, errors.WithStack(&InvariantError{Node: n})
	}
}

// clause is the criteria for one key of a conjunctive level
type clause struct {
	key  string
	eq   any
	isEq bool
	ops  bson.D
	or   bson.A
}

func (cl *clause) value() any {
	switch {
	case cl.key == KeyOr:
		return cl.or
	case cl.isEq:
		return cl.eq
	default:
		return cl.ops
	}
}

// operators returns the criteria as an operator mapping
func (cl *clause) operators() bson.D {
	if cl.isEq {
		return bson.D{{Key: KeyEq, Value: cl.eq}}
	}
	return cl.ops
}

// conjunction is one level of a filter document under construction. Keys
// keep first-seen order; constraints that cannot share a key go to $and.
type conjunction struct {
	clauses  []*clause
	index    map[string]int
	overflow bson.A
}

func (c *Compiler) merge(conj *conjunction, cl *clause) {
	i, seen := conj.index[cl.key]
	if !seen {
		conj.index[cl.key] = len(conj.clauses)
		conj.clauses = append(conj.clauses, cl)
		return
	}

	cur := conj.clauses[i]
	if cl.key == KeyOr {
		c.explain("AND overflow %s", KeyOr)
		conj.overflow = append(conj.overflow, bson.D{{Key: KeyOr, Value: cl.or}})
		return
	}
	if cur.isEq && cl.isEq && reflect.DeepEqual(cur.eq, cl.eq) {
		return
	}

	merged := cur.operators()
	var added bson.D
	for _, op := range cl.operators() {
		existing, ok := lookup(merged, op.Key)
		if !ok {
			added = append(added, op)
			continue
		}
		if !reflect.DeepEqual(existing, op.Value) {
			// same operator, different operand: keep both as separate conjuncts
			c.explain("AND overflow %s %s", cl.key, op.Key)
			conj.overflow = append(conj.overflow, bson.D{{Key: cl.key, Value: cl.value()}})
			return
		}
	}

	c.explain("MERGE %s", cl.key)
	ops := make(bson.D, 0, len(merged)+len(added))
	ops = append(ops, merged...)
	ops = append(ops, added...)
	conj.clauses[i] = &clause{key: cl.key, ops: ops}
}

func lookup(d bson.D, key string) (any, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

func (conj *conjunction) render() bson.D {
	doc := make(bson.D, 0, len(conj.clauses)+1)
	for _, cl := range conj.clauses {
		doc = append(doc, bson.E{Key: cl.key, Value: cl.value()})
	}
	if len(conj.overflow) > 0 {
		doc = append(doc, bson.E{Key: KeyAnd, Value: conj.overflow})
	}
	return doc
}
