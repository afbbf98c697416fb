// Package mapping resolves member-access chains over a document type to the
// dotted field paths the database stores.
//
// Type metadata comes either from reflected struct tags (Reflect, TypeOf) or
// from a declarative Schema. Both produce a Type, so the Resolver does not
// care where the names come from.
package mapping

import (
	"fmt"
	"strings"

	"github.com/nonibytes/docexpr/docexpr/expr"
)

// ResolveError reports a member chain that does not name a mapped field
type ResolveError struct {
	Chain  string // description of the chain
	Member string // offending link, if any
	Reason string
}

func (e *ResolveError) Error() string {
	if e.Member != "" {
		return fmt.Sprintf("cannot resolve %s: member %s %s", e.Chain, e.Member, e.Reason)
	}
	return fmt.Sprintf("cannot resolve %s: %s", e.Chain, e.Reason)
}

// Resolver maps member chains rooted at the document parameter to field paths
type Resolver struct {
	root Type
}

// NewResolver creates a resolver for documents of type root
func NewResolver(root Type) *Resolver {
	return &Resolver{root: root}
}

// Root returns the document type
func (r *Resolver) Root() Type {
	return r.root
}

// Resolve walks chain link by link and returns its serialized path
func (r *Resolver) Resolve(chain expr.Expr) (FieldPath, error) {
	names, err := memberNames(chain)
	if err != nil {
		return FieldPath{}, err
	}
	if len(names) == 0 {
		return FieldPath{}, &ResolveError{Chain: describe(chain), Reason: "the document itself is not a field"}
	}

	cur := r.root
	stored := make([]string, 0, len(names))
	var leaf Member
	for i, name := range names {
		if cur == nil {
			return FieldPath{}, &ResolveError{
				Chain:  describe(chain),
				Member: name,
				Reason: fmt.Sprintf("is accessed on %s, which has no mapped members", strings.Join(names[:i], ".")),
			}
		}
		m, ok := cur.Member(name)
		if !ok {
			return FieldPath{}, &ResolveError{
				Chain:  describe(chain),
				Member: name,
				Reason: fmt.Sprintf("is not a mapped member of %s", cur.Name()),
			}
		}
		stored = append(stored, m.Stored)
		leaf = m
		cur = m.Fields
	}

	return FieldPath{Path: strings.Join(stored, "."), Leaf: leaf}, nil
}

// IsMemberChain reports whether e is the parameter followed by zero or more
// plain member accesses
func IsMemberChain(e expr.Expr) bool {
	_, err := memberNames(e)
	return err == nil
}

// memberNames unwinds x.A.B into [A B]
func memberNames(e expr.Expr) ([]string, error) {
	var names []string
	cur := e
	for {
		switch x := cur.(type) {
		case expr.ParamExpr:
			for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
				names[i], names[j] = names[j], names[i]
			}
			return names, nil
		case expr.MemberExpr:
			names = append(names, x.Name)
			cur = x.X
		case expr.CallExpr:
			return nil, &ResolveError{Chain: describe(e), Member: x.Method + "()", Reason: "is a method call, not a mapped member"}
		case expr.IndexExpr:
			return nil, &ResolveError{Chain: describe(e), Member: describe(x), Reason: "is an indexer, not a mapped member"}
		default:
			return nil, &ResolveError{Chain: describe(e), Reason: fmt.Sprintf("%s is not a member access on the document", describe(cur))}
		}
	}
}

func describe(e expr.Expr) string {
	if e == nil {
		return "<nil>"
	}
	return e.String()
}
