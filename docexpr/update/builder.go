package update

import (
	"github.com/nonibytes/docexpr/docexpr/expr"
	"github.com/nonibytes/docexpr/docexpr/mapping"
)

// Pending is an assignment whose target is still a member selector
type Pending struct {
	Selector expr.Expr
	Value    any
	Kind     Modifier
	Target   expr.Expr // new name for Rename
}

// FieldResolver maps member selectors to field paths
type FieldResolver interface {
	Resolve(chain expr.Expr) (mapping.FieldPath, error)
}

// Builder records selector-based assignments in call order
type Builder struct {
	pending []Pending
}

// New returns an empty builder
func New() *Builder {
	return &Builder{}
}

// Set starts a builder with sel = v
//
//	update.Set(expr.Field("Summary"), "Updated summary").Inc(expr.Field("Rev"), 1)
func Set(sel expr.Expr, v any) *Builder {
	return New().Set(sel, v)
}

func (b *Builder) add(p Pending) *Builder {
	b.pending = append(b.pending, p)
	return b
}

// Set assigns v to sel
func (b *Builder) Set(sel expr.Expr, v any) *Builder {
	return b.add(Pending{Selector: sel, Value: v, Kind: ModSet})
}

// Unset removes sel
func (b *Builder) Unset(sel expr.Expr) *Builder {
	return b.add(Pending{Selector: sel, Kind: ModUnset})
}

// Inc adds n to sel
func (b *Builder) Inc(sel expr.Expr, n any) *Builder {
	return b.add(Pending{Selector: sel, Value: n, Kind: ModInc})
}

// Mul multiplies sel by n
func (b *Builder) Mul(sel expr.Expr, n any) *Builder {
	return b.add(Pending{Selector: sel, Value: n, Kind: ModMul})
}

// Min sets sel to v if v is smaller
func (b *Builder) Min(sel expr.Expr, v any) *Builder {
	return b.add(Pending{Selector: sel, Value: v, Kind: ModMin})
}

// Max sets sel to v if v is larger
func (b *Builder) Max(sel expr.Expr, v any) *Builder {
	return b.add(Pending{Selector: sel, Value: v, Kind: ModMax})
}

// Rename moves sel to the field named by to
func (b *Builder) Rename(sel, to expr.Expr) *Builder {
	return b.add(Pending{Selector: sel, Kind: ModRename, Target: to})
}

// SetOnInsert assigns v to sel only when an upsert inserts
func (b *Builder) SetOnInsert(sel expr.Expr, v any) *Builder {
	return b.add(Pending{Selector: sel, Value: v, Kind: ModSetOnInsert})
}

// Push appends v to the array sel
func (b *Builder) Push(sel expr.Expr, v any) *Builder {
	return b.add(Pending{Selector: sel, Value: v, Kind: ModPush})
}

// AddToSet appends v to the array sel unless present
func (b *Builder) AddToSet(sel expr.Expr, v any) *Builder {
	return b.add(Pending{Selector: sel, Value: v, Kind: ModAddToSet})
}

// Pull removes elements equal to v from the array sel
func (b *Builder) Pull(sel expr.Expr, v any) *Builder {
	return b.add(Pending{Selector: sel, Value: v, Kind: ModPull})
}

// PullAll removes all of vs from the array sel
func (b *Builder) PullAll(sel expr.Expr, vs any) *Builder {
	return b.add(Pending{Selector: sel, Value: vs, Kind: ModPullAll})
}

// CurrentDate sets sel to the server's current date
func (b *Builder) CurrentDate(sel expr.Expr) *Builder {
	return b.add(Pending{Selector: sel, Kind: ModCurrentDate})
}

// Pending returns the recorded assignments
func (b *Builder) Pending() []Pending {
	if b == nil {
		return nil
	}
	out := make([]Pending, len(b.pending))
	copy(out, b.pending)
	return out
}

// Len returns the number of recorded assignments
func (b *Builder) Len() int {
	if b == nil {
		return 0
	}
	return len(b.pending)
}

// Assignments resolves every selector through r
func (b *Builder) Assignments(r FieldResolver) ([]Assignment, error) {
	return Resolve(b.Pending(), r)
}

// Resolve turns pending assignments into resolved ones, in order
func Resolve(pending []Pending, r FieldResolver) ([]Assignment, error) {
	out := make([]Assignment, 0, len(pending))
	for _, p := range pending {
		fp, err := r.Resolve(p.Selector)
		if err != nil {
			return nil, err
		}
		value := p.Value
		if p.Kind == ModRename {
			to, err := r.Resolve(p.Target)
			if err != nil {
				return nil, err
			}
			value = to.Path
		}
		out = append(out, Assignment{Field: fp.Path, Value: value, Kind: p.Kind})
	}
	return out, nil
}
