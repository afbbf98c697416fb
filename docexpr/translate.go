// Package docexpr translates typed predicate and update expressions over a
// document type into filter and update documents.
//
// A Translator is bound to one document type and is safe for concurrent use:
//
//	tr, err := docexpr.For[Task](docexpr.DefaultOptions())
//	filter, err := tr.CompileFilter(expr.Eq(expr.Field("Name"), "U1"))
//	upd, err := tr.CompileUpdate(update.Set(expr.Field("Summary"), "Updated summary"))
package docexpr

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/nonibytes/docexpr/docexpr/expr"
	"github.com/nonibytes/docexpr/docexpr/filter"
	"github.com/nonibytes/docexpr/docexpr/mapping"
	"github.com/nonibytes/docexpr/docexpr/query"
	"github.com/nonibytes/docexpr/docexpr/update"
)

// Translator compiles expressions over one document type
type Translator struct {
	typ      mapping.Type
	resolver *mapping.Resolver
	opts     Options
	log      *zap.Logger
}

// New creates a translator for documents described by typ
func New(typ mapping.Type, opts Options) *Translator {
	opts = opts.withDefaults()
	return &Translator{
		typ:      typ,
		resolver: mapping.NewResolver(typ),
		opts:     opts,
		log:      opts.Logger.With(zap.String("type", typ.Name())),
	}
}

// For creates a translator for the struct type T, mapped through its bson tags
func For[T any](opts Options) (*Translator, error) {
	opts = opts.withDefaults()
	typ, err := mapping.TypeOf[T](opts.Naming)
	if err != nil {
		return nil, ConfigError("reflect document type", err)
	}
	return New(typ, opts), nil
}

// Type returns the document type
func (t *Translator) Type() mapping.Type {
	return t.typ
}

// Options returns the effective options
func (t *Translator) Options() Options {
	return t.opts
}

// Resolve returns the field path of a member chain
func (t *Translator) Resolve(chain expr.Expr) (mapping.FieldPath, error) {
	fp, err := t.resolver.Resolve(chain)
	if err != nil {
		return mapping.FieldPath{}, wrapError(err)
	}
	return fp, nil
}

// CompileFilter compiles a predicate into a filter document
func (t *Translator) CompileFilter(predicate expr.Expr) (bson.D, error) {
	out, err := t.compileFilter(predicate)
	if err != nil {
		return nil, err
	}
	return out.Filter, nil
}

// ExplainFilter compiles a predicate and returns the compiler's steps
func (t *Translator) ExplainFilter(predicate expr.Expr) (*filter.Output, error) {
	return t.compileFilter(predicate)
}

func (t *Translator) compileFilter(predicate expr.Expr) (*filter.Output, error) {
	node, err := query.Build(predicate, t.resolver)
	if err != nil {
		return nil, t.fail("filter", predicate, err)
	}

	out, err := filter.CompileExplain(node)
	if err != nil {
		return nil, t.fail("filter", predicate, err)
	}

	t.Trace(TraceQueries, "compiled filter",
		zap.Stringer("predicate", predicate),
		DocField("filter", out.Filter),
		zap.Strings("explain", out.ExplainSteps),
	)
	return out, nil
}

// ParseFilter parses predicate source text and compiles it
func (t *Translator) ParseFilter(src string) (bson.D, error) {
	e, err := t.Parse(src)
	if err != nil {
		return nil, err
	}
	return t.CompileFilter(e)
}

// Parse parses predicate source text and checks its depth
func (t *Translator) Parse(src string) (expr.Expr, error) {
	e, err := expr.Parse(src)
	if err != nil {
		return nil, wrapError(err)
	}
	if err := CheckDepth(e, t.opts.MaxDepth); err != nil {
		return nil, err
	}
	return e, nil
}

// CompileUpdate resolves the builder's selectors and compiles an update
// document
func (t *Translator) CompileUpdate(b *update.Builder) (bson.D, error) {
	return t.CompileAssignments(b.Pending())
}

// CompileAssignments resolves pending assignments and compiles an update
// document
func (t *Translator) CompileAssignments(pending []update.Pending) (bson.D, error) {
	assignments, err := update.Resolve(pending, t.resolver)
	if err != nil {
		return nil, t.fail("update", nil, err)
	}

	doc, err := update.Compile(assignments)
	if err != nil {
		return nil, t.fail("update", nil, err)
	}

	t.Trace(TraceUpdates, "compiled update", DocField("update", doc))
	return doc, nil
}

func (t *Translator) fail(what string, e expr.Expr, err error) error {
	wrapped := wrapError(err)
	fields := []zap.Field{zap.String("kind", string(KindOf(wrapped))), zap.Error(err)}
	if e != nil {
		fields = append(fields, zap.Stringer("expr", e))
	}
	t.log.Debug(what+" compilation failed", fields...)
	return wrapped
}

// CheckDepth rejects expressions nested deeper than max
func CheckDepth(e expr.Expr, max int) error {
	if max <= 0 {
		return nil
	}
	if d := expr.Depth(e); d > max {
		return UnsupportedExpressionError("", fmt.Sprintf("expression nesting depth %d exceeds limit %d", d, max))
	}
	return nil
}

// wrapError maps an internal error into the public taxonomy. The internal
// error stays the cause, so its description is unchanged.
func wrapError(err error) error {
	var (
		resolveErr     *mapping.ResolveError
		unsupportedErr *query.UnsupportedError
		syntaxErr      *expr.SyntaxError
		invariantErr   *filter.InvariantError
		pubErr         *Error
	)

	switch {
	case errors.As(err, &pubErr):
		return err
	case errors.As(err, &resolveErr):
		return &Error{Kind: ErrUnresolvableField, Field: resolveErr.Chain, Expr: resolveErr.Chain, Cause: err}
	case errors.As(err, &unsupportedErr):
		return &Error{Kind: ErrUnsupportedExpression, Expr: unsupportedErr.Expr, Cause: err}
	case errors.As(err, &syntaxErr):
		return &Error{Kind: ErrUnsupportedExpression, Cause: err}
	case errors.Is(err, update.ErrEmptyUpdate):
		return &Error{Kind: ErrEmptyUpdate, Cause: err}
	case errors.Is(err, update.ErrUnknownModifier):
		return &Error{Kind: ErrUnsupportedExpression, Cause: err}
	case errors.As(err, &invariantErr):
		return &Error{Kind: ErrInternalInvariant, Cause: err}
	default:
		return &Error{Kind: ErrInternalInvariant, Cause: err}
	}
}
