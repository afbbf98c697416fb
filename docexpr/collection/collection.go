// Package collection is the remove/update call surface over a document
// type. It compiles predicates and updates with a docexpr.Translator and
// hands the documents, with cardinality and durability settings alongside,
// to an Executor.
package collection

import (
	"context"
	"strconv"

	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"
	"go.uber.org/zap"

	"github.com/nonibytes/docexpr/docexpr"
	"github.com/nonibytes/docexpr/docexpr/expr"
	"github.com/nonibytes/docexpr/docexpr/update"
)

// RemoveFlags control Remove
type RemoveFlags int

const (
	RemoveNone   RemoveFlags = 0
	RemoveSingle RemoveFlags = 1 // remove only the first match
)

// UpdateFlags control Update
type UpdateFlags int

const (
	UpdateNone   UpdateFlags = 0
	UpdateUpsert UpdateFlags = 1 << 0 // insert when nothing matches
	UpdateMulti  UpdateFlags = 1 << 1 // update every match
)

type settings struct {
	remove RemoveFlags
	update UpdateFlags
	wc     *writeconcern.WriteConcern
}

// Option adjusts a single Remove or Update call
type Option func(*settings)

// WithRemoveFlags sets the flags of a Remove
func WithRemoveFlags(f RemoveFlags) Option {
	return func(s *settings) { s.remove = f }
}

// WithUpdateFlags sets the flags of an Update
func WithUpdateFlags(f UpdateFlags) Option {
	return func(s *settings) { s.update = f }
}

// WithWriteConcern sets the write concern of the call
func WithWriteConcern(wc *writeconcern.WriteConcern) Option {
	return func(s *settings) { s.wc = wc }
}

// ParseWriteConcern parses "majority" or a node count. Empty means the
// collection default and yields nil.
func ParseWriteConcern(s string) (*writeconcern.WriteConcern, error) {
	switch s {
	case "":
		return nil, nil
	case "majority":
		return writeconcern.Majority(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, docexpr.NewError(docexpr.ErrConfig, "write concern must be majority or a node count, got "+s)
	}
	return &writeconcern.WriteConcern{W: n}, nil
}

func apply(opts []Option) settings {
	var s settings
	for _, o := range opts {
		o(&s)
	}
	return s
}

// Collection removes and updates documents of type T by predicate
type Collection[T any] struct {
	tr   *docexpr.Translator
	exec Executor
}

// New creates a collection for T backed by exec
func New[T any](exec Executor, opts docexpr.Options) (*Collection[T], error) {
	tr, err := docexpr.For[T](opts)
	if err != nil {
		return nil, err
	}
	return &Collection[T]{tr: tr, exec: exec}, nil
}

// NewWithTranslator creates a collection compiling with tr, for callers
// whose document metadata comes from a schema rather than T
func NewWithTranslator[T any](tr *docexpr.Translator, exec Executor) *Collection[T] {
	return &Collection[T]{tr: tr, exec: exec}
}

// Translator returns the translator used to compile documents
func (c *Collection[T]) Translator() *docexpr.Translator {
	return c.tr
}

// Remove deletes the documents matching pred, all of them unless
// RemoveSingle is set
func (c *Collection[T]) Remove(ctx context.Context, pred expr.Expr, opts ...Option) (WriteResult, error) {
	s := apply(opts)

	if err := docexpr.CheckDepth(pred, c.tr.Options().MaxDepth); err != nil {
		return WriteResult{}, err
	}
	filter, err := c.tr.CompileFilter(pred)
	if err != nil {
		return WriteResult{}, err
	}

	wo := WriteOptions{Multi: s.remove&RemoveSingle == 0, WriteConcern: s.wc}
	c.tr.Trace(docexpr.TraceDeletes, "remove",
		docexpr.DocField("filter", filter),
		zap.Bool("multi", wo.Multi),
	)

	res, err := c.exec.Delete(ctx, filter, wo)
	if err != nil {
		return WriteResult{}, docexpr.ExecutionError("remove", err)
	}
	return res, nil
}

// Update applies b to the documents matching pred, the first one unless
// UpdateMulti is set
func (c *Collection[T]) Update(ctx context.Context, pred expr.Expr, b *update.Builder, opts ...Option) (WriteResult, error) {
	s := apply(opts)

	if err := docexpr.CheckDepth(pred, c.tr.Options().MaxDepth); err != nil {
		return WriteResult{}, err
	}
	filter, err := c.tr.CompileFilter(pred)
	if err != nil {
		return WriteResult{}, err
	}
	doc, err := c.tr.CompileUpdate(b)
	if err != nil {
		return WriteResult{}, err
	}

	wo := WriteOptions{
		Multi:        s.update&UpdateMulti != 0,
		Upsert:       s.update&UpdateUpsert != 0,
		WriteConcern: s.wc,
	}
	c.tr.Trace(docexpr.TraceUpdates, "update",
		docexpr.DocField("filter", filter),
		docexpr.DocField("update", doc),
		zap.Bool("multi", wo.Multi),
		zap.Bool("upsert", wo.Upsert),
	)

	res, err := c.exec.Update(ctx, filter, doc, wo)
	if err != nil {
		return WriteResult{}, docexpr.ExecutionError("update", err)
	}
	return res, nil
}
