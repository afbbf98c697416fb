package collection

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"
)

// WriteOptions travel next to the compiled documents, untouched
type WriteOptions struct {
	Multi        bool // affect every match instead of the first
	Upsert       bool // insert when nothing matches (updates only)
	WriteConcern *writeconcern.WriteConcern
}

// WriteResult reports what a write changed
type WriteResult struct {
	Matched    int64
	Modified   int64
	Deleted    int64
	Upserted   int64
	UpsertedID any
}

// Executor runs compiled documents against the database
type Executor interface {
	Delete(ctx context.Context, filter bson.D, opts WriteOptions) (WriteResult, error)
	Update(ctx context.Context, filter, update bson.D, opts WriteOptions) (WriteResult, error)
}
