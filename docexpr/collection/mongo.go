package collection

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"
)

// MongoExecutor runs compiled documents on a mongo-driver collection
type MongoExecutor struct {
	coll *mongo.Collection
}

var _ Executor = (*MongoExecutor)(nil)

// NewMongoExecutor wraps coll
func NewMongoExecutor(coll *mongo.Collection) *MongoExecutor {
	return &MongoExecutor{coll: coll}
}

// with returns the collection handle carrying wc, or the default handle.
// The clone keeps the read concern, registry and BSON options of the wrapped
// handle.
func (m *MongoExecutor) with(wc *writeconcern.WriteConcern) *mongo.Collection {
	if wc == nil {
		return m.coll
	}
	return m.coll.Clone(options.Collection().SetWriteConcern(wc))
}

func (m *MongoExecutor) Delete(ctx context.Context, filter bson.D, opts WriteOptions) (WriteResult, error) {
	coll := m.with(opts.WriteConcern)

	var (
		res *mongo.DeleteResult
		err error
	)
	if opts.Multi {
		res, err = coll.DeleteMany(ctx, filter)
	} else {
		res, err = coll.DeleteOne(ctx, filter)
	}
	if err != nil {
		return WriteResult{}, err
	}
	return WriteResult{Deleted: res.DeletedCount}, nil
}

func (m *MongoExecutor) Update(ctx context.Context, filter, update bson.D, opts WriteOptions) (WriteResult, error) {
	coll := m.with(opts.WriteConcern)

	var (
		res *mongo.UpdateResult
		err error
	)
	if opts.Multi {
		res, err = coll.UpdateMany(ctx, filter, update, options.UpdateMany().SetUpsert(opts.Upsert))
	} else {
		res, err = coll.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(opts.Upsert))
	}
	if err != nil {
		return WriteResult{}, err
	}
	return WriteResult{
		Matched:    res.MatchedCount,
		Modified:   res.ModifiedCount,
		Upserted:   res.UpsertedCount,
		UpsertedID: res.UpsertedID,
	}, nil
}
