package collection

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"

	"github.com/nonibytes/docexpr/docexpr"
	"github.com/nonibytes/docexpr/docexpr/expr"
	"github.com/nonibytes/docexpr/docexpr/update"
)

// newMongoCollection connects to DOCEXPR_MONGO_URI and returns a scratch
// collection dropped on cleanup
func newMongoCollection(t *testing.T) *mongo.Collection {
	t.Helper()
	uri := os.Getenv("DOCEXPR_MONGO_URI")
	if uri == "" {
		t.Skip("DOCEXPR_MONGO_URI not set")
	}

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("mongo not reachable: %v", err)
	}

	coll := client.Database("docexpr_test").Collection("tasks_" + uuid.NewString())
	t.Cleanup(func() {
		ctx := context.Background()
		_ = coll.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return coll
}

func TestMongoRemoveAndUpdate(t *testing.T) {
	coll := newMongoCollection(t)
	ctx := context.Background()

	_, err := coll.InsertMany(ctx, []any{
		Task{ID: bson.NewObjectID(), Name: "U1", Rev: 1},
		Task{ID: bson.NewObjectID(), Name: "U1", Rev: 1},
		Task{ID: bson.NewObjectID(), Name: "U2", Rev: 1, Done: true},
	})
	require.NoError(t, err)

	c, err := New[Task](NewMongoExecutor(coll), docexpr.DefaultOptions())
	require.NoError(t, err)

	res, err := c.Update(ctx, expr.Eq(expr.Field("Name"), "U1"),
		update.Set(expr.Field("Summary"), "Updated summary").Inc(expr.Field("Rev"), 1),
		WithUpdateFlags(UpdateMulti))
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Matched)
	assert.Equal(t, int64(2), res.Modified)

	res, err = c.Update(ctx, expr.Eq(expr.Field("Name"), "U3"),
		update.Set(expr.Field("Rev"), 7), WithUpdateFlags(UpdateUpsert))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Upserted)
	assert.NotNil(t, res.UpsertedID)

	res, err = c.Remove(ctx, expr.Eq(expr.Field("Name"), "U1"),
		WithRemoveFlags(RemoveSingle), WithWriteConcern(writeconcern.Majority()))
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Deleted)

	res, err = c.Remove(ctx, expr.Or(expr.Eq(expr.Field("Done"), true), expr.Ge(expr.Field("Rev"), 2)))
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Deleted)

	n, err := coll.CountDocuments(ctx, bson.D{})
	require.NoError(t, err)
	assert.Zero(t, n)
}
