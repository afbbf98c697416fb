package collection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readconcern"
	"go.mongodb.org/mongo-driver/v2/mongo/writeconcern"
)

func TestMongoExecutorWriteConcernClonesHandle(t *testing.T) {
	// Connect does not dial; no server is needed to build handles
	client, err := mongo.Connect(options.Client().ApplyURI("mongodb://localhost:1"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	coll := client.Database("docexpr_test").Collection("tasks",
		options.Collection().
			SetReadConcern(readconcern.Majority()).
			SetBSONOptions(&options.BSONOptions{OmitZeroStruct: true}))
	exec := NewMongoExecutor(coll)

	assert.Same(t, coll, exec.with(nil))

	cloned := exec.with(writeconcern.Majority())
	require.NotNil(t, cloned)
	assert.NotSame(t, coll, cloned)
	assert.Equal(t, "tasks", cloned.Name())
	assert.Equal(t, "docexpr_test", cloned.Database().Name())
}
