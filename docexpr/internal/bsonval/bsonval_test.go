package bsonval

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestNormalizeUUID(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	got := Normalize(id)
	bin, ok := got.(bson.Binary)
	require.True(t, ok, "expected bson.Binary, got %T", got)
	assert.Equal(t, UUIDSubtype, bin.Subtype)
	assert.Equal(t, id[:], bin.Data)

	assert.Equal(t, got, Normalize(&id))
}

func TestNormalizeSequences(t *testing.T) {
	assert.Equal(t, bson.A{"a", "b"}, Normalize([]string{"a", "b"}))
	assert.Equal(t, bson.A{1, 2, 3}, Normalize([3]int{1, 2, 3}))
	assert.Equal(t, []byte("raw"), Normalize([]byte("raw")))

	id := uuid.New()
	assert.Equal(t, bson.A{UUID(id)}, Normalize([]uuid.UUID{id}))
}

func TestNormalizePassThrough(t *testing.T) {
	n := 7
	assert.Equal(t, 7, Normalize(&n))
	assert.Nil(t, Normalize((*int)(nil)))
	assert.Equal(t, "s", Normalize("s"))
	assert.Equal(t, 1.5, Normalize(1.5))
}

func TestSeq(t *testing.T) {
	seq, ok := Seq([]any{"x", int64(2)})
	require.True(t, ok)
	assert.Equal(t, bson.A{"x", int64(2)}, seq)

	for _, v := range []any{"abc", []byte("abc"), uuid.New(), 3, nil} {
		_, ok := Seq(v)
		assert.False(t, ok, "%T should not be a sequence", v)
	}
}
