package docexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nonibytes/docexpr/docexpr/expr"
	"github.com/nonibytes/docexpr/docexpr/update"
)

func observed(t *testing.T, level TraceLevel) (*Translator, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	tr, err := For[Task](Options{Logger: zap.New(core), Trace: level})
	require.NoError(t, err)
	return tr, logs
}

func TestTraceQueries(t *testing.T) {
	tr, logs := observed(t, TraceQueries)

	_, err := tr.CompileFilter(expr.Eq(expr.Field("Name"), "U1"))
	require.NoError(t, err)
	_, err = tr.CompileUpdate(update.Set(expr.Field("Name"), "U2"))
	require.NoError(t, err)

	entries := logs.FilterMessage("compiled filter").All()
	require.Len(t, entries, 1)
	assert.Equal(t, `{"name":"U1"}`, entries[0].ContextMap()["filter"])
	assert.Equal(t, "docexpr.Task", entries[0].ContextMap()["type"])
	assert.Empty(t, logs.FilterMessage("compiled update").All())
}

func TestTraceUpdates(t *testing.T) {
	tr, logs := observed(t, TraceUpdates)

	_, err := tr.CompileUpdate(update.Set(expr.Field("Name"), "U2"))
	require.NoError(t, err)

	entries := logs.FilterMessage("compiled update").All()
	require.Len(t, entries, 1)
	assert.Equal(t, `{"$set":{"name":"U2"}}`, entries[0].ContextMap()["update"])
}

func TestTraceNone(t *testing.T) {
	tr, logs := observed(t, TraceNone)

	_, err := tr.CompileFilter(expr.Eq(expr.Field("Name"), "U1"))
	require.NoError(t, err)
	assert.Zero(t, logs.Len())

	_, err = tr.CompileFilter(expr.Eq(expr.Field("Missing"), "U1"))
	require.Error(t, err)
	failures := logs.FilterMessage("filter compilation failed").All()
	require.Len(t, failures, 1)
	assert.Equal(t, string(ErrUnresolvableField), failures[0].ContextMap()["kind"])
}

func TestParseTraceLevel(t *testing.T) {
	l, err := ParseTraceLevel([]string{"queries", " Deletes ", ""})
	require.NoError(t, err)
	assert.True(t, l.Has(TraceQueries))
	assert.True(t, l.Has(TraceDeletes))
	assert.False(t, l.Has(TraceUpdates))
	assert.False(t, l.Has(TraceNone))

	l, err = ParseTraceLevel([]string{"all"})
	require.NoError(t, err)
	assert.Equal(t, TraceAll, l)

	_, err = ParseTraceLevel([]string{"inserts"})
	assert.True(t, IsKind(err, ErrConfig))
}

func TestRenderJSON(t *testing.T) {
	doc := bson.D{{Key: "age", Value: bson.D{{Key: "$gt", Value: int32(3)}}}}

	relaxed, err := RenderJSON(doc, false)
	require.NoError(t, err)
	assert.Equal(t, `{"age":{"$gt":3}}`, relaxed)

	canonical, err := RenderJSON(doc, true)
	require.NoError(t, err)
	assert.Equal(t, `{"age":{"$gt":{"$numberInt":"3"}}}`, canonical)
}
