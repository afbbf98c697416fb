package docexpr

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/nonibytes/docexpr/docexpr/mapping"
)

func TestLoadConfigDefaults(t *testing.T) {
	c, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "lower", c.Naming)
	assert.Equal(t, DefaultMaxDepth, c.MaxDepth)
	assert.Equal(t, DefaultLogLevel, c.Log.Level)
	assert.Equal(t, DefaultLogFormat, c.Log.Format)
	assert.False(t, c.Canonical)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docexpr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
naming: camel
max_depth: 12
trace: [queries, deletes]
schema: tasks.json
log:
  level: debug
  format: json
`), 0o644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "camel", c.Naming)
	assert.Equal(t, 12, c.MaxDepth)
	assert.Equal(t, []string{"queries", "deletes"}, c.Trace)
	assert.Equal(t, "tasks.json", c.Schema)
	assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, c.Log)

	opts, err := c.Options(nil)
	require.NoError(t, err)
	assert.Equal(t, mapping.NameCamel, opts.Naming)
	assert.Equal(t, 12, opts.MaxDepth)
	assert.Equal(t, TraceQueries|TraceDeletes, opts.Trace)
	assert.NotNil(t, opts.Logger)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("DOCEXPR_NAMING", "lower")
	t.Setenv("DOCEXPR_LOG_LEVEL", "warn")
	t.Setenv("DOCEXPR_MONGO_URI", "mongodb://localhost:27017")

	c, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "lower", c.Naming)
	assert.Equal(t, "warn", c.Log.Level)
	assert.Equal(t, "mongodb://localhost:27017", c.Mongo.URI)
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"naming.yaml": "naming: snake\n",
		"depth.yaml":  "max_depth: -1\n",
		"trace.yaml":  "trace: [inserts]\n",
		"level.yaml":  "log:\n  level: loud\n",
		"format.yaml": "log:\n  format: xml\n",
	}
	for name, body := range tests {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err := LoadConfig(path)
		assert.True(t, IsKind(err, ErrConfig), "%s: got %v", name, err)
	}

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.True(t, IsKind(err, ErrConfig))
}

func TestLogConfigBuild(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "warn", Format: "json"}.BuildWithOutput(zapcore.AddSync(&buf))
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown")
	require.NoError(t, logger.Sync())

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = LogConfig{Level: "loud"}.BuildWithOutput(zapcore.AddSync(&buf))
	assert.True(t, IsKind(err, ErrConfig))
}
