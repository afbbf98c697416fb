package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonibytes/docexpr/docexpr/expr"
)

const taskSchemaJSON = `{
  "collection": "tasks",
  "naming": "camel",
  "fields": {
    "ID":      {"name": "_id", "type": "objectId"},
    "Name":    {"type": "string"},
    "Summary": {"type": "string"},
    "Tags":    {"type": "array", "elem": "string"},
    "Address": {"name": "addr", "type": "object", "fields": {
      "City": {"type": "string"}
    }},
    "Items": {"type": "array", "fields": {
      "SKU": {"name": "sku", "type": "string"}
    }}
  }
}`

const taskSchemaYAML = `
collection: tasks
fields:
  Name:
    type: string
  Address:
    name: addr
    type: object
    fields:
      City:
        name: city
        type: string
`

func TestSchemaFromJSON(t *testing.T) {
	s, err := SchemaFromJSON([]byte(taskSchemaJSON))
	require.NoError(t, err)
	assert.Equal(t, "tasks", s.Collection)

	r := NewResolver(s.Type())
	tests := map[string]expr.Expr{
		"_id":       expr.Field("ID"),
		"name":      expr.Field("Name"),
		"addr.city": expr.Field("Address", "City"),
		"items.sku": expr.Field("Items", "SKU"),
	}
	for want, chain := range tests {
		fp, err := r.Resolve(chain)
		require.NoError(t, err)
		assert.Equal(t, want, fp.Path)
	}

	fp, err := r.Resolve(expr.Field("Items"))
	require.NoError(t, err)
	assert.Equal(t, TypeObject, fp.Leaf.Elem)

	_, err = r.Resolve(expr.Field("Address", "Street"))
	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "Street", re.Member)
}

func TestSchemaFromYAML(t *testing.T) {
	s, err := SchemaFromYAML([]byte(taskSchemaYAML))
	require.NoError(t, err)

	fp, err := NewResolver(s.Type()).Resolve(expr.Field("Address", "City"))
	require.NoError(t, err)
	assert.Equal(t, "addr.city", fp.Path)

	fp, err = NewResolver(s.Type()).Resolve(expr.Field("Name"))
	require.NoError(t, err)
	assert.Equal(t, "name", fp.Path)

	fp, err = NewResolver(s.WithNaming(NameAsIs).Type()).Resolve(expr.Field("Name"))
	require.NoError(t, err)
	assert.Equal(t, "Name", fp.Path)
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name   string
		schema Schema
	}{
		{"empty", Schema{}},
		{"bad name", Schema{Fields: map[string]FieldSpec{"1abc": {Type: TypeString}}}},
		{"bad type", Schema{Fields: map[string]FieldSpec{"a": {Type: "text"}}}},
		{"dotted stored name", Schema{Fields: map[string]FieldSpec{"a": {Name: "a.b", Type: TypeString}}}},
		{"operator stored name", Schema{Fields: map[string]FieldSpec{"a": {Name: "$a", Type: TypeString}}}},
		{"elem on scalar", Schema{Fields: map[string]FieldSpec{"a": {Type: TypeString, Elem: TypeString}}}},
		{"fields on scalar", Schema{Fields: map[string]FieldSpec{"a": {Type: TypeNumber, Fields: map[string]FieldSpec{"b": {Type: TypeString}}}}}},
		{"nested bad type", Schema{Fields: map[string]FieldSpec{"a": {Type: TypeObject, Fields: map[string]FieldSpec{"b": {Type: "nope"}}}}}},
		{"bad naming", Schema{Naming: "snake", Fields: map[string]FieldSpec{"a": {Type: TypeString}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSchema))
		})
	}
}

func TestLoadSchema(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "tasks.json")
	yamlPath := filepath.Join(dir, "tasks.yml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(taskSchemaJSON), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte(taskSchemaYAML), 0o644))

	s, err := LoadSchema(jsonPath)
	require.NoError(t, err)
	assert.Len(t, s.Fields, 6)

	s, err = LoadSchema(yamlPath)
	require.NoError(t, err)
	assert.Len(t, s.Fields, 2)

	_, err = LoadSchema(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"fields":{}}`), 0o644))
	_, err = LoadSchema(bad)
	assert.True(t, errors.Is(err, ErrInvalidSchema))
}
