package mapping

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSchema is the cause of every schema validation failure
var ErrInvalidSchema = errors.New("invalid schema")

// FieldSpec declares one member of a schema
type FieldSpec struct {
	Name   string               `json:"name,omitempty" yaml:"name,omitempty"` // stored name override
	Type   FieldType            `json:"type" yaml:"type"`
	Elem   FieldType            `json:"elem,omitempty" yaml:"elem,omitempty"`
	Fields map[string]FieldSpec `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Schema declares the mapped members of a collection's documents
type Schema struct {
	Collection string               `json:"collection,omitempty" yaml:"collection,omitempty"`
	Naming     NameConvention       `json:"naming,omitempty" yaml:"naming,omitempty"`
	Fields     map[string]FieldSpec `json:"fields" yaml:"fields"`
}

var validFieldNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks if the schema is valid
func (s Schema) Validate() error {
	if len(s.Fields) == 0 {
		return errors.Wrap(ErrInvalidSchema, "schema must have at least one field")
	}
	if _, err := ParseNameConvention(string(s.Naming)); err != nil {
		return errors.Wrap(ErrInvalidSchema, err.Error())
	}
	return validateFields("", s.Fields)
}

func validateFields(prefix string, fields map[string]FieldSpec) error {
	for _, name := range sortedNames(fields) {
		spec := fields[name]
		path := prefix + name

		if !validFieldNameRe.MatchString(name) {
			return errors.Wrapf(ErrInvalidSchema, "invalid field name: %s (must match ^[A-Za-z_][A-Za-z0-9_]*$)", path)
		}
		if spec.Name != "" && (strings.ContainsAny(spec.Name, ".\x00") || strings.HasPrefix(spec.Name, "$")) {
			return errors.Wrapf(ErrInvalidSchema, "field '%s': stored name %q must not contain '.' or start with '$'", path, spec.Name)
		}
		if !spec.Type.valid() {
			return errors.Wrapf(ErrInvalidSchema, "unknown field type '%s' for field '%s'", spec.Type, path)
		}

		switch spec.Type {
		case TypeArray:
			if spec.Elem != "" && !spec.Elem.valid() {
				return errors.Wrapf(ErrInvalidSchema, "unknown element type '%s' for field '%s'", spec.Elem, path)
			}
			if len(spec.Fields) > 0 && spec.Elem != "" && spec.Elem != TypeObject {
				return errors.Wrapf(ErrInvalidSchema, "field '%s': nested fields require element type object", path)
			}
		case TypeObject:
			if spec.Elem != "" {
				return errors.Wrapf(ErrInvalidSchema, "field '%s': elem can only be specified for arrays", path)
			}
		default:
			if spec.Elem != "" {
				return errors.Wrapf(ErrInvalidSchema, "field '%s': elem can only be specified for arrays", path)
			}
			if len(spec.Fields) > 0 {
				return errors.Wrapf(ErrInvalidSchema, "field '%s': nested fields can only be specified for objects and arrays", path)
			}
		}

		if err := validateFields(path+".", spec.Fields); err != nil {
			return err
		}
	}
	return nil
}

func sortedNames(fields map[string]FieldSpec) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToJSON serializes the schema to JSON
func (s Schema) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

// SchemaFromJSON deserializes and validates a schema from JSON
func SchemaFromJSON(b []byte) (Schema, error) {
	var s Schema
	if err := json.Unmarshal(b, &s); err != nil {
		return Schema{}, errors.Wrap(err, "invalid schema JSON")
	}
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// SchemaFromYAML deserializes and validates a schema from YAML
func SchemaFromYAML(b []byte) (Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Schema{}, errors.Wrap(err, "invalid schema YAML")
	}
	if err := s.Validate(); err != nil {
		return Schema{}, err
	}
	return s, nil
}

// LoadSchema reads a schema file; .yaml and .yml are YAML, anything else JSON
func LoadSchema(path string) (Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, errors.Wrapf(err, "read schema %s", path)
	}

	var s Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		s, err = SchemaFromYAML(b)
	default:
		s, err = SchemaFromJSON(b)
	}
	if err != nil {
		return Schema{}, errors.WithMessage(err, path)
	}
	return s, nil
}

// Type returns the schema as document type metadata. Members without a stored
// name use the schema's naming convention.
func (s Schema) Type() Type {
	conv, _ := ParseNameConvention(string(s.Naming))
	name := s.Collection
	if name == "" {
		name = "document"
	}
	return schemaType{name: name, fields: s.Fields, conv: conv}
}

// WithNaming returns a copy of s using conv for members without stored names
func (s Schema) WithNaming(conv NameConvention) Schema {
	s.Naming = conv
	return s
}

type schemaType struct {
	name   string
	fields map[string]FieldSpec
	conv   NameConvention
}

func (t schemaType) Name() string {
	return t.name
}

func (t schemaType) Member(name string) (Member, bool) {
	spec, ok := t.fields[name]
	if !ok {
		return Member{}, false
	}

	m := Member{Name: name, Stored: spec.Name, Type: spec.Type, Elem: spec.Elem}
	if m.Stored == "" {
		m.Stored = t.conv.Apply(name)
	}
	if m.Type == TypeArray && m.Elem == "" && len(spec.Fields) > 0 {
		m.Elem = TypeObject
	}
	if len(spec.Fields) > 0 {
		m.Fields = schemaType{name: t.name + "." + name, fields: spec.Fields, conv: t.conv}
	}
	return m, true
}
