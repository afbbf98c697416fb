package mapping

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// TypeCacheSize bounds the number of reflected struct types kept in memory
const TypeCacheSize = 512

type cacheKey struct {
	rt   reflect.Type
	conv NameConvention
}

var typeCache *lru.Cache

func init() {
	c, err := lru.New(TypeCacheSize)
	if err != nil {
		panic(err)
	}
	typeCache = c
}

var (
	timeType     = reflect.TypeOf(time.Time{})
	uuidType     = reflect.TypeOf(uuid.UUID{})
	objectIDType = reflect.TypeOf(bson.ObjectID{})
	binaryType   = reflect.TypeOf(bson.Binary{})
	bsonDType    = reflect.TypeOf(bson.D{})
)

// TypeOf reflects the mapped members of T, which must be a struct or a
// pointer to one
func TypeOf[T any](conv NameConvention) (Type, error) {
	return Reflect(reflect.TypeOf((*T)(nil)).Elem(), conv)
}

// Reflect returns the mapped members of the struct type rt.
//
// Exported fields are mapped under their bson tag name or, without one, under
// conv applied to the Go name. Fields tagged "-" are excluded and embedded
// structs tagged ",inline" are flattened into the parent.
func Reflect(rt reflect.Type, conv NameConvention) (Type, error) {
	for rt != nil && rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt == nil || rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("mapping: %v is not a struct type", rt)
	}
	if conv == "" {
		conv = NameLower
	}
	return reflectStruct(rt, conv)
}

func reflectStruct(rt reflect.Type, conv NameConvention) (*structType, error) {
	key := cacheKey{rt: rt, conv: conv}
	if v, ok := typeCache.Get(key); ok {
		return v.(*structType), nil
	}

	st := &structType{name: rt.String(), members: make(map[string]Member)}
	if err := st.collect(rt, conv); err != nil {
		return nil, err
	}
	typeCache.Add(key, st)
	return st, nil
}

type structType struct {
	name    string
	members map[string]Member
}

func (s *structType) Name() string {
	return s.name
}

func (s *structType) Member(name string) (Member, bool) {
	m, ok := s.members[name]
	return m, ok
}

func (s *structType) collect(rt reflect.Type, conv NameConvention) error {
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		tag := sf.Tag.Get("bson")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if hasOption(opts, "inline") {
			ft := sf.Type
			for ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() != reflect.Struct {
				// inline maps hold arbitrary keys; nothing to declare
				continue
			}
			if err := s.collect(ft, conv); err != nil {
				return err
			}
			continue
		}

		if name == "" {
			name = conv.Apply(sf.Name)
		}
		if _, dup := s.members[sf.Name]; dup {
			return fmt.Errorf("mapping: %s declares member %s twice", s.name, sf.Name)
		}
		s.members[sf.Name] = memberOf(sf.Name, name, sf.Type, conv)
	}
	return nil
}

func hasOption(opts, want string) bool {
	for _, o := range strings.Split(opts, ",") {
		if o == want {
			return true
		}
	}
	return false
}

func memberOf(goName, stored string, ft reflect.Type, conv NameConvention) Member {
	m := Member{Name: goName, Stored: stored}
	m.Type, m.Fields = classify(ft, conv)
	if m.Type == TypeArray {
		elem := ft
		for elem.Kind() == reflect.Pointer {
			elem = elem.Elem()
		}
		m.Elem, m.Fields = classify(elem.Elem(), conv)
	}
	return m
}

// classify maps a Go type to its stored type; nested structs are described
// lazily so recursive types terminate
func classify(ft reflect.Type, conv NameConvention) (FieldType, Type) {
	for ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}

	switch ft {
	case timeType:
		return TypeDate, nil
	case uuidType:
		return TypeUUID, nil
	case objectIDType:
		return TypeObjectID, nil
	case binaryType:
		return TypeBinary, nil
	case bsonDType:
		return TypeObject, nil
	}

	switch ft.Kind() {
	case reflect.String:
		return TypeString, nil
	case reflect.Bool:
		return TypeBool, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return TypeNumber, nil
	case reflect.Slice, reflect.Array:
		if ft.Elem().Kind() == reflect.Uint8 {
			return TypeBinary, nil
		}
		return TypeArray, nil
	case reflect.Struct:
		return TypeObject, lazyType{rt: ft, conv: conv}
	case reflect.Map:
		return TypeObject, nil
	default:
		return TypeAny, nil
	}
}

type lazyType struct {
	rt   reflect.Type
	conv NameConvention
}

func (l lazyType) Name() string {
	return l.rt.String()
}

func (l lazyType) Member(name string) (Member, bool) {
	st, err := reflectStruct(l.rt, l.conv)
	if err != nil {
		return Member{}, false
	}
	return st.Member(name)
}
