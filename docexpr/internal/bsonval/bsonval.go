// Package bsonval converts caller constants into the values placed in
// filter and update documents.
package bsonval

import (
	"reflect"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// UUIDSubtype is the binary subtype for standard UUIDs
const UUIDSubtype byte = 0x04

// Normalize returns the document form of v. UUIDs become binary subtype 4,
// pointers are dereferenced and sequences become bson.A with every element
// normalized. Everything else is returned unchanged for the bson codec.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case uuid.UUID:
		return UUID(x)
	case *uuid.UUID:
		if x == nil {
			return nil
		}
		return UUID(*x)
	case bson.A:
		out := make(bson.A, len(x))
		for i, el := range x {
			out[i] = Normalize(el)
		}
		return out
	case string, []byte, bool, int, int32, int64, float64, bson.D, bson.M, bson.ObjectID, bson.Binary:
		return v
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		return Normalize(rv.Elem().Interface())
	}
	if seq, ok := Seq(v); ok {
		return seq
	}
	return v
}

// UUID encodes u as a standard binary UUID
func UUID(u uuid.UUID) bson.Binary {
	data := make([]byte, len(u))
	copy(data, u[:])
	return bson.Binary{Subtype: UUIDSubtype, Data: data}
}

// Seq reports whether v is a sequence (slice or array, other than []byte and
// uuid.UUID) and returns its normalized elements in order.
func Seq(v any) (bson.A, bool) {
	switch v.(type) {
	case nil, []byte, uuid.UUID, string:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}

	out := make(bson.A, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = Normalize(rv.Index(i).Interface())
	}
	return out, true
}
