// Package update compiles field assignments into update documents.
package update

import (
	"fmt"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nonibytes/docexpr/docexpr/internal/bsonval"
)

// ErrEmptyUpdate is returned when there is nothing to update
var ErrEmptyUpdate = errors.New("update has no assignments")

// ErrUnknownModifier is the cause when an assignment carries a modifier
// outside the supported set
var ErrUnknownModifier = errors.New("unknown update modifier")

// Modifier is the kind of change applied to a field
type Modifier int

const (
	ModSet Modifier = iota
	ModUnset
	ModInc
	ModMul
	ModMin
	ModMax
	ModRename
	ModSetOnInsert
	ModPush
	ModAddToSet
	ModPull
	ModPullAll
	ModCurrentDate
)

var keywords = map[Modifier]string{
	ModSet:         "$set",
	ModUnset:       "$unset",
	ModInc:         "$inc",
	ModMul:         "$mul",
	ModMin:         "$min",
	ModMax:         "$max",
	ModRename:      "$rename",
	ModSetOnInsert: "$setOnInsert",
	ModPush:        "$push",
	ModAddToSet:    "$addToSet",
	ModPull:        "$pull",
	ModPullAll:     "$pullAll",
	ModCurrentDate: "$currentDate",
}

// Keyword returns the update operator for m, or "" if m is unknown
func (m Modifier) Keyword() string {
	return keywords[m]
}

func (m Modifier) String() string {
	if kw, ok := keywords[m]; ok {
		return kw
	}
	return fmt.Sprintf("Modifier(%d)", int(m))
}

// Assignment is one resolved field change
type Assignment struct {
	Field string // dotted field path
	Value any
	Kind  Modifier
}

// Compile groups assignments by modifier. Groups appear in first-seen order
// and fields keep their first-seen position within a group; a field assigned
// twice under the same modifier keeps the last value.
func Compile(assignments []Assignment) (bson.D, error) {
	if len(assignments) == 0 {
		return nil, ErrEmptyUpdate
	}

	type group struct {
		fields bson.D
		index  map[string]int
	}
	var order []Modifier
	groups := make(map[Modifier]*group)

	for _, a := range assignments {
		if _, ok := keywords[a.Kind]; !ok {
			return nil, errors.Wrapf(ErrUnknownModifier, "modifier %d for field %s", int(a.Kind), a.Field)
		}
		if a.Field == "" {
			return nil, errors.Errorf("%s assignment has no field", a.Kind)
		}

		g, ok := groups[a.Kind]
		if !ok {
			g = &group{index: make(map[string]int)}
			groups[a.Kind] = g
			order = append(order, a.Kind)
		}

		value := renderValue(a)
		if i, seen := g.index[a.Field]; seen {
			g.fields[i].Value = value
			continue
		}
		g.index[a.Field] = len(g.fields)
		g.fields = append(g.fields, bson.E{Key: a.Field, Value: value})
	}

	doc := make(bson.D, 0, len(order))
	for _, m := range order {
		doc = append(doc, bson.E{Key: m.Keyword(), Value: groups[m].fields})
	}
	return doc, nil
}

func renderValue(a Assignment) any {
	switch a.Kind {
	case ModUnset:
		return ""
	case ModCurrentDate:
		if a.Value == nil {
			return true
		}
	}
	return bsonval.Normalize(a.Value)
}
