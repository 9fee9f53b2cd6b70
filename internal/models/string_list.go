package models

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// StringList decodes list-valued product fields (categories, image urls,
// colors) from either a BSON array or a legacy single string. Writes always
// produce an array.
type StringList []string

func (s *StringList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null:
		*s = nil
		return nil
	case bsontype.Array:
		return s.decodeArray(t, data)
	case bsontype.String:
		return s.decodeLegacyString(t, data)
	default:
		return fmt.Errorf("cannot decode %s into StringList", t)
	}
}

func (s *StringList) decodeArray(t bsontype.Type, data []byte) error {
	var values []string
	if err := bson.UnmarshalValue(t, data, &values); err != nil {
		return err
	}
	*s = values
	return nil
}

// decodeLegacyString lifts a single stored string into a one-element list.
// A blank string becomes an empty list rather than a list holding "".
func (s *StringList) decodeLegacyString(t bsontype.Type, data []byte) error {
	var value string
	if err := bson.UnmarshalValue(t, data, &value); err != nil {
		return err
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		*s = []string{}
		return nil
	}
	*s = []string{trimmed}
	return nil
}

func (s StringList) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue([]string(s))
}
