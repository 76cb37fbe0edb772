package recstore

import (
	"fmt"
	"strconv"
)

// Record is one stored row: field name to typed value. Values are one of
// string, int64, float64, or bool.
type Record map[string]any

// DecodeRow converts a raw all-string row (as read from a delimited file)
// into a typed Record. Keys absent from the schema are dropped silently;
// a value that fails its kind's converter is an error.
func DecodeRow(raw map[string]string, schema Schema, formats FormatMap) (Record, error) {
	out := make(Record, len(raw))
	for key, val := range raw {
		kind, ok := schema.Kind(key)
		if !ok {
			continue
		}
		fm, ok := formats[kind]
		if !ok || fm.Convert == nil {
			return nil, fmt.Errorf("no converter for format kind %q", kind)
		}
		typed, err := fm.Convert(val)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		out[key] = typed
	}
	return out, nil
}

// NormalizeRecord converts a loosely-typed row (as decoded from JSON or
// scanned from a SQL driver) into a typed Record per the schema. Unknown
// keys are dropped silently; nil values are omitted.
func NormalizeRecord(raw map[string]any, schema Schema) (Record, error) {
	out := make(Record, len(raw))
	for key, val := range raw {
		kind, ok := schema.Kind(key)
		if !ok || val == nil {
			continue
		}
		typed, err := CoerceValue(kind, val)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", key, err)
		}
		out[key] = typed
	}
	return out, nil
}

// CoerceValue maps a driver- or JSON-native value onto the typed form for a
// format kind. JSON decodes all numbers as float64 and SQL drivers differ in
// what they hand back, so each kind accepts the representations seen in
// practice.
func CoerceValue(kind FormatKind, val any) (any, error) {
	switch kind {
	case FormatString, FormatStringIndexed:
		switch v := val.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case bool:
			return strconv.FormatBool(v), nil
		}
	case FormatInteger, FormatIntegerIndexed:
		switch v := val.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		case float64:
			return int64(v), nil
		case []byte:
			return convertInteger(string(v))
		case string:
			return convertInteger(v)
		}
	case FormatFloat:
		switch v := val.(type) {
		case float64:
			return v, nil
		case int64:
			return float64(v), nil
		case int:
			return float64(v), nil
		case []byte:
			return convertFloat(string(v))
		case string:
			return convertFloat(v)
		}
	case FormatBool:
		switch v := val.(type) {
		case bool:
			return v, nil
		case int64:
			return v != 0, nil
		case float64:
			return v != 0, nil
		case []byte:
			return convertBool(string(v))
		case string:
			return convertBool(v)
		}
	default:
		return nil, fmt.Errorf("unknown format kind %q", kind)
	}
	return nil, fmt.Errorf("cannot coerce %T to %s", val, kind)
}

// EncodeValue renders a typed value back to text for delimited-file writes.
func EncodeValue(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
