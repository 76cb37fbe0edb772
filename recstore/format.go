package recstore

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatKind identifies the abstract type of a schema field. The keyword
// values match the vocabulary used in configuration files.
type FormatKind string

const (
	FormatString         FormatKind = "str"
	FormatStringIndexed  FormatKind = "strIDX"
	FormatInteger        FormatKind = "int"
	FormatIntegerIndexed FormatKind = "intIDX"
	FormatFloat          FormatKind = "float"
	FormatBool           FormatKind = "bool"
)

// ConvertFunc turns the raw textual form of a value into its typed form.
type ConvertFunc func(string) (any, error)

// Format describes how one FormatKind is realized by a backend: the native
// column/storage type, whether a secondary index is requested (SQL only),
// and the text-to-typed converter used by text-based backends.
type Format struct {
	Native  string
	Indexed bool
	Convert ConvertFunc
}

// FormatMap translates abstract format kinds to a backend's native storage
// types. Each backend package owns its own map.
type FormatMap map[FormatKind]Format

func (m FormatMap) Has(kind FormatKind) bool {
	_, ok := m[kind]
	return ok
}

// ParseKind maps a configuration keyword to a FormatKind.
func ParseKind(s string) (FormatKind, error) {
	switch FormatKind(strings.TrimSpace(s)) {
	case FormatString:
		return FormatString, nil
	case FormatStringIndexed:
		return FormatStringIndexed, nil
	case FormatInteger:
		return FormatInteger, nil
	case FormatIntegerIndexed:
		return FormatIntegerIndexed, nil
	case FormatFloat:
		return FormatFloat, nil
	case FormatBool:
		return FormatBool, nil
	default:
		return "", fmt.Errorf("unknown format kind: %q", s)
	}
}

// TextFormats returns the format map shared by text-based backends. The
// native types are the Go types values decode to; no kind is indexed since
// flat files have no index concept.
func TextFormats() FormatMap {
	return FormatMap{
		FormatString:         {Native: "string", Convert: convertString},
		FormatStringIndexed:  {Native: "string", Convert: convertString},
		FormatInteger:        {Native: "int64", Convert: convertInteger},
		FormatIntegerIndexed: {Native: "int64", Convert: convertInteger},
		FormatFloat:          {Native: "float64", Convert: convertFloat},
		FormatBool:           {Native: "bool", Convert: convertBool},
	}
}

func convertString(s string) (any, error) {
	return s, nil
}

func convertInteger(s string) (any, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("not an integer: %q", s)
	}
	return v, nil
}

func convertFloat(s string) (any, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, fmt.Errorf("not a float: %q", s)
	}
	return v, nil
}

// convertBool parses truthy strings. Accepted spellings mirror what typed
// writers emit plus common config forms.
func convertBool(s string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off", "":
		return false, nil
	default:
		return nil, fmt.Errorf("not a boolean: %q", s)
	}
}
