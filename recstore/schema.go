package recstore

import (
	"fmt"
	"regexp"
)

// Field is one named, typed column of a Schema.
type Field struct {
	Name string
	Kind FormatKind
}

// Schema is an ordered field-name to format-kind contract. Order is
// significant: the first field is the default sort/order field, and for file
// backends it defines column/key emission order. A Schema is immutable once
// built.
type Schema struct {
	fields []Field
	kinds  map[string]FormatKind
}

// Field names are spliced into SQL statements as identifiers, so they are
// restricted to identifier-safe characters.
var fieldNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NewSchema builds a Schema from ordered fields. Names must be unique,
// non-empty, and identifier-safe.
func NewSchema(fields ...Field) (Schema, error) {
	if len(fields) == 0 {
		return Schema{}, InvalidAttributeError("", "schema must have at least one field")
	}

	kinds := make(map[string]FormatKind, len(fields))
	ordered := make([]Field, 0, len(fields))
	for _, f := range fields {
		if !fieldNameRe.MatchString(f.Name) {
			return Schema{}, InvalidAttributeError("", fmt.Sprintf("invalid field name: %q", f.Name))
		}
		if _, dup := kinds[f.Name]; dup {
			return Schema{}, InvalidAttributeError("", fmt.Sprintf("duplicate field name: %q", f.Name))
		}
		kinds[f.Name] = f.Kind
		ordered = append(ordered, f)
	}

	return Schema{fields: ordered, kinds: kinds}, nil
}

// ValidateSchema checks that every field kind in the schema is known to the
// backend's format map. Each concrete provider constructor calls this before
// accepting a schema.
func ValidateSchema(s Schema, formats FormatMap, service string) error {
	if s.Len() == 0 {
		return InvalidAttributeError(service, "schema must have at least one field")
	}
	for _, f := range s.fields {
		if !formats.Has(f.Kind) {
			return &Error{
				Kind:    ErrInvalidAttribute,
				Service: service,
				Message: fmt.Sprintf("format kind %q not supported by backend", f.Kind),
				Field:   f.Name,
			}
		}
	}
	return nil
}

func (s Schema) Len() int {
	return len(s.fields)
}

// Fields returns the ordered fields. The slice is a copy.
func (s Schema) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Names returns field names in schema order.
func (s Schema) Names() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.Name
	}
	return out
}

// Kind looks up the format kind for a field name.
func (s Schema) Kind(name string) (FormatKind, bool) {
	k, ok := s.kinds[name]
	return k, ok
}

func (s Schema) Has(name string) bool {
	_, ok := s.kinds[name]
	return ok
}

// OrderField is the default sort/order field: the first schema field.
func (s Schema) OrderField() string {
	if len(s.fields) == 0 {
		return ""
	}
	return s.fields[0].Name
}
