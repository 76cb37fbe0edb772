package recstore_test

import (
	"errors"
	"testing"

	"github.com/recstore/recstore/recstore"
)

func mustSchema(t *testing.T, fields ...recstore.Field) recstore.Schema {
	t.Helper()
	s, err := recstore.NewSchema(fields...)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return s
}

func TestNewSchemaOrderingAndLookup(t *testing.T) {
	s := mustSchema(t,
		recstore.Field{Name: "id", Kind: recstore.FormatIntegerIndexed},
		recstore.Field{Name: "name", Kind: recstore.FormatString},
		recstore.Field{Name: "score", Kind: recstore.FormatFloat},
	)

	if got := s.Len(); got != 3 {
		t.Fatalf("Len = %d, want 3", got)
	}
	if got := s.OrderField(); got != "id" {
		t.Fatalf("OrderField = %q, want id", got)
	}
	wantNames := []string{"id", "name", "score"}
	for i, name := range s.Names() {
		if name != wantNames[i] {
			t.Fatalf("Names[%d] = %q, want %q", i, name, wantNames[i])
		}
	}
	kind, ok := s.Kind("score")
	if !ok || kind != recstore.FormatFloat {
		t.Fatalf("Kind(score) = %v, %v", kind, ok)
	}
	if s.Has("missing") {
		t.Fatalf("Has(missing) = true")
	}
}

func TestNewSchemaRejectsBadFields(t *testing.T) {
	cases := []struct {
		name   string
		fields []recstore.Field
	}{
		{"empty", nil},
		{"blank name", []recstore.Field{{Name: "", Kind: recstore.FormatString}}},
		{"unsafe name", []recstore.Field{{Name: "id; DROP TABLE x", Kind: recstore.FormatInteger}}},
		{"leading digit", []recstore.Field{{Name: "1id", Kind: recstore.FormatInteger}}},
		{"duplicate", []recstore.Field{
			{Name: "id", Kind: recstore.FormatInteger},
			{Name: "id", Kind: recstore.FormatString},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := recstore.NewSchema(tc.fields...)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !recstore.IsKind(err, recstore.ErrInvalidAttribute) {
				t.Fatalf("expected invalid attribute, got: %v", err)
			}
		})
	}
}

func TestValidateSchemaUnknownKind(t *testing.T) {
	s := mustSchema(t, recstore.Field{Name: "blob", Kind: recstore.FormatKind("binary")})

	err := recstore.ValidateSchema(s, recstore.TextFormats(), "CSV")
	if err == nil || !recstore.IsKind(err, recstore.ErrInvalidAttribute) {
		t.Fatalf("expected invalid attribute, got: %v", err)
	}
	var e *recstore.Error
	if !errors.As(err, &e) || e.Field != "blob" {
		t.Fatalf("expected field name in error, got: %v", err)
	}
}

func TestParseKind(t *testing.T) {
	for _, kw := range []string{"str", "strIDX", "int", "intIDX", "float", "bool"} {
		kind, err := recstore.ParseKind(kw)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", kw, err)
		}
		if string(kind) != kw {
			t.Fatalf("ParseKind(%q) = %q", kw, kind)
		}
	}
	if _, err := recstore.ParseKind("timestamp"); err == nil {
		t.Fatalf("expected error for unknown keyword")
	}
}
