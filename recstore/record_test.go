package recstore_test

import (
	"testing"

	"github.com/recstore/recstore/recstore"
)

func testSchema(t *testing.T) recstore.Schema {
	t.Helper()
	return mustSchema(t,
		recstore.Field{Name: "id", Kind: recstore.FormatIntegerIndexed},
		recstore.Field{Name: "name", Kind: recstore.FormatString},
		recstore.Field{Name: "score", Kind: recstore.FormatFloat},
		recstore.Field{Name: "done", Kind: recstore.FormatBool},
	)
}

func TestDecodeRow(t *testing.T) {
	schema := testSchema(t)
	raw := map[string]string{
		"id":    "42",
		"name":  "alpha",
		"score": "3.5",
		"done":  "true",
		"extra": "dropped",
	}

	rec, err := recstore.DecodeRow(raw, schema, recstore.TextFormats())
	if err != nil {
		t.Fatalf("DecodeRow: %v", err)
	}
	if rec["id"] != int64(42) || rec["name"] != "alpha" || rec["score"] != 3.5 || rec["done"] != true {
		t.Fatalf("unexpected record: %v", rec)
	}
	if _, ok := rec["extra"]; ok {
		t.Fatalf("unknown key kept: %v", rec)
	}
}

func TestDecodeRowBadValue(t *testing.T) {
	schema := testSchema(t)
	raw := map[string]string{"id": "not-a-number"}

	if _, err := recstore.DecodeRow(raw, schema, recstore.TextFormats()); err == nil {
		t.Fatalf("expected conversion error")
	}
}

func TestNormalizeRecordJSONShapes(t *testing.T) {
	schema := testSchema(t)

	// json.Unmarshal decodes every number as float64.
	raw := map[string]any{
		"id":    float64(7),
		"name":  "beta",
		"score": float64(1.25),
		"done":  true,
		"junk":  "dropped",
	}
	rec, err := recstore.NormalizeRecord(raw, schema)
	if err != nil {
		t.Fatalf("NormalizeRecord: %v", err)
	}
	if rec["id"] != int64(7) || rec["score"] != 1.25 || rec["done"] != true {
		t.Fatalf("unexpected record: %v", rec)
	}
	if _, ok := rec["junk"]; ok {
		t.Fatalf("unknown key kept: %v", rec)
	}
}

func TestCoerceValueDriverShapes(t *testing.T) {
	cases := []struct {
		kind recstore.FormatKind
		in   any
		want any
	}{
		{recstore.FormatInteger, int64(5), int64(5)},
		{recstore.FormatInteger, float64(5), int64(5)},
		{recstore.FormatInteger, []byte("5"), int64(5)},
		{recstore.FormatString, []byte("hi"), "hi"},
		{recstore.FormatString, int64(9), "9"},
		{recstore.FormatFloat, int64(2), float64(2)},
		{recstore.FormatFloat, []byte("2.5"), 2.5},
		{recstore.FormatBool, int64(1), true},
		{recstore.FormatBool, int64(0), false},
		{recstore.FormatBool, []byte("yes"), true},
	}
	for _, tc := range cases {
		got, err := recstore.CoerceValue(tc.kind, tc.in)
		if err != nil {
			t.Fatalf("CoerceValue(%s, %v): %v", tc.kind, tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("CoerceValue(%s, %v) = %v, want %v", tc.kind, tc.in, got, tc.want)
		}
	}

	if _, err := recstore.CoerceValue(recstore.FormatInteger, struct{}{}); err == nil {
		t.Fatalf("expected error for uncoercible value")
	}
}

func TestEncodeValueRoundTrip(t *testing.T) {
	formats := recstore.TextFormats()
	cases := []struct {
		kind recstore.FormatKind
		val  any
	}{
		{recstore.FormatInteger, int64(-12)},
		{recstore.FormatFloat, 98.6},
		{recstore.FormatBool, true},
		{recstore.FormatString, "with, comma"},
	}
	for _, tc := range cases {
		text := recstore.EncodeValue(tc.val)
		back, err := formats[tc.kind].Convert(text)
		if err != nil {
			t.Fatalf("convert %q back as %s: %v", text, tc.kind, err)
		}
		if back != tc.val {
			t.Fatalf("round trip %v -> %q -> %v", tc.val, text, back)
		}
	}

	if recstore.EncodeValue(nil) != "" {
		t.Fatalf("nil should encode empty")
	}
}

func TestWindow(t *testing.T) {
	cases := []struct {
		total, count       int
		newest             bool
		wantStart, wantEnd int
	}{
		{100, 10, true, 90, 100},
		{100, 10, false, 0, 10},
		{5, 10, true, 0, 5},
		{5, 10, false, 0, 5},
		{0, 3, true, 0, 0},
		{7, 0, false, 0, 0},
	}
	for _, tc := range cases {
		start, end := recstore.Window(tc.total, tc.count, tc.newest)
		if start != tc.wantStart || end != tc.wantEnd {
			t.Fatalf("Window(%d, %d, %v) = [%d, %d), want [%d, %d)",
				tc.total, tc.count, tc.newest, start, end, tc.wantStart, tc.wantEnd)
		}
	}
}
