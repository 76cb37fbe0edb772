package docfile_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/recstore/recstore/recstore"
	"github.com/recstore/recstore/recstore/provider/docfile"
)

func testSchema(t *testing.T) recstore.Schema {
	t.Helper()
	s, err := recstore.NewSchema(
		recstore.Field{Name: "id", Kind: recstore.FormatIntegerIndexed},
		recstore.Field{Name: "name", Kind: recstore.FormatString},
		recstore.Field{Name: "done", Kind: recstore.FormatBool},
	)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return s
}

func newProvider(t *testing.T, appendMode bool) (*docfile.Provider, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.json")
	p, err := docfile.New(testSchema(t), docfile.Config{Path: path, Create: true, Append: appendMode})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p, path
}

func seedRecords(n int) []recstore.Record {
	rows := make([]recstore.Record, 0, n)
	for i := 1; i <= n; i++ {
		rows = append(rows, recstore.Record{
			"id":   int64(i),
			"name": "row",
			"done": i%2 == 0,
		})
	}
	return rows
}

func ids(t *testing.T, rows []recstore.Record) []int64 {
	t.Helper()
	out := make([]int64, 0, len(rows))
	for _, rec := range rows {
		id, ok := rec["id"].(int64)
		if !ok {
			t.Fatalf("record has no int64 id: %v", rec)
		}
		out = append(out, id)
	}
	return out
}

func TestMissingFileIsEmpty(t *testing.T) {
	p, _ := newProvider(t, true)
	ctx := context.Background()

	n, err := p.CountRecords(ctx)
	if err != nil {
		t.Fatalf("CountRecords: %v", err)
	}
	if n != 0 {
		t.Fatalf("CountRecords = %d, want 0", n)
	}

	rows, err := p.RetrieveRecords(ctx, 5, recstore.DefaultRetrieveOptions())
	if err != nil {
		t.Fatalf("RetrieveRecords: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no records, got %v", rows)
	}
}

func TestStoreWritesValidArray(t *testing.T) {
	p, path := newProvider(t, true)
	ctx := context.Background()

	if err := p.StoreRecords(ctx, seedRecords(3), recstore.DefaultStoreOptions()); err != nil {
		t.Fatalf("StoreRecords: %v", err)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var arr []map[string]any
	if err := json.Unmarshal(buf, &arr); err != nil {
		t.Fatalf("file is not a JSON array: %v\n%s", err, buf)
	}
	if len(arr) != 3 {
		t.Fatalf("array length = %d, want 3", len(arr))
	}
}

func TestStoreAppendAndReplace(t *testing.T) {
	ctx := context.Background()

	appender, _ := newProvider(t, true)
	if err := appender.StoreRecords(ctx, seedRecords(2), recstore.DefaultStoreOptions()); err != nil {
		t.Fatalf("first store: %v", err)
	}
	if err := appender.StoreRecords(ctx, seedRecords(3), recstore.DefaultStoreOptions()); err != nil {
		t.Fatalf("second store: %v", err)
	}
	if n, _ := appender.CountRecords(ctx); n != 5 {
		t.Fatalf("append mode count = %d, want 5", n)
	}

	replacer, _ := newProvider(t, false)
	if err := replacer.StoreRecords(ctx, seedRecords(5), recstore.DefaultStoreOptions()); err != nil {
		t.Fatalf("first store: %v", err)
	}
	if err := replacer.StoreRecords(ctx, seedRecords(2), recstore.DefaultStoreOptions()); err != nil {
		t.Fatalf("second store: %v", err)
	}
	if n, _ := replacer.CountRecords(ctx); n != 2 {
		t.Fatalf("replace mode count = %d, want 2", n)
	}
}

func TestRetrieveWindowsAndTyping(t *testing.T) {
	p, _ := newProvider(t, true)
	ctx := context.Background()

	if err := p.StoreRecords(ctx, seedRecords(100), recstore.DefaultStoreOptions()); err != nil {
		t.Fatalf("StoreRecords: %v", err)
	}

	newest, err := p.RetrieveRecords(ctx, 10, recstore.DefaultRetrieveOptions())
	if err != nil {
		t.Fatalf("RetrieveRecords: %v", err)
	}
	got := ids(t, newest)
	for i, id := range got {
		if want := int64(91 + i); id != want {
			t.Fatalf("newest ids = %v, want 91..100 ascending", got)
		}
	}

	// JSON numbers decode as float64; retrieval must hand back int64 ids.
	if _, ok := newest[0]["done"].(bool); !ok {
		t.Fatalf("done not typed as bool: %v", newest[0])
	}

	oldest, err := p.RetrieveRecords(ctx, 2, recstore.RetrieveOptions{Newest: false})
	if err != nil {
		t.Fatalf("RetrieveRecords oldest: %v", err)
	}
	if got := ids(t, oldest); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("oldest ids = %v, want [1 2]", got)
	}
}

func TestTrimOldestAndNewest(t *testing.T) {
	p, _ := newProvider(t, true)
	ctx := context.Background()

	if err := p.StoreRecords(ctx, seedRecords(100), recstore.DefaultStoreOptions()); err != nil {
		t.Fatalf("StoreRecords: %v", err)
	}

	removed, err := p.TrimRecords(ctx, 10, recstore.DefaultTrimOptions())
	if err != nil {
		t.Fatalf("TrimRecords oldest: %v", err)
	}
	if removed != 10 {
		t.Fatalf("removed = %d, want 10", removed)
	}
	rest, err := p.RetrieveRecords(ctx, 1, recstore.RetrieveOptions{Newest: false})
	if err != nil {
		t.Fatalf("RetrieveRecords: %v", err)
	}
	if got := ids(t, rest); len(got) != 1 || got[0] != 11 {
		t.Fatalf("oldest surviving id = %v, want [11]", got)
	}

	removed, err = p.TrimRecords(ctx, 5, recstore.TrimOptions{Oldest: false})
	if err != nil {
		t.Fatalf("TrimRecords newest: %v", err)
	}
	if removed != 5 {
		t.Fatalf("removed = %d, want 5", removed)
	}
	top, err := p.RetrieveRecords(ctx, 1, recstore.DefaultRetrieveOptions())
	if err != nil {
		t.Fatalf("RetrieveRecords: %v", err)
	}
	if got := ids(t, top); len(got) != 1 || got[0] != 95 {
		t.Fatalf("newest surviving id = %v, want [95]", got)
	}

	if n, _ := p.CountRecords(ctx); n != 85 {
		t.Fatalf("CountRecords = %d, want 85", n)
	}
}

func TestMalformedFileFails(t *testing.T) {
	p, path := newProvider(t, true)

	if err := os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, err := p.CountRecords(context.Background())
	if err == nil || !recstore.IsKind(err, recstore.ErrStorageAccess) {
		t.Fatalf("expected storage access error, got: %v", err)
	}
}
