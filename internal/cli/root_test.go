package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/recstore/recstore/internal/cli"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()

	body := `
defaults: "csv|sqlite"
schema:
  - {field: id, format: intIDX}
  - {field: name, format: str}
csv:
  path: ` + filepath.Join(dir, "data.csv") + `
  create: true
  append: true
sqlite:
  path: ` + filepath.Join(dir, "data.db") + `
  table: records
  create: true
  append: true
`
	path := filepath.Join(dir, "recstore.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestExecuteHelpAndUnknown(t *testing.T) {
	if code := cli.Execute(nil); code != 0 {
		t.Fatalf("bare invocation = %d, want 0", code)
	}
	if code := cli.Execute([]string{"help"}); code != 0 {
		t.Fatalf("help = %d, want 0", code)
	}
	if code := cli.Execute([]string{"frobnicate"}); code != 2 {
		t.Fatalf("unknown command = %d, want 2", code)
	}
}

func TestExecuteMissingConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "absent.yaml")
	if code := cli.Execute([]string{"-config", cfg, "count"}); code != 1 {
		t.Fatalf("missing config = %d, want 1", code)
	}
}

func TestExecuteStoreCountTrim(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	if code := cli.Execute([]string{"-config", cfg, "store", "-n", "20"}); code != 0 {
		t.Fatalf("store = %d, want 0", code)
	}
	if code := cli.Execute([]string{"-config", cfg, "count"}); code != 0 {
		t.Fatalf("count = %d, want 0", code)
	}
	if code := cli.Execute([]string{"-config", cfg, "get", "-n", "5"}); code != 0 {
		t.Fatalf("get = %d, want 0", code)
	}
	if code := cli.Execute([]string{"-config", cfg, "trim", "-n", "5"}); code != 0 {
		t.Fatalf("trim = %d, want 0", code)
	}
	if code := cli.Execute([]string{"-config", cfg, "providers"}); code != 0 {
		t.Fatalf("providers = %d, want 0", code)
	}

	if code := cli.Execute([]string{"-config", cfg, "-storage", "bogus", "count"}); code != 1 {
		t.Fatalf("unknown storage = %d, want 1", code)
	}
}
