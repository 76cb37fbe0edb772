package sqldb_test

import (
	"strings"
	"testing"

	"github.com/recstore/recstore/recstore"
	"github.com/recstore/recstore/recstore/provider/sqldb"
)

func TestSQLiteDSN(t *testing.T) {
	cfg := sqldb.Config{Host: "/tmp/data.db"}

	dsn := sqldb.SQLite().DSN(cfg)
	if !strings.HasPrefix(dsn, "/tmp/data.db?") || !strings.Contains(dsn, "_pragma=busy_timeout(5000)") {
		t.Fatalf("modernc DSN = %q", dsn)
	}

	dsn = sqldb.SQLiteWithDriver("sqlite3").DSN(cfg)
	if !strings.Contains(dsn, "_busy_timeout=5000") || strings.Contains(dsn, "_pragma") {
		t.Fatalf("mattn DSN = %q", dsn)
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := sqldb.Config{
		Host:     "db.example.com",
		Database: "metrics",
		User:     "app",
		Password: "secret",
	}

	dsn := sqldb.MySQL().DSN(cfg)
	want := "app:secret@tcp(db.example.com:3306)/metrics?parseTime=true&charset=utf8mb4"
	if dsn != want {
		t.Fatalf("DSN = %q, want %q", dsn, want)
	}

	cfg.Port = 3307
	if dsn := sqldb.MySQL().DSN(cfg); !strings.Contains(dsn, "tcp(db.example.com:3307)") {
		t.Fatalf("custom port DSN = %q", dsn)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := sqldb.Config{
		Host:     "db.example.com",
		Database: "metrics",
		User:     "app",
		Password: "p@ss word",
	}

	dsn := sqldb.Postgres().DSN(cfg)
	if !strings.HasPrefix(dsn, "postgres://") {
		t.Fatalf("DSN = %q", dsn)
	}
	if !strings.Contains(dsn, "db.example.com:5432") || !strings.Contains(dsn, "/metrics") {
		t.Fatalf("DSN = %q", dsn)
	}
	// Credentials with reserved characters must be escaped.
	if strings.Contains(dsn, "p@ss word") {
		t.Fatalf("password not escaped: %q", dsn)
	}
}

func TestPlaceholderStyles(t *testing.T) {
	if got := sqldb.SQLite().Placeholders(); got != sqldb.PlaceholderQuestion {
		t.Fatalf("sqlite placeholders = %v", got)
	}
	if got := sqldb.MySQL().Placeholders(); got != sqldb.PlaceholderQuestion {
		t.Fatalf("mysql placeholders = %v", got)
	}
	if got := sqldb.Postgres().Placeholders(); got != sqldb.PlaceholderDollar {
		t.Fatalf("postgres placeholders = %v", got)
	}
}

func TestTableExistsQueriesParameterStyle(t *testing.T) {
	if q := sqldb.SQLite().TableExistsQuery(); !strings.Contains(q, "sqlite_master") || !strings.Contains(q, "?") {
		t.Fatalf("sqlite query = %q", q)
	}
	if q := sqldb.MySQL().TableExistsQuery(); !strings.Contains(q, "information_schema") || !strings.Contains(q, "?") {
		t.Fatalf("mysql query = %q", q)
	}
	if q := sqldb.Postgres().TableExistsQuery(); !strings.Contains(q, "information_schema") || !strings.Contains(q, "$1") {
		t.Fatalf("postgres query = %q", q)
	}
}

func TestFormatMapsCoverAllKinds(t *testing.T) {
	kinds := []recstore.FormatKind{
		recstore.FormatString, recstore.FormatStringIndexed,
		recstore.FormatInteger, recstore.FormatIntegerIndexed,
		recstore.FormatFloat, recstore.FormatBool,
	}
	dialects := []sqldb.Dialect{sqldb.SQLite(), sqldb.MySQL(), sqldb.Postgres()}
	for _, d := range dialects {
		formats := d.Formats()
		for _, kind := range kinds {
			fm, ok := formats[kind]
			if !ok || fm.Native == "" {
				t.Fatalf("%s: no native type for %s", d.Name(), kind)
			}
		}
		if !formats[recstore.FormatIntegerIndexed].Indexed || !formats[recstore.FormatStringIndexed].Indexed {
			t.Fatalf("%s: indexed kinds not marked", d.Name())
		}
		if formats[recstore.FormatInteger].Indexed || formats[recstore.FormatString].Indexed {
			t.Fatalf("%s: plain kinds marked indexed", d.Name())
		}
	}
}
