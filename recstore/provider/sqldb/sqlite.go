package sqldb

import (
	"strings"

	"github.com/recstore/recstore/recstore"
)

// InMemory is the SQLite host keyword for an in-memory database. It skips
// the file existence check regardless of create mode.
const InMemory = ":memory:"

// SQLiteDialect targets SQLite. The default driver is the pure-Go
// modernc.org/sqlite ("sqlite"); mattn/go-sqlite3 users can select
// "sqlite3" instead.
type SQLiteDialect struct {
	DriverName string
}

func SQLite() *SQLiteDialect {
	return &SQLiteDialect{DriverName: "sqlite"}
}

func SQLiteWithDriver(driver string) *SQLiteDialect {
	return &SQLiteDialect{DriverName: driver}
}

func (d *SQLiteDialect) Name() string   { return "SQLite" }
func (d *SQLiteDialect) Driver() string { return d.DriverName }

func (d *SQLiteDialect) Formats() recstore.FormatMap {
	return recstore.FormatMap{
		recstore.FormatString:         {Native: "TEXT"},
		recstore.FormatStringIndexed:  {Native: "TEXT", Indexed: true},
		recstore.FormatInteger:        {Native: "INTEGER"},
		recstore.FormatIntegerIndexed: {Native: "INTEGER", Indexed: true},
		recstore.FormatFloat:          {Native: "REAL"},
		recstore.FormatBool:           {Native: "NUMERIC"},
	}
}

// DSN appends busy-timeout and foreign-key settings in the parameter style
// each driver understands; they differ between mattn and modernc.
func (d *SQLiteDialect) DSN(cfg Config) string {
	params := "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if d.DriverName == "sqlite3" {
		params = "_busy_timeout=5000&_foreign_keys=on"
	}
	sep := "?"
	if strings.Contains(cfg.Host, "?") {
		sep = "&"
	}
	return cfg.Host + sep + params
}

func (d *SQLiteDialect) TableExistsQuery() string {
	return "SELECT count(name) FROM sqlite_master WHERE type = 'table' AND name = ?"
}

func (d *SQLiteDialect) Placeholders() PlaceholderStyle {
	return PlaceholderQuestion
}

func (d *SQLiteDialect) CheckHost(host string, create bool) error {
	if strings.EqualFold(host, InMemory) {
		return nil
	}
	return recstore.VerifyFile(host, d.Name(), !create)
}
