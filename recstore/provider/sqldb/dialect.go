package sqldb

import "github.com/recstore/recstore/recstore"

// Dialect abstracts the engine-specific pieces of the SQL provider: driver
// registration name, DSN construction, the native column type map, the
// catalog query for table existence, and placeholder style.
type Dialect interface {
	// Name is the service name ("SQLite", "MySQL", "PostgreSQL").
	Name() string
	// Driver is the database/sql driver registration name.
	Driver() string
	// Formats maps format kinds to native column types.
	Formats() recstore.FormatMap
	// DSN builds the driver connection string from the provider config.
	DSN(cfg Config) string
	// TableExistsQuery returns a catalog query with exactly one parameter,
	// the table name, selecting a count that is non-zero when the table
	// exists.
	TableExistsQuery() string
	// Placeholders is the parameter marker style the driver expects.
	Placeholders() PlaceholderStyle
	// CheckHost validates the host parameter at construction time. Only
	// file-backed engines check anything here.
	CheckHost(host string, create bool) error
}
