// Package sqldb stores records in one table of a SQL database. Engine
// specifics (SQLite, MySQL, PostgreSQL) live behind the Dialect interface;
// the provider owns the connection lifecycle, table and index creation,
// windowed selection, and value-keyed trim.
package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/recstore/recstore/recstore"
)

const ConfigSection = "recstore_sql"

// Config holds the fully-enumerated construction parameters. Host is the
// database file for SQLite and the server host otherwise.
type Config struct {
	Host     string
	Port     int
	Database string
	Table    string
	User     string
	Password string
	// Create allows the table (and for SQLite the database file) to come
	// into existence on first store.
	Create bool
	// Append adds new writes to existing rows; when unset, a store call
	// replaces the table contents.
	Append bool
	Logger *slog.Logger
}

// Provider is the SQL backend. It owns a lazily-opened connection handle
// that can span calls (see StoreOptions.KeepOpen); one Provider instance
// must not be driven by more than one goroutine concurrently.
type Provider struct {
	schema  recstore.Schema
	formats recstore.FormatMap
	dialect Dialect
	cfg     Config
	log     *slog.Logger

	db *sql.DB
}

// New validates construction parameters and the schema against the
// dialect's format map. No connection is opened until the first operation.
func New(schema recstore.Schema, dialect Dialect, cfg Config) (*Provider, error) {
	host, err := recstore.VerifyNotEmpty(cfg.Host, "db host", dialect.Name())
	if err != nil {
		return nil, err
	}
	table, err := recstore.VerifyNotEmpty(cfg.Table, "db table", dialect.Name())
	if err != nil {
		return nil, err
	}
	cfg.Host = host
	cfg.Table = table

	if !identRe.MatchString(table) {
		return nil, recstore.InvalidAttributeError(dialect.Name(), fmt.Sprintf("invalid table name: %q", table))
	}
	if err := dialect.CheckHost(host, cfg.Create); err != nil {
		return nil, err
	}

	formats := dialect.Formats()
	if err := recstore.ValidateSchema(schema, formats, dialect.Name()); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		schema:  schema,
		formats: formats,
		dialect: dialect,
		cfg:     cfg,
		log:     logger,
	}, nil
}

// Table names are spliced into statements as identifiers; schema field
// names are already restricted the same way.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (p *Provider) ServiceType() recstore.ServiceType { return recstore.ServiceSQL }
func (p *Provider) ServiceName() string               { return p.dialect.Name() }

// IsConnectionOpen reports whether the provider currently holds an open
// connection handle.
func (p *Provider) IsConnectionOpen() bool { return p.db != nil }

// Close force-closes the connection handle. The provider remains usable; a
// later call reopens.
func (p *Provider) Close() error {
	return p.connectClose(true)
}

// connectOpen returns the existing open handle unless force is set (close
// and reopen) or none is open (open fresh).
func (p *Provider) connectOpen(ctx context.Context, force bool) (*sql.DB, error) {
	if force {
		if err := p.connectClose(true); err != nil {
			return nil, err
		}
	}
	if p.db != nil {
		return p.db, nil
	}

	dsn := p.dialect.DSN(p.cfg)
	db, err := sql.Open(p.dialect.Driver(), dsn)
	if err == nil {
		// An in-memory SQLite database exists per connection; more than one
		// pooled connection would each see their own empty database.
		if strings.EqualFold(p.cfg.Host, InMemory) {
			db.SetMaxOpenConns(1)
		}
		err = db.PingContext(ctx)
	}
	if err != nil {
		if db != nil {
			db.Close()
		}
		p.log.Error("unable to connect to database", "service", p.dialect.Name(), "host", p.cfg.Host)
		return nil, recstore.ConnectionError(p.dialect.Name(),
			fmt.Sprintf("unable to connect to %q", p.cfg.Host), []string{err.Error()}, err)
	}
	p.db = db
	return p.db, nil
}

// connectClose closes and clears the handle when force is set.
func (p *Provider) connectClose(force bool) error {
	if !force || p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	if err != nil {
		return recstore.AccessError(p.dialect.Name(), "close connection", err)
	}
	return nil
}

// fail wraps a driver error as a storage-access failure, logging and
// force-closing the connection before it propagates.
func (p *Provider) fail(msg string, err error) error {
	p.log.Error(msg, "service", p.dialect.Name(), "table", p.cfg.Table, "error", err)
	_ = p.connectClose(true)
	return recstore.AccessError(p.dialect.Name(), msg, err)
}

// HasTable checks the engine catalog for the named table; empty means the
// configured table. It never creates anything. The connection is closed on
// return.
func (p *Provider) HasTable(ctx context.Context, table string) (bool, error) {
	if table == "" {
		table = p.cfg.Table
	}
	db, err := p.connectOpen(ctx, false)
	if err != nil {
		return false, err
	}
	defer p.connectClose(true)

	exists, err := p.tableExists(ctx, db, table)
	if err != nil {
		return false, p.fail(fmt.Sprintf("verify table %q", table), err)
	}
	return exists, nil
}

func (p *Provider) tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var n int
	if err := db.QueryRowContext(ctx, p.dialect.TableExistsQuery(), table).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateTable creates the configured table and its secondary indexes if the
// table does not already exist. Idempotent; the connection is closed on
// return.
func (p *Provider) CreateTable(ctx context.Context) error {
	db, err := p.connectOpen(ctx, false)
	if err != nil {
		return err
	}
	defer p.connectClose(true)
	return p.ensureTable(ctx, db)
}

func (p *Provider) ensureTable(ctx context.Context, db *sql.DB) error {
	exists, err := p.tableExists(ctx, db, p.cfg.Table)
	if err != nil {
		return p.fail(fmt.Sprintf("verify table %q", p.cfg.Table), err)
	}
	if exists {
		return nil
	}

	cols := make([]string, 0, p.schema.Len())
	for _, f := range p.schema.Fields() {
		cols = append(cols, f.Name+" "+p.formats[f.Kind].Native)
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", p.cfg.Table, strings.Join(cols, ", "))
	if _, err := db.ExecContext(ctx, create); err != nil {
		return p.fail(fmt.Sprintf("create table %q", p.cfg.Table), err)
	}

	// One secondary index per indexed field, named deterministically.
	for _, f := range p.schema.Fields() {
		if !p.formats[f.Kind].Indexed {
			continue
		}
		idx := fmt.Sprintf("CREATE INDEX idx_%s_%s ON %s (%s)", p.cfg.Table, f.Name, p.cfg.Table, f.Name)
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return p.fail(fmt.Sprintf("create index on %s.%s", p.cfg.Table, f.Name), err)
		}
	}
	return nil
}

// StoreRecords inserts each row using only the keys common to the row and
// the schema, via parameterized statements. A row with no schema-overlapping
// keys is skipped silently. The table is created first when absent and
// create mode allows it.
func (p *Provider) StoreRecords(ctx context.Context, rows []recstore.Record, opts recstore.StoreOptions) error {
	db, err := p.connectOpen(ctx, false)
	if err != nil {
		return err
	}
	defer p.connectClose(!opts.KeepOpen)

	exists, err := p.tableExists(ctx, db, p.cfg.Table)
	if err != nil {
		return p.fail(fmt.Sprintf("verify table %q", p.cfg.Table), err)
	}
	if !exists {
		if !p.cfg.Create {
			_ = p.connectClose(true)
			return recstore.AccessError(p.dialect.Name(),
				fmt.Sprintf("table %q does not exist and create mode is disabled", p.cfg.Table), nil)
		}
		if err := p.ensureTable(ctx, db); err != nil {
			return err
		}
	} else if !p.cfg.Append {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+p.cfg.Table); err != nil {
			return p.fail(fmt.Sprintf("truncate table %q", p.cfg.Table), err)
		}
	}

	for _, row := range rows {
		if err := p.insertRow(ctx, db, row); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) insertRow(ctx context.Context, db *sql.DB, row recstore.Record) error {
	b := newBuilder(p.dialect.Placeholders())
	var names, marks []string
	for _, f := range p.schema.Fields() {
		val, ok := row[f.Name]
		if !ok {
			continue
		}
		names = append(names, f.Name)
		marks = append(marks, b.arg(val))
	}
	if len(names) == 0 {
		return nil
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		p.cfg.Table, strings.Join(names, ", "), strings.Join(marks, ", "))
	if _, err := db.ExecContext(ctx, stmt, b.args...); err != nil {
		return p.fail(fmt.Sprintf("store records in %q", p.cfg.Table), err)
	}
	return nil
}

// CountRecords returns the table row count, or zero when the table does not
// exist yet. The connection is closed on return.
func (p *Provider) CountRecords(ctx context.Context) (uint, error) {
	db, err := p.connectOpen(ctx, false)
	if err != nil {
		return 0, err
	}
	defer p.connectClose(true)

	exists, err := p.tableExists(ctx, db, p.cfg.Table)
	if err != nil {
		return 0, p.fail(fmt.Sprintf("verify table %q", p.cfg.Table), err)
	}
	if !exists {
		return 0, nil
	}

	var n uint
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+p.cfg.Table).Scan(&n); err != nil {
		return 0, p.fail(fmt.Sprintf("count records in %q", p.cfg.Table), err)
	}
	return n, nil
}

// RetrieveRecords selects up to count records from one end of the sort
// order. Results always come back in ascending order-key order: the newest
// window is an inner descending-limited query re-sorted by an outer query.
func (p *Provider) RetrieveRecords(ctx context.Context, count uint, opts recstore.RetrieveOptions) ([]recstore.Record, error) {
	orderField, err := p.orderField(opts.OrderBy)
	if err != nil {
		return nil, err
	}

	db, err := p.connectOpen(ctx, false)
	if err != nil {
		return nil, err
	}
	defer p.connectClose(!opts.KeepOpen)

	return p.selectWindow(ctx, db, count, opts.Newest, orderField)
}

func (p *Provider) selectWindow(ctx context.Context, db *sql.DB, count uint, newest bool, orderField string) ([]recstore.Record, error) {
	fields := p.schema.Fields()
	cols := strings.Join(p.schema.Names(), ", ")

	b := newBuilder(p.dialect.Placeholders())
	var query string
	if newest {
		query = fmt.Sprintf(
			"SELECT %s FROM (SELECT %s FROM %s ORDER BY %s DESC LIMIT %s) AS win ORDER BY %s ASC",
			cols, cols, p.cfg.Table, orderField, b.arg(int64(count)), orderField)
	} else {
		query = fmt.Sprintf("SELECT %s FROM %s ORDER BY %s ASC LIMIT %s",
			cols, p.cfg.Table, orderField, b.arg(int64(count)))
	}

	rows, err := db.QueryContext(ctx, query, b.args...)
	if err != nil {
		return nil, p.fail(fmt.Sprintf("retrieve records from %q", p.cfg.Table), err)
	}
	defer rows.Close()

	var out []recstore.Record
	dest := make([]any, len(fields))
	for i := range dest {
		dest[i] = new(any)
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, p.fail(fmt.Sprintf("scan record from %q", p.cfg.Table), err)
		}
		rec := make(recstore.Record, len(fields))
		for i, f := range fields {
			raw := *(dest[i].(*any))
			if raw == nil {
				continue
			}
			typed, err := recstore.CoerceValue(f.Kind, raw)
			if err != nil {
				return nil, p.fail(fmt.Sprintf("decode column %s from %q", f.Name, p.cfg.Table), err)
			}
			rec[f.Name] = typed
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, p.fail(fmt.Sprintf("retrieve records from %q", p.cfg.Table), err)
	}
	return out, nil
}

// TrimRecords retrieves the target window, then deletes each returned row
// by equality on the order field's value. The order field's values must be
// unique for the trim to remove exactly the window; the removed count is
// the actual number of rows deleted. The deletion is persisted before
// return.
func (p *Provider) TrimRecords(ctx context.Context, count uint, opts recstore.TrimOptions) (uint, error) {
	orderField, err := p.orderField(opts.OrderBy)
	if err != nil {
		return 0, err
	}

	db, err := p.connectOpen(ctx, false)
	if err != nil {
		return 0, err
	}
	defer p.connectClose(!opts.KeepOpen)

	victims, err := p.selectWindow(ctx, db, count, !opts.Oldest, orderField)
	if err != nil {
		return 0, err
	}

	b := newBuilder(p.dialect.Placeholders())
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = %s", p.cfg.Table, orderField, b.arg(nil))

	var removed uint
	for _, rec := range victims {
		val, ok := rec[orderField]
		if !ok {
			continue
		}
		res, err := db.ExecContext(ctx, stmt, val)
		if err != nil {
			return removed, p.fail(fmt.Sprintf("trim records from %q", p.cfg.Table), err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			removed += uint(n)
		}
	}
	return removed, nil
}

func (p *Provider) orderField(orderBy string) (string, error) {
	if orderBy == "" {
		return p.schema.OrderField(), nil
	}
	if !p.schema.Has(orderBy) {
		return "", &recstore.Error{
			Kind:    recstore.ErrInvalidAttribute,
			Service: p.dialect.Name(),
			Message: "order field not in schema",
			Field:   orderBy,
		}
	}
	return orderBy, nil
}
