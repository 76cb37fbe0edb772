package sqldb

import (
	"fmt"
	"net/url"

	"github.com/recstore/recstore/recstore"
)

// PostgresDialect targets PostgreSQL via the pgx stdlib driver.
type PostgresDialect struct{}

func Postgres() *PostgresDialect { return &PostgresDialect{} }

func (d *PostgresDialect) Name() string   { return "PostgreSQL" }
func (d *PostgresDialect) Driver() string { return "pgx" }

func (d *PostgresDialect) Formats() recstore.FormatMap {
	return recstore.FormatMap{
		recstore.FormatString:         {Native: "TEXT"},
		recstore.FormatStringIndexed:  {Native: "TEXT", Indexed: true},
		recstore.FormatInteger:        {Native: "BIGINT"},
		recstore.FormatIntegerIndexed: {Native: "BIGINT", Indexed: true},
		recstore.FormatFloat:          {Native: "DOUBLE PRECISION"},
		recstore.FormatBool:           {Native: "BOOLEAN"},
	}
}

func (d *PostgresDialect) DSN(cfg Config) string {
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, port),
		Path:   "/" + cfg.Database,
	}
	return u.String()
}

func (d *PostgresDialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name = $1"
}

func (d *PostgresDialect) Placeholders() PlaceholderStyle {
	return PlaceholderDollar
}

func (d *PostgresDialect) CheckHost(host string, create bool) error {
	return nil
}
