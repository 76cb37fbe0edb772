package sqldb

import (
	"fmt"

	"github.com/recstore/recstore/recstore"
)

// MySQLDialect targets MySQL via github.com/go-sql-driver/mysql. Indexed
// strings map to VARCHAR(255) because MySQL cannot index a TEXT column
// without a prefix length.
type MySQLDialect struct{}

func MySQL() *MySQLDialect { return &MySQLDialect{} }

func (d *MySQLDialect) Name() string   { return "MySQL" }
func (d *MySQLDialect) Driver() string { return "mysql" }

func (d *MySQLDialect) Formats() recstore.FormatMap {
	return recstore.FormatMap{
		recstore.FormatString:         {Native: "TEXT"},
		recstore.FormatStringIndexed:  {Native: "VARCHAR(255)", Indexed: true},
		recstore.FormatInteger:        {Native: "BIGINT"},
		recstore.FormatIntegerIndexed: {Native: "BIGINT", Indexed: true},
		recstore.FormatFloat:          {Native: "DOUBLE"},
		recstore.FormatBool:           {Native: "TINYINT(1)"},
	}
}

func (d *MySQLDialect) DSN(cfg Config) string {
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		cfg.User, cfg.Password, cfg.Host, port, cfg.Database)
}

func (d *MySQLDialect) TableExistsQuery() string {
	return "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
}

func (d *MySQLDialect) Placeholders() PlaceholderStyle {
	return PlaceholderQuestion
}

func (d *MySQLDialect) CheckHost(host string, create bool) error {
	return nil
}
