// Package config loads a YAML document describing the field schema, the
// configured backends, key aliases, and default keys, and builds a ready
// recstore.Store from it. A backend section that is absent leaves that
// provider key known but disabled.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/recstore/recstore/recstore"
	"github.com/recstore/recstore/recstore/provider/docfile"
	"github.com/recstore/recstore/recstore/provider/flatfile"
	"github.com/recstore/recstore/recstore/provider/sqldb"
)

// Provider keys recognized by the store built from a config file.
const (
	KeyCSV      = "csv"
	KeyJSON     = "json"
	KeySQLite   = "sqlite"
	KeyMySQL    = "mysql"
	KeyPostgres = "postgres"
)

// StringList accepts either a YAML sequence or a single "a|b|c" delimited
// scalar, matching the legacy config vocabulary.
type StringList []string

func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var raw string
		if err := node.Decode(&raw); err != nil {
			return err
		}
		*s = nil
		for _, tok := range splitDelimited(raw) {
			*s = append(*s, tok)
		}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	default:
		return fmt.Errorf("defaults must be a string or a list")
	}
}

// SchemaField is one ordered schema entry.
type SchemaField struct {
	Field  string `yaml:"field"`
	Format string `yaml:"format"`
}

// FileSection configures a file-backed provider.
type FileSection struct {
	Path      string `yaml:"path"`
	Delimiter string `yaml:"delimiter"`
	Create    bool   `yaml:"create"`
	Append    bool   `yaml:"append"`
}

// SQLSection configures a SQL provider. Path is an alias for Host used by
// file-backed engines (SQLite).
type SQLSection struct {
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Table    string `yaml:"table"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Driver   string `yaml:"driver"`
	Create   bool   `yaml:"create"`
	Append   bool   `yaml:"append"`
}

// Config is the full YAML document.
type Config struct {
	Defaults StringList        `yaml:"defaults"`
	Aliases  map[string]string `yaml:"aliases"`
	Schema   []SchemaField     `yaml:"schema"`

	CSV      *FileSection `yaml:"csv"`
	JSON     *FileSection `yaml:"json"`
	SQLite   *SQLSection  `yaml:"sqlite"`
	MySQL    *SQLSection  `yaml:"mysql"`
	Postgres *SQLSection  `yaml:"postgres"`
}

// Load reads and parses a config file.
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return &cfg, nil
}

// BuildSchema builds the recstore.Schema declared by the document.
func (c *Config) BuildSchema() (recstore.Schema, error) {
	fields := make([]recstore.Field, 0, len(c.Schema))
	for _, sf := range c.Schema {
		kind, err := recstore.ParseKind(sf.Format)
		if err != nil {
			return recstore.Schema{}, recstore.InvalidAttributeError("", err.Error())
		}
		fields = append(fields, recstore.Field{Name: sf.Field, Kind: kind})
	}
	return recstore.NewSchema(fields...)
}

// Build constructs every configured provider and assembles the Store.
func (c *Config) Build(logger *slog.Logger) (*recstore.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	schema, err := c.BuildSchema()
	if err != nil {
		return nil, err
	}

	providers := map[string]recstore.Provider{
		KeyCSV:      nil,
		KeyJSON:     nil,
		KeySQLite:   nil,
		KeyMySQL:    nil,
		KeyPostgres: nil,
	}

	if c.CSV != nil {
		delim := rune(0)
		if c.CSV.Delimiter != "" {
			delim = []rune(c.CSV.Delimiter)[0]
		}
		p, err := flatfile.New(schema, flatfile.Config{
			Path:      c.CSV.Path,
			Delimiter: delim,
			Create:    c.CSV.Create,
			Append:    c.CSV.Append,
			Logger:    logger,
		})
		if err != nil {
			return nil, err
		}
		providers[KeyCSV] = p
	}

	if c.JSON != nil {
		p, err := docfile.New(schema, docfile.Config{
			Path:   c.JSON.Path,
			Create: c.JSON.Create,
			Append: c.JSON.Append,
			Logger: logger,
		})
		if err != nil {
			return nil, err
		}
		providers[KeyJSON] = p
	}

	if c.SQLite != nil {
		dialect := sqldb.SQLite()
		if c.SQLite.Driver != "" {
			dialect = sqldb.SQLiteWithDriver(c.SQLite.Driver)
		}
		p, err := sqldb.New(schema, dialect, sqlConfig(c.SQLite, logger))
		if err != nil {
			return nil, err
		}
		providers[KeySQLite] = p
	}

	if c.MySQL != nil {
		p, err := sqldb.New(schema, sqldb.MySQL(), sqlConfig(c.MySQL, logger))
		if err != nil {
			return nil, err
		}
		providers[KeyMySQL] = p
	}

	if c.Postgres != nil {
		p, err := sqldb.New(schema, sqldb.Postgres(), sqlConfig(c.Postgres, logger))
		if err != nil {
			return nil, err
		}
		providers[KeyPostgres] = p
	}

	return recstore.NewStore(providers, recstore.StoreConfig{
		Aliases:  c.Aliases,
		Defaults: c.Defaults,
		Logger:   logger,
	}), nil
}

func sqlConfig(s *SQLSection, logger *slog.Logger) sqldb.Config {
	host := s.Host
	if host == "" {
		host = s.Path
	}
	return sqldb.Config{
		Host:     host,
		Port:     s.Port,
		Database: s.Database,
		Table:    s.Table,
		User:     s.User,
		Password: s.Password,
		Create:   s.Create,
		Append:   s.Append,
		Logger:   logger,
	}
}

func splitDelimited(raw string) []string {
	var out []string
	for _, tok := range strings.Split(raw, recstore.KeyDelimiter) {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
