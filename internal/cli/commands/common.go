package commands

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/recstore/recstore/config"
	"github.com/recstore/recstore/internal/cliopt"
	"github.com/recstore/recstore/recstore"
)

// openStore loads the config file and builds the Store, the schema, and the
// resolved target keys for this invocation.
func openStore(g cliopt.GlobalOptions) (*recstore.Store, recstore.Schema, []string, error) {
	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, recstore.Schema{}, nil, err
	}
	schema, err := cfg.BuildSchema()
	if err != nil {
		return nil, recstore.Schema{}, nil, err
	}
	st, err := cfg.Build(g.Logger())
	if err != nil {
		return nil, recstore.Schema{}, nil, err
	}

	keys := st.DefaultKeys()
	if g.Storage != "" {
		keys = st.ResolveKeys(g.Storage)
	}
	if len(keys) == 0 {
		st.Close()
		return nil, recstore.Schema{}, nil, fmt.Errorf("no enabled storage targeted (enabled: %v)", st.EnabledStorage())
	}
	return st, schema, keys, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, "error:", err)
	return 1
}

// printRecords writes records as JSON lines.
func printRecords(w io.Writer, key string, rows []recstore.Record) {
	for _, rec := range rows {
		buf, err := json.Marshal(rec)
		if err != nil {
			fmt.Fprintf(w, "%s: %v\n", key, rec)
			continue
		}
		fmt.Fprintf(w, "%s: %s\n", key, buf)
	}
}

// readRecordsFile decodes a JSON array of records from a file.
func readRecordsFile(path string) ([]recstore.Record, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, fmt.Errorf("decode %q: %w", path, err)
	}
	rows := make([]recstore.Record, len(raw))
	for i, m := range raw {
		rows[i] = recstore.Record(m)
	}
	return rows, nil
}
