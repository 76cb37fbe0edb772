package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/recstore/recstore/internal/cliopt"
	"github.com/recstore/recstore/internal/sampledata"
	"github.com/recstore/recstore/recstore"
)

// RunStore stores records in every targeted backend. Records come from a
// JSON file (-file) or are generated from the schema (-n).
func RunStore(g cliopt.GlobalOptions, argv []string) int {
	fs := newFlagSet("store")
	count := fs.Int("n", 10, "number of sample records to generate")
	file := fs.String("file", "", "JSON file holding an array of records (overrides -n)")
	startID := fs.Int64("start", 1, "first value for integer fields of generated records")
	keepOpen := fs.Bool("keep-open", false, "keep SQL connections open between batches")
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	st, schema, keys, err := openStore(g)
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	var rows []recstore.Record
	if *file != "" {
		raw, err := readRecordsFile(*file)
		if err != nil {
			return fail(err)
		}
		rows = make([]recstore.Record, 0, len(raw))
		for i, rec := range raw {
			norm, err := recstore.NormalizeRecord(rec, schema)
			if err != nil {
				return fail(fmt.Errorf("record %d: %w", i, err))
			}
			rows = append(rows, norm)
		}
	} else {
		rows = sampledata.Generate(schema, *count, *startID)
	}

	opts := recstore.DefaultStoreOptions()
	opts.KeepOpen = *keepOpen

	ctx := context.Background()
	code := 0
	for _, key := range keys {
		p, err := st.Provider(key)
		if err != nil {
			code = fail(err)
			continue
		}
		if err := p.StoreRecords(ctx, rows, opts); err != nil {
			code = fail(fmt.Errorf("%s: %w", key, err))
			continue
		}
		fmt.Fprintf(os.Stdout, "%s: stored %d record(s)\n", key, len(rows))
	}
	return code
}
