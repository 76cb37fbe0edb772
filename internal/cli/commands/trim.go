package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/recstore/recstore/internal/cliopt"
	"github.com/recstore/recstore/recstore"
)

// RunTrim removes a window of records from each targeted backend and reports
// how many were actually removed.
func RunTrim(g cliopt.GlobalOptions, argv []string) int {
	fs := newFlagSet("trim")
	count := fs.Uint("n", 10, "number of records to remove")
	newest := fs.Bool("newest", false, "trim from the high end of the sort order (default: oldest)")
	orderBy := fs.String("order", "", "field to order by (default: first schema field)")
	keepOpen := fs.Bool("keep-open", false, "keep SQL connections open between batches")
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	st, _, keys, err := openStore(g)
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	opts := recstore.DefaultTrimOptions()
	opts.Oldest = !*newest
	opts.OrderBy = *orderBy
	opts.KeepOpen = *keepOpen

	ctx := context.Background()
	code := 0
	for _, key := range keys {
		p, err := st.Provider(key)
		if err != nil {
			code = fail(err)
			continue
		}
		removed, err := p.TrimRecords(ctx, *count, opts)
		if err != nil {
			code = fail(fmt.Errorf("%s: %w", key, err))
			continue
		}
		fmt.Fprintf(os.Stdout, "%s: removed %d record(s)\n", key, removed)
	}
	return code
}
