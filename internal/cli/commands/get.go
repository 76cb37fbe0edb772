package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/recstore/recstore/internal/cliopt"
	"github.com/recstore/recstore/recstore"
)

// RunGet retrieves a window of records from each targeted backend and prints
// them as JSON lines.
func RunGet(g cliopt.GlobalOptions, argv []string) int {
	fs := newFlagSet("get")
	count := fs.Uint("n", 10, "number of records to retrieve")
	oldest := fs.Bool("oldest", false, "retrieve from the low end of the sort order (default: newest)")
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

	opts := recstore.DefaultRetrieveOptions()
	opts.Newest = !*oldest
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
		rows, err := p.RetrieveRecords(ctx, *count, opts)
		if err != nil {
			code = fail(fmt.Errorf("%s: %w", key, err))
			continue
		}
		printRecords(os.Stdout, key, rows)
	}
	return code
}
