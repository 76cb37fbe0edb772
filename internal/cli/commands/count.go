package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/recstore/recstore/internal/cliopt"
)

// RunCount reports the persisted record count per targeted backend.
func RunCount(g cliopt.GlobalOptions, argv []string) int {
	fs := newFlagSet("count")
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	st, _, keys, err := openStore(g)
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	ctx := context.Background()
	code := 0
	for _, key := range keys {
		p, err := st.Provider(key)
		if err != nil {
			code = fail(err)
			continue
		}
		n, err := p.CountRecords(ctx)
		if err != nil {
			code = fail(fmt.Errorf("%s: %w", key, err))
			continue
		}
		fmt.Fprintf(os.Stdout, "%s: %d record(s)\n", key, n)
	}
	return code
}
