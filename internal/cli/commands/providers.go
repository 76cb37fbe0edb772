package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/recstore/recstore/config"
	"github.com/recstore/recstore/internal/cliopt"
)

// RunProviders lists the storage keys the config makes available. Unlike the
// data commands it works even when no backend is enabled.
func RunProviders(g cliopt.GlobalOptions, argv []string) int {
	fs := newFlagSet("providers")
	if err := fs.Parse(argv); err != nil {
		return 2
	}

	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return fail(err)
	}
	st, err := cfg.Build(g.Logger())
	if err != nil {
		return fail(err)
	}
	defer st.Close()

	fmt.Fprintf(os.Stdout, "known:   %s\n", strings.Join(st.ValidStorage(), " "))
	fmt.Fprintf(os.Stdout, "enabled: %s\n", strings.Join(st.EnabledStorage(), " "))
	fmt.Fprintf(os.Stdout, "default: %s\n", strings.Join(st.DefaultKeys(), " "))
	return 0
}
