package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/recstore/recstore/internal/cli/commands"
	"github.com/recstore/recstore/internal/cliopt"
)

// Execute runs the CLI and returns an exit code.
func Execute(argv []string) int {
	globalFS := flag.NewFlagSet("recstore", flag.ContinueOnError)
	globalFS.SetOutput(os.Stderr)
	g := cliopt.DefaultGlobalOptions()
	cliopt.BindGlobalFlags(globalFS, &g)

	if err := globalFS.Parse(argv); err != nil {
		// flag package already printed the error
		return 2
	}

	args := globalFS.Args()
	if len(args) == 0 {
		PrintRootHelp(os.Stdout)
		return 0
	}

	verb := args[0]
	rest := args[1:]

	switch verb {
	case "--help", "-h", "help":
		PrintRootHelp(os.Stdout)
		return 0
	case "store":
		return commands.RunStore(g, rest)
	case "get":
		return commands.RunGet(g, rest)
	case "trim":
		return commands.RunTrim(g, rest)
	case "count":
		return commands.RunCount(g, rest)
	case "providers":
		return commands.RunProviders(g, rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", verb)
		PrintRootHelp(os.Stderr)
		return 2
	}
}
