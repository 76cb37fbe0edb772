package cliopt

import (
	"flag"
	"log/slog"
	"os"
)

// GlobalOptions are parsed once at the CLI root and passed to subcommands.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command router and per-command code.
type GlobalOptions struct {
	ConfigPath string
	Storage    string
	Verbose    bool
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		ConfigPath: "recstore.yaml",
	}
}

func BindGlobalFlags(fs *flag.FlagSet, g *GlobalOptions) {
	fs.StringVar(&g.ConfigPath, "config", g.ConfigPath, "path to the YAML config file")
	fs.StringVar(&g.Storage, "storage", g.Storage, "storage keys to target, e.g. \"sqlite\" or \"csv|json\" (default: config defaults)")
	fs.BoolVar(&g.Verbose, "v", g.Verbose, "verbose logging")
}

// Logger builds the process logger from the verbosity flag.
func (g GlobalOptions) Logger() *slog.Logger {
	level := slog.LevelWarn
	if g.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
