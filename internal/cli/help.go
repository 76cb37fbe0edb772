package cli

import (
	"fmt"
	"io"
)

func PrintRootHelp(w io.Writer) {
	fmt.Fprint(w, `recstore - uniform record storage over flat-file, JSON, and SQL backends

Usage:
  recstore [global flags] <command> [command flags]

Commands:
  store       store records (sample data or a JSON file) in the targeted backends
  get         retrieve a window of records from one end of the sort order
  trim        remove a window of records from one end of the sort order
  count       count persisted records per backend
  providers   list known, enabled, and default storage keys
  help        show this help

Global flags:
  -config PATH   YAML config file (default recstore.yaml)
  -storage KEYS  storage keys, "|"-delimited or repeated (default: config defaults)
  -v             verbose logging

Examples:
  recstore -config demo.yaml store -n 100
  recstore -storage "csv|sqlite" get -n 10 -oldest
  recstore trim -n 10
`)
}
