package main

import (
	"os"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/recstore/recstore/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
