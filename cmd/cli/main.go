// Package main is the entry point for the datamapper CLI binary.
package main

import (
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	cli "datamapper/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
