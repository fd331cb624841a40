// cmd/tools/catalog-updater/main.go
package main

import (
	"fmt"
	"io"
	"os"
)

const defaultCatalogPath = "data/schemes.json"

type command struct {
	name  string
	usage string
	run   func(args []string, out io.Writer) error
}

var commands = []command{
	{"add", "Add or replace a scheme in the catalog file", runAdd},
	{"validate", "Check every catalog entry against the scheme schema", runValidate},
	{"import-csv", "Merge a spreadsheet export into the catalog file", runImportCSV},
	{"import-postgres", "Create the catalog table and upsert the catalog file into it", runImportPostgres},
	{"index-elasticsearch", "Bulk index the catalog file into Elasticsearch", runIndexElasticsearch},
	{"refresh-cache", "Reload the Redis catalog cache from the configured source", runRefreshCache},
}

func main() {
	if len(os.Args) < 2 {
		help(os.Stderr)
		os.Exit(1)
	}

	name := os.Args[1]
	if name == "help" || name == "-h" || name == "--help" {
		help(os.Stdout)
		return
	}

	for _, c := range commands {
		if c.name != name {
			continue
		}
		if err := c.run(os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Fprintf(os.Stderr, "Unknown command: %s\n", name)
	help(os.Stderr)
	os.Exit(1)
}

func help(w io.Writer) {
	fmt.Fprintln(w, "Usage: catalog-updater <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-20s %s\n", c.name, c.usage)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'catalog-updater <command> --help' for command flags.")
}
