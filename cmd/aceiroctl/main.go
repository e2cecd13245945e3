// aceiroctl inspects and imports incident data from the command line.
//
// Usage:
//
//	aceiroctl report
//	aceiroctl report --backend sqlite --table incidents_by_month
//	aceiroctl import --from ./data --db ./data/aceiro.db
package main

import (
	"fmt"
	"os"

	"aceiro/cmd/aceiroctl/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
