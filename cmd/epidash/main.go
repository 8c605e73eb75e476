// epidash queries the epidemiological analytics API from the terminal.
//
// Usage:
//
//	epidash filters
//	epidash weeks
//	epidash trend --state Kerala --disease Dengue
//	epidash top --state Kerala --week 2024-01-08
//	epidash climate --disease Malaria
//	epidash map --week 2024-01-08 --disease Dengue
package main

import (
	"fmt"
	"os"

	"github.com/epidash/backend/cmd/epidash/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
