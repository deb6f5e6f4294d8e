// Command dmdash is a terminal dashboard for Data Manager views.
package main

import (
	"os"

	"github.com/Iron-Ham/dmdash/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
