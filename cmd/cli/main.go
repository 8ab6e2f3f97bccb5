// regtrace CLI: offline catalog validation, drift scans, gap passes,
// scoring and requirement comparison.
package main

import (
	"os"

	"github.com/regtrace/regtrace/internal/api/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
