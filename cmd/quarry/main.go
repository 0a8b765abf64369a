// Command quarry is an interactive SQL builder for people who do not
// write SQL: it compiles saved query definitions against a catalog of
// SQLite databases and previews their results.
//
// Usage:
//
//	quarry compile queries/open_orders.cue
//	quarry run --limit 25 queries/open_orders.cue
//	quarry tables DEMO main
package main

import (
	"os"

	"github.com/quarry-dev/quarry/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
