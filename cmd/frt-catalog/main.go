// frt-catalog is a CLI tool for managing the fault catalog store.
package main

import (
	"fmt"
	"os"

	"github.com/gridcode-frt/frt-go/cmd/frt-catalog/commands"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "init":
		exitCode = commands.RunInit(args, os.Stdout, os.Stderr)
	case "list":
		exitCode = commands.RunList(args, os.Stdout, os.Stderr)
	case "show":
		exitCode = commands.RunShow(args, os.Stdout, os.Stderr)
	case "import":
		exitCode = commands.RunImport(args, os.Stdout, os.Stderr)
	case "export":
		exitCode = commands.RunExport(args, os.Stdout, os.Stderr)
	case "remove":
		exitCode = commands.RunRemove(args, os.Stdout, os.Stderr)
	case "plot":
		exitCode = commands.RunPlot(args, os.Stdout, os.Stderr)
	case "runs":
		exitCode = commands.RunRuns(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`frt-catalog - fault catalog store tool

Usage:
  frt-catalog <command> [options] [args...]

Commands:
  init     Create the store and write the built-in catalogs
  list     List stored catalogs
  show     Display the tests of a catalog
  import   Import catalogs from YAML files or directories
  export   Export a catalog as YAML
  remove   Remove a catalog or a single test
  plot     Draw the residual voltage chart of a catalog
  runs     List, show or delete recorded calculation runs

Options:
  -h, --help     Show this help message

Examples:
  frt-catalog init -store frt.db
  frt-catalog show -store frt.db 4120-1
  frt-catalog import -store frt.db catalogs/
  frt-catalog plot -o 4110-1.png 4110-1
  frt-catalog runs -store frt.db

For command-specific help, run:
  frt-catalog <command> --help`)
}
