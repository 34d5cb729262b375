package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/gridcode-frt/frt-go/pkg/catalogstore"
)

// RunInit runs the init command.
func RunInit(args []string, stdout, stderr io.Writer) int {
	var storePath string
	fs := newFlagSet("init", stderr, &storePath)
	overwrite := fs.Bool("overwrite", false, "Replace built-in catalogs that already exist")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	store, err := catalogstore.Open(storePath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer store.Close()

	n, err := store.Seed(context.Background(), *overwrite)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	fmt.Fprintf(stdout, "%s: %d built-in catalogs written\n", storePath, n)
	return exitSuccess
}
