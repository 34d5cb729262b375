package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/gridcode-frt/frt-go/pkg/catalogstore"
)

// RunRemove runs the remove command.
func RunRemove(args []string, stdout, stderr io.Writer) int {
	var storePath string
	fs := newFlagSet("remove", stderr, &storePath)
	testID := fs.Int("test", 0, "Remove a single test instead of the catalog")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	key, err := catalogArg(fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	store, err := catalogstore.Open(storePath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer store.Close()

	ctx := context.Background()
	if *testID != 0 {
		if err := store.RemoveTest(ctx, key, *testID); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		fmt.Fprintf(stdout, "removed test %d from %s\n", *testID, key)
		return exitSuccess
	}

	if err := store.RemoveCatalog(ctx, key); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	fmt.Fprintf(stdout, "removed %s\n", key)
	return exitSuccess
}
