package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gridcode-frt/frt-go/pkg/fault"
)

// RunExport runs the export command.
func RunExport(args []string, stdout, stderr io.Writer) int {
	var storePath string
	fs := newFlagSet("export", stderr, &storePath)
	output := fs.String("o", "", "Output file (default: stdout)")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	key, err := catalogArg(fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	store, err := openExisting(storePath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if store != nil {
		defer store.Close()
	}

	c, err := loadCatalog(context.Background(), store, key)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	data, err := fault.MarshalCatalog(c)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if *output == "" {
		fmt.Fprint(stdout, string(data))
		return exitSuccess
	}
	if err := os.WriteFile(*output, data, 0o644); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	fmt.Fprintf(stdout, "exported %s to %s\n", c.Key(), *output)
	return exitSuccess
}
