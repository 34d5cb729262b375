package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/gridcode-frt/frt-go/pkg/catalogstore"
	"github.com/gridcode-frt/frt-go/pkg/fault"
)

// RunImport runs the import command. Arguments are YAML catalog files or
// directories of them.
func RunImport(args []string, stdout, stderr io.Writer) int {
	var storePath string
	fs := newFlagSet("import", stderr, &storePath)
	description := fs.String("description", "", "Description stored with the catalogs")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		return exitCommandError
	}

	var catalogs []*fault.Catalog
	for _, path := range fs.Args() {
		loaded, err := loadPath(path)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		catalogs = append(catalogs, loaded...)
	}

	store, err := catalogstore.Open(storePath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer store.Close()

	ctx := context.Background()
	for _, c := range catalogs {
		if err := store.SaveCatalog(ctx, c, *description); err != nil {
			fmt.Fprintf(stderr, "Error: %s: %v\n", c.Key(), err)
			return exitCommandError
		}
		fmt.Fprintf(stdout, "imported %s (%d tests)\n", c.Key(), c.Len())
	}
	return exitSuccess
}

func loadPath(path string) ([]*fault.Catalog, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return fault.LoadDirectory(path)
	}
	c, err := fault.LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return []*fault.Catalog{c}, nil
}
