// Package commands implements the frt-catalog subcommands.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gridcode-frt/frt-go/pkg/catalogstore"
	"github.com/gridcode-frt/frt-go/pkg/fault"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
)

// DefaultStore is the store path used when -store is not given.
const DefaultStore = "frt.db"

func newFlagSet(name string, stderr io.Writer, store *string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	if store != nil {
		fs.StringVar(store, "store", DefaultStore, "Path to catalog store database")
	}
	return fs
}

// parseFlags parses args and reports the exit code to use on failure.
func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess, false
		}
		return exitCommandError, false
	}
	return exitSuccess, true
}

// catalogArg parses the single catalog key argument.
func catalogArg(fs *flag.FlagSet) (fault.Key, error) {
	if fs.NArg() != 1 {
		return fault.Key{}, errors.New("exactly one catalog key required")
	}
	return fault.ParseKey(fs.Arg(0))
}

// openExisting opens the store at path. A missing file is not an error and
// returns a nil store.
func openExisting(path string) (*catalogstore.Store, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return catalogstore.Open(path)
}

// loadCatalog reads a catalog from the store, falling back to the built-in
// definitions when the store has no such catalog.
func loadCatalog(ctx context.Context, store *catalogstore.Store, key fault.Key) (*fault.Catalog, error) {
	if store != nil {
		c, err := store.LoadCatalog(ctx, key)
		if err == nil || !errors.Is(err, catalogstore.ErrCatalogNotFound) {
			return c, err
		}
	}
	c, err := fault.Standard(key)
	if err != nil {
		return nil, fmt.Errorf("catalog %s not in store and not built in", key)
	}
	return c, nil
}
