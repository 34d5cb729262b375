package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gridcode-frt/frt-go/pkg/catalogstore"
)

// RunList runs the list command.
func RunList(args []string, stdout, stderr io.Writer) int {
	var storePath string
	fs := newFlagSet("list", stderr, &storePath)
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	store, err := catalogstore.Open(storePath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer store.Close()

	infos, err := store.ListCatalogs(context.Background())
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if *jsonOut {
		if infos == nil {
			infos = []catalogstore.CatalogInfo{}
		}
		data, _ := json.MarshalIndent(infos, "", "  ")
		fmt.Fprintln(stdout, string(data))
		return exitSuccess
	}

	if len(infos) == 0 {
		fmt.Fprintln(stdout, "No catalogs stored. Run 'frt-catalog init' to add the built-in catalogs.")
		return exitSuccess
	}
	for _, info := range infos {
		fmt.Fprintf(stdout, "%-10s %3d tests  %s  %s\n",
			info.Key, info.Tests, info.UpdatedAt.Format("2006-01-02 15:04"), info.Description)
	}
	return exitSuccess
}
