package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gridcode-frt/frt-go/internal/reporter"
	"github.com/gridcode-frt/frt-go/pkg/catalogstore"
)

// RunRuns runs the runs command: without arguments it lists recorded runs,
// with a run id it shows that run.
func RunRuns(args []string, stdout, stderr io.Writer) int {
	var storePath string
	fs := newFlagSet("runs", stderr, &storePath)
	limit := fs.Int("limit", 20, "Maximum number of runs listed")
	jsonOut := fs.Bool("json", false, "Output as JSON")
	remove := fs.Bool("delete", false, "Delete the given run")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	store, err := catalogstore.Open(storePath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer store.Close()

	ctx := context.Background()
	switch {
	case fs.NArg() == 0:
		return listRuns(ctx, store, *limit, *jsonOut, stdout, stderr)
	case *remove:
		if err := store.DeleteRun(ctx, fs.Arg(0)); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		fmt.Fprintf(stdout, "deleted run %s\n", fs.Arg(0))
		return exitSuccess
	default:
		return showRun(ctx, store, fs.Arg(0), *jsonOut, stdout, stderr)
	}
}

func listRuns(ctx context.Context, store *catalogstore.Store, limit int, jsonOut bool, stdout, stderr io.Writer) int {
	runs, err := store.ListRuns(ctx, limit, 0)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if jsonOut {
		if runs == nil {
			runs = []catalogstore.Run{}
		}
		data, _ := json.MarshalIndent(runs, "", "  ")
		fmt.Fprintln(stdout, string(data))
		return exitSuccess
	}
	if len(runs) == 0 {
		fmt.Fprintln(stdout, "No runs recorded.")
		return exitSuccess
	}
	for _, r := range runs {
		fmt.Fprintf(stdout, "%s  %s  %-8s  %-14s  %2d/%2d computed, %d switching, %d failed\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Catalog, r.Project,
			r.Computed, r.Total, r.Switching, r.Failed)
	}
	return exitSuccess
}

func showRun(ctx context.Context, store *catalogstore.Store, id string, jsonOut bool, stdout, stderr io.Writer) int {
	run, results, err := store.GetRun(ctx, id)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if jsonOut {
		data, _ := json.MarshalIndent(struct {
			*catalogstore.Run
			Results []catalogstore.RunResult `json:"results"`
		}{run, results}, "", "  ")
		fmt.Fprintln(stdout, string(data))
		return exitSuccess
	}

	fmt.Fprintf(stdout, "Run:     %s\nCatalog: %s\n", run.ID, run.Catalog)
	if run.Project != "" {
		fmt.Fprintf(stdout, "Project: %s\n", run.Project)
	}
	if len(run.Report) > 0 {
		if export, err := reporter.DecodeExport(run.Report); err == nil {
			g := export.Grid
			fmt.Fprintf(stdout, "Grid:    %s, Un=%g kV, Sk\"=%g kVA, star point %s\n",
				g.ConnectionClass, g.NominalVoltageKV, g.ShortCircuitPowerKVA, g.StarPoint)
		}
	}
	fmt.Fprintln(stdout)
	for _, r := range results {
		switch {
		case r.Error != "":
			fmt.Fprintf(stdout, "%02d  %-36s  error: %s\n", r.TestID, r.Kind, r.Error)
		case r.Rf == nil:
			fmt.Fprintf(stdout, "%02d  %-36s  -\n", r.TestID, r.Kind)
		default:
			fmt.Fprintf(stdout, "%02d  %-36s  Rf=%.5f Xf=%.5f Ohm\n", r.TestID, r.Kind, *r.Rf, *r.Xf)
		}
	}
	return exitSuccess
}
