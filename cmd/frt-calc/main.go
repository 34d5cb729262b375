// Command frt-calc runs the fault-ride-through calculation for one project
// against one fault catalog.
//
// It resolves the grid data of the project once, derives the equivalent
// circuit, and computes the fault impedance of every catalog test.
//
// Usage:
//
//	frt-calc [flags]
//
// Flags:
//
//	-config string        Path to YAML configuration file
//	-attributes string    Path to YAML attribute file
//	-driver string        Database driver for the attribute source (default "postgres")
//	-dsn string           Database connection string for the attribute source
//	-project string       Project number
//	-suffix string        Suffix appended to the project number (default " AZ")
//	-catalog string       Catalog key (default "4110-1")
//	-catalog-file string  Path to YAML catalog file
//	-store string         Path to catalog store database
//	-workers int          Tests solved in parallel (0 = all CPUs)
//	-format string        Report format: text, json (default "text")
//	-cbor string          Write CBOR export to file
//	-plans string         Write scenario plans (JSON) to file
//	-plot string          Write catalog chart to file (png, svg, pdf)
//	-scenario             Generate scenario plans
//	-prefix string        Scenario name prefix (default "Versuch_")
//	-onset float          Fault onset time in seconds (default 1)
//	-verbose              Enable debug logging and verbose reports
//	-log-json             Log as JSON
//
// Examples:
//
//	# Run the built-in 4120 type 2 catalog against an attribute file
//	frt-calc -attributes project.yaml -catalog 4120-2
//
//	# Read the project from the attribute database and record the run
//	frt-calc -dsn "postgres://frt@db/projects" -project 19-EZA-0326 -store frt.db
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/gridcode-frt/frt-go/internal/config"
	"github.com/gridcode-frt/frt-go/internal/engine"
	"github.com/gridcode-frt/frt-go/internal/frtplot"
	"github.com/gridcode-frt/frt-go/internal/reporter"
	"github.com/gridcode-frt/frt-go/pkg/attribute"
	"github.com/gridcode-frt/frt-go/pkg/catalogstore"
	"github.com/gridcode-frt/frt-go/pkg/fault"
	"github.com/gridcode-frt/frt-go/pkg/scenario"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitTestFailures = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("frt-calc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var flags config.Flags
	flags.Register(fs)
	verbose := fs.Bool("verbose", false, "Enable debug logging and verbose reports")
	logJSON := fs.Bool("log-json", false, "Log as JSON")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitSuccess
		}
		return exitCommandError
	}

	cfg, err := flags.Resolve(fs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	logger := config.NewLogger(stderr, *verbose, *logJSON)

	rep, err := reporter.New(cfg.Output.Format, stdout, *verbose)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	var store *catalogstore.Store
	if cfg.Store != "" {
		store, err = catalogstore.Open(cfg.Store)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return exitCommandError
		}
		defer store.Close()
	}

	catalog, err := loadCatalog(ctx, cfg, store)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	src, closeSrc, err := openSource(cfg, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	defer closeSrc()

	e := engine.NewWithConfig(cfg.EngineConfig(logger))
	report, err := e.RunProject(ctx, src, cfg.Source.Project, catalog)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	rep.ReportRun(report)

	if err := writeOutputs(ctx, cfg, report, catalog, store, logger); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}

	if len(report.Failures()) > 0 {
		return exitTestFailures
	}
	return exitSuccess
}

// loadCatalog picks the catalog from a file, the store, or the built-in
// definitions, in that order.
func loadCatalog(ctx context.Context, cfg *config.Config, store *catalogstore.Store) (*fault.Catalog, error) {
	if cfg.CatalogFile != "" {
		return fault.LoadCatalog(cfg.CatalogFile)
	}
	key, err := cfg.CatalogKey()
	if err != nil {
		return nil, err
	}
	if store != nil {
		c, err := store.LoadCatalog(ctx, key)
		if err == nil || !errors.Is(err, catalogstore.ErrCatalogNotFound) {
			return c, err
		}
	}
	return fault.Standard(key)
}

func openSource(cfg *config.Config, logger *slog.Logger) (attribute.Source, func(), error) {
	if cfg.Source.File != "" {
		return attribute.FileSource{Path: cfg.Source.File}, func() {}, nil
	}
	db, err := sql.Open(cfg.Source.Driver, cfg.Source.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open attribute database: %w", err)
	}
	src := &attribute.SQLSource{
		DB:           db,
		Driver:       cfg.Source.Driver,
		NumberSuffix: cfg.Source.NumberSuffix,
		Shortnames:   cfg.Keys.Merge(attribute.DefaultKeys()).Names(),
		Logger:       logger,
	}
	return src, func() { db.Close() }, nil
}

type planFile struct {
	Run      string                 `json:"run"`
	Settings *scenario.GridSettings `json:"settings"`
	Plans    []scenario.Plan        `json:"plans"`
}

func writeOutputs(ctx context.Context, cfg *config.Config, report *engine.Report, catalog *fault.Catalog, store *catalogstore.Store, logger *slog.Logger) error {
	var encoded []byte
	if cfg.Output.CBOR != "" || store != nil {
		var err error
		if encoded, err = reporter.EncodeReport(report); err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
	}

	if cfg.Output.CBOR != "" {
		if err := os.WriteFile(cfg.Output.CBOR, encoded, 0o644); err != nil {
			return fmt.Errorf("write CBOR export: %w", err)
		}
		logger.Info("CBOR export written", "path", cfg.Output.CBOR, "bytes", len(encoded))
	}

	if cfg.Output.Plans != "" {
		data, err := json.MarshalIndent(planFile{Run: report.ID, Settings: report.Settings, Plans: report.Plans}, "", "  ")
		if err != nil {
			return fmt.Errorf("encode plans: %w", err)
		}
		if err := os.WriteFile(cfg.Output.Plans, data, 0o644); err != nil {
			return fmt.Errorf("write plans: %w", err)
		}
		logger.Info("scenario plans written", "path", cfg.Output.Plans, "plans", len(report.Plans))
	}

	if cfg.Output.Plot != "" {
		if err := frtplot.Save(catalog, cfg.Output.Plot, frtplot.Options{Labels: true}); err != nil {
			return fmt.Errorf("write plot: %w", err)
		}
		logger.Info("catalog chart written", "path", cfg.Output.Plot)
	}

	if store != nil {
		run, results := engine.StoreRun(report)
		run.Report = encoded
		if err := store.RecordRun(ctx, run, results); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		logger.Info("run recorded", "run", run.ID, "store", cfg.Store)
	}
	return nil
}
