package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gridcode-frt/frt-go/pkg/attribute"
	"github.com/gridcode-frt/frt-go/pkg/catalogstore"
	"github.com/gridcode-frt/frt-go/pkg/fault"
	"github.com/gridcode-frt/frt-go/pkg/grid"
	"github.com/gridcode-frt/frt-go/pkg/impedance"
	"github.com/gridcode-frt/frt-go/pkg/scenario"
)

// CatalogLoader loads catalogs by key.
type CatalogLoader interface {
	LoadCatalog(ctx context.Context, key fault.Key) (*fault.Catalog, error)
}

// ErrNoCatalog is returned when a run is started without a fault catalog.
var ErrNoCatalog = errors.New("no fault catalog")

// Engine executes calculation runs.
type Engine struct {
	config *Config
}

// New creates a new engine with default configuration.
func New() *Engine {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new engine with the given configuration.
func NewWithConfig(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{config: config}
}

// RunProject loads the attributes of a project and runs the catalog.
func (e *Engine) RunProject(ctx context.Context, src attribute.Source, project string, c *fault.Catalog) (*Report, error) {
	set, err := src.Load(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("load attributes: %w", err)
	}
	r, err := e.Run(ctx, set, c)
	if err != nil {
		return nil, err
	}
	r.Project = project
	return r, nil
}

// RunStored loads the catalog from a loader and runs it for a project.
func (e *Engine) RunStored(ctx context.Context, src attribute.Source, project string, loader CatalogLoader, key fault.Key) (*Report, error) {
	c, err := loader.LoadCatalog(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return e.RunProject(ctx, src, project, c)
}

// Run resolves the grid data once, computes the equivalent circuit once and
// then solves every test of the catalog. Attribute errors abort the run
// before any test is solved. Per-test failures are recorded in the results
// and do not stop the remaining tests.
func (e *Engine) Run(ctx context.Context, set attribute.Set, c *fault.Catalog) (*Report, error) {
	if c == nil {
		return nil, ErrNoCatalog
	}
	report := &Report{
		ID:        uuid.NewString(),
		Catalog:   c.Key(),
		StartedAt: time.Now(),
	}

	desc, defaults, err := grid.NewResolver(e.config.Keys, e.config.Logger).Resolve(set)
	if err != nil {
		return nil, fmt.Errorf("resolve grid data: %w", err)
	}
	circuit, err := impedance.NewEquivalentCircuit(&desc)
	if err != nil {
		return nil, err
	}
	report.Grid = desc
	report.Defaults = defaults
	report.Circuit = circuit

	e.infoLog("equivalent circuit computed",
		"run", report.ID,
		"Z", circuit.Network.Z,
		"local", circuit.Local.Source.String(),
		"upstream", circuit.Upstream.Source.String(),
		"zero", circuit.ZeroSequence.String())

	calc := impedance.NewCalculator(desc, circuit, e.config.Logger)
	results, err := e.solveAll(ctx, calc, c.Tests())
	if err != nil {
		return nil, err
	}
	report.Results = results

	if e.config.Scenario != nil {
		b := scenario.NewBuilder(desc, circuit, *e.config.Scenario)
		settings := b.Settings()
		report.Settings = &settings
		report.Plans = b.BuildAll(results)
	}

	report.CompletedAt = time.Now()
	computed, switching, failed := report.Counts()
	e.infoLog("run complete",
		"run", report.ID,
		"catalog", c.Key().String(),
		"tests", len(results),
		"computed", computed,
		"switching", switching,
		"failed", failed,
		"duration", report.Duration())
	return report, nil
}

// solveAll solves tests in parallel, keeping catalog order in the result.
func (e *Engine) solveAll(ctx context.Context, calc *impedance.Calculator, tests []fault.Test) ([]impedance.Result, error) {
	results := make([]impedance.Result, len(tests))

	g, gctx := errgroup.WithContext(ctx)
	workers := e.config.Workers
	if workers <= 0 {
		workers = DefaultConfig().Workers
	}
	g.SetLimit(workers)

	for i, t := range tests {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = calc.Solve(t)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// StoreRun converts a report into a catalog store record.
func StoreRun(r *Report) (*catalogstore.Run, []catalogstore.RunResult) {
	computed, switching, failed := r.Counts()
	completed := r.CompletedAt
	run := &catalogstore.Run{
		ID:          r.ID,
		Project:     r.Project,
		Catalog:     r.Catalog,
		StartedAt:   r.StartedAt,
		CompletedAt: &completed,
		Total:       len(r.Results),
		Computed:    computed,
		Switching:   switching,
		Failed:      failed,
		Defaults:    len(r.Defaults),
	}
	results := make([]catalogstore.RunResult, len(r.Results))
	for i, res := range r.Results {
		results[i] = catalogstore.NewRunResult(res)
	}
	return run, results
}

func (e *Engine) infoLog(msg string, args ...any) {
	if e.config.Logger != nil {
		e.config.Logger.Info(msg, args...)
	}
}
