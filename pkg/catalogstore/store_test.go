package catalogstore

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gridcode-frt/frt-go/pkg/fault"
	"github.com/gridcode-frt/frt-go/pkg/grid"
	"github.com/gridcode-frt/frt-go/pkg/impedance"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

var mv1 = fault.Key{Standard: fault.StandardMV, Type: 1}

func TestStoreSaveAndLoadCatalog(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	want, err := fault.Standard(mv1)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.SaveCatalog(ctx, want, "test"); err != nil {
		t.Fatalf("Failed to save catalog: %v", err)
	}

	got, err := store.LoadCatalog(ctx, mv1)
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}

	if got.Len() != want.Len() {
		t.Fatalf("Expected %d tests, got %d", want.Len(), got.Len())
	}
	wantTests, gotTests := want.Tests(), got.Tests()
	for i := range wantTests {
		if wantTests[i] != gotTests[i] {
			t.Errorf("Test at position %d: expected %+v, got %+v", i, wantTests[i], gotTests[i])
		}
	}
}

func TestStoreSaveCatalogReplaces(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	c := fault.NewCatalog(mv1)
	_ = c.Append(fault.Test{ID: 1, Duration: 1, Phases: 3, PreFaultVoltage: 1})
	_ = c.Append(fault.Test{ID: 2, Duration: 2, Phases: 3, PreFaultVoltage: 1})
	if err := store.SaveCatalog(ctx, c, ""); err != nil {
		t.Fatal(err)
	}

	c.Remove(1)
	if err := store.SaveCatalog(ctx, c, "second"); err != nil {
		t.Fatal(err)
	}

	got, err := store.LoadCatalog(ctx, mv1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 1 {
		t.Errorf("Expected 1 test after replace, got %d", got.Len())
	}

	infos, err := store.ListCatalogs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 1 || infos[0].Description != "second" {
		t.Errorf("Unexpected catalog list: %+v", infos)
	}
}

func TestStoreLoadCatalogNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LoadCatalog(context.Background(), mv1)
	if !errors.Is(err, ErrCatalogNotFound) {
		t.Errorf("Expected ErrCatalogNotFound, got %v", err)
	}
}

func TestStoreSeed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	n, err := store.Seed(ctx, false)
	if err != nil {
		t.Fatalf("Failed to seed: %v", err)
	}
	if n != 4 {
		t.Errorf("Expected 4 catalogs written, got %d", n)
	}

	n, err = store.Seed(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Expected existing catalogs to be kept, got %d written", n)
	}

	infos, err := store.ListCatalogs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		key   string
		tests int
	}{{"4110-1", 15}, {"4110-2", 15}, {"4120-1", 17}, {"4120-2", 17}}
	if len(infos) != len(want) {
		t.Fatalf("Expected %d catalogs, got %d", len(want), len(infos))
	}
	for i, w := range want {
		if infos[i].Key.String() != w.key || infos[i].Tests != w.tests {
			t.Errorf("Catalog %d: expected %s with %d tests, got %s with %d",
				i, w.key, w.tests, infos[i].Key, infos[i].Tests)
		}
	}
}

func TestStoreLoadRejectsUnknownReactiveMode(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	c := fault.NewCatalog(mv1)
	_ = c.Append(fault.Test{ID: 1, Duration: 1, ResidualVoltage: 0.5, Phases: 3, PreFaultVoltage: 1})
	_ = c.Append(fault.Test{ID: 2, Duration: 1, ResidualVoltage: 0.5, Phases: 3, PreFaultVoltage: 1, ReactivePower: fault.ReactiveOverexcited})
	if err := store.SaveCatalog(ctx, c, ""); err != nil {
		t.Fatalf("Failed to save catalog: %v", err)
	}

	got, err := store.LoadCatalog(ctx, mv1)
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	if first := got.Tests()[0]; first.ReactivePower != fault.ReactiveUnspecified {
		t.Errorf("Expected unspecified reactive mode, got %s", first.ReactivePower)
	}

	if _, err := store.db.ExecContext(ctx,
		`UPDATE fault_tests SET qset = ? WHERE catalog_key = ? AND test_id = ?`,
		"untererreg", mv1.String(), 2); err != nil {
		t.Fatal(err)
	}
	if _, err := store.LoadCatalog(ctx, mv1); err == nil || !strings.Contains(err.Error(), `"untererreg"`) {
		t.Errorf("Expected unknown reactive power mode error, got %v", err)
	}
	if _, err := store.GetTest(ctx, mv1, 2); err == nil {
		t.Error("Expected GetTest to reject the stored label")
	}
}

func TestStoreTestOperations(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if _, err := store.Seed(ctx, false); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetTest(ctx, mv1, 12)
	if err != nil {
		t.Fatalf("Failed to get test: %v", err)
	}
	if got.Leg != fault.Upstream || got.ReactivePower != fault.ReactiveUnderexcited {
		t.Errorf("Unexpected test 12: %+v", got)
	}

	got.Duration = 1.5
	if err := store.UpdateTest(ctx, mv1, got); err != nil {
		t.Fatalf("Failed to update test: %v", err)
	}
	updated, _ := store.GetTest(ctx, mv1, 12)
	if updated.Duration != 1.5 {
		t.Errorf("Expected duration 1.5, got %g", updated.Duration)
	}

	extra := fault.Test{ID: 16, Duration: 0.5, ResidualVoltage: 0.6, Phases: 3, PreFaultVoltage: 1}
	if err := store.AppendTest(ctx, mv1, extra); err != nil {
		t.Fatalf("Failed to append test: %v", err)
	}
	var dup *fault.DuplicateIDError
	if err := store.AppendTest(ctx, mv1, extra); !errors.As(err, &dup) {
		t.Errorf("Expected DuplicateIDError, got %v", err)
	}

	if err := store.RemoveTest(ctx, mv1, 3); err != nil {
		t.Fatalf("Failed to remove test: %v", err)
	}
	if _, err := store.GetTest(ctx, mv1, 3); !errors.Is(err, ErrTestNotFound) {
		t.Errorf("Expected ErrTestNotFound, got %v", err)
	}
	if err := store.RemoveTest(ctx, mv1, 3); !errors.Is(err, ErrTestNotFound) {
		t.Errorf("Expected ErrTestNotFound on second remove, got %v", err)
	}
	if err := store.UpdateTest(ctx, mv1, fault.Test{ID: 99, Phases: 3}); !errors.Is(err, ErrTestNotFound) {
		t.Errorf("Expected ErrTestNotFound on update, got %v", err)
	}

	c, err := store.LoadCatalog(ctx, mv1)
	if err != nil {
		t.Fatal(err)
	}
	tests := c.Tests()
	if len(tests) != 15 || tests[len(tests)-1].ID != 16 {
		t.Errorf("Expected appended test last, got %d tests ending with %d", len(tests), tests[len(tests)-1].ID)
	}
}

func TestStoreRemoveCatalog(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	if _, err := store.Seed(ctx, false); err != nil {
		t.Fatal(err)
	}

	if err := store.RemoveCatalog(ctx, mv1); err != nil {
		t.Fatalf("Failed to remove catalog: %v", err)
	}
	if _, err := store.GetTest(ctx, mv1, 1); !errors.Is(err, ErrCatalogNotFound) {
		t.Errorf("Expected ErrCatalogNotFound, got %v", err)
	}
	if err := store.RemoveCatalog(ctx, mv1); !errors.Is(err, ErrCatalogNotFound) {
		t.Errorf("Expected ErrCatalogNotFound, got %v", err)
	}
}

func TestStoreRecordAndGetRun(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	done := time.Now().UTC()
	run := &Run{
		Project:     "19-EZA-0326",
		Catalog:     mv1,
		StartedAt:   done.Add(-time.Second),
		CompletedAt: &done,
		Total:       3,
		Computed:    1,
		Switching:   1,
		Failed:      1,
		Report:      []byte{0xa0},
	}
	results := []RunResult{
		NewRunResult(impedance.Result{
			Test:      fault.Test{ID: 1},
			Kind:      fault.KindThreePhaseShortCircuit,
			Psif:      30,
			Impedance: &grid.Impedance{R: 0.5, X: 0.29},
		}),
		NewRunResult(impedance.Result{Test: fault.Test{ID: 9}, Kind: fault.KindSwitchingStep, Psif: 30}),
		NewRunResult(impedance.Result{
			Test: fault.Test{ID: 2},
			Kind: fault.KindTwoPhaseShortCircuit,
			Err:  &impedance.DomainError{TestID: 2, Reason: "r", Err: impedance.ErrFaultImpedanceDomain},
		}),
	}

	if err := store.RecordRun(ctx, run, results); err != nil {
		t.Fatalf("Failed to record run: %v", err)
	}
	if run.ID == "" {
		t.Fatal("Expected generated run ID")
	}

	got, gotResults, err := store.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("Failed to get run: %v", err)
	}
	if got.Project != run.Project || got.Catalog != mv1 || got.Failed != 1 {
		t.Errorf("Unexpected run: %+v", got)
	}
	if got.CompletedAt == nil {
		t.Error("Expected completion time")
	}
	if len(got.Report) != 1 {
		t.Errorf("Expected stored report, got %v", got.Report)
	}
	if len(gotResults) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(gotResults))
	}
	if gotResults[0].Rf == nil || *gotResults[0].Rf != 0.5 {
		t.Errorf("Expected Rf 0.5, got %v", gotResults[0].Rf)
	}
	if gotResults[1].Rf != nil {
		t.Errorf("Expected no impedance for switching step")
	}
	if gotResults[2].Error == "" {
		t.Errorf("Expected error text for failed test")
	}

	runs, err := store.ListRuns(ctx, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Errorf("Unexpected run list: %+v", runs)
	}

	if err := store.DeleteRun(ctx, run.ID); err != nil {
		t.Fatal(err)
	}
	if _, _, err := store.GetRun(ctx, run.ID); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Expected ErrRunNotFound, got %v", err)
	}
}

func TestStoreFilePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "frt.db")

	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Seed(ctx, false); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	c, err := store.LoadCatalog(ctx, fault.Key{Standard: fault.StandardHV, Type: 2})
	if err != nil {
		t.Fatalf("Failed to load after reopen: %v", err)
	}
	if c.Len() != 17 {
		t.Errorf("Expected 17 tests, got %d", c.Len())
	}
}
