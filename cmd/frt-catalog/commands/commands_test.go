package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gridcode-frt/frt-go/pkg/catalogstore"
	"github.com/gridcode-frt/frt-go/pkg/fault"
)

const customCatalog = `standard: "9001"
type: 1
tests:
  - id: 1
    duration: 0.15
    residual_voltage: 0.3
    leg: local
    reactive_power: underexcited
    phases: 3
    pre_fault_voltage: 1
  - id: 2
    duration: 5
    fault_type: 1
    residual_voltage: 1.1
    leg: local
    reactive_power: overexcited
    phases: 2
`

func run(t *testing.T, fn func([]string, io.Writer, io.Writer) int, args ...string) (int, string, string) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	code := fn(args, stdout, stderr)
	return code, stdout.String(), stderr.String()
}

func initStore(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frt.db")
	code, stdout, stderr := run(t, RunInit, "-store", path)
	if code != exitSuccess {
		t.Fatalf("init failed with %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "4 built-in catalogs written") {
		t.Fatalf("unexpected init output: %s", stdout)
	}
	return path
}

func TestRunInit_Idempotent(t *testing.T) {
	path := initStore(t)

	code, stdout, _ := run(t, RunInit, "-store", path)
	if code != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, code)
	}
	if !strings.Contains(stdout, "0 built-in catalogs written") {
		t.Errorf("expected no catalogs rewritten, got: %s", stdout)
	}

	_, stdout, _ = run(t, RunInit, "-store", path, "-overwrite")
	if !strings.Contains(stdout, "4 built-in catalogs written") {
		t.Errorf("expected all catalogs rewritten, got: %s", stdout)
	}
}

func TestRunList(t *testing.T) {
	path := initStore(t)

	code, stdout, _ := run(t, RunList, "-store", path)
	if code != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, code)
	}
	for _, want := range []string{"4110-1", "4110-2", "4120-1", "4120-2"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %s in list, got: %s", want, stdout)
		}
	}

	_, stdout, _ = run(t, RunList, "-store", path, "-json")
	var infos []catalogstore.CatalogInfo
	if err := json.Unmarshal([]byte(stdout), &infos); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(infos) != 4 || infos[2].Tests != 17 {
		t.Errorf("unexpected catalogs: %+v", infos)
	}
}

func TestRunList_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")

	_, stdout, _ := run(t, RunList, "-store", path)
	if !strings.Contains(stdout, "No catalogs stored") {
		t.Errorf("expected empty message, got: %s", stdout)
	}
}

func TestRunShow_BuiltinWithoutStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	code, stdout, stderr := run(t, RunShow, "-store", path, "4120/1")
	if code != exitSuccess {
		t.Fatalf("expected exit code %d, got %d: %s", exitSuccess, code, stderr)
	}
	if !strings.Contains(stdout, "Catalog: 4120-1 (17 tests)") {
		t.Errorf("expected catalog header, got: %s", stdout)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("show must not create a store")
	}
}

func TestRunShow_Formats(t *testing.T) {
	path := initStore(t)

	_, stdout, _ := run(t, RunShow, "-store", path, "-format", "json", "-test", "14", "4110-1")
	var out ShowOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(out.Tests) != 1 || out.Tests[0].Duration != 60 || out.Tests[0].Kind != "switching step" {
		t.Errorf("unexpected test: %+v", out.Tests)
	}

	_, stdout, _ = run(t, RunShow, "-store", path, "-f", "yaml", "4110-2")
	if !strings.Contains(stdout, "catalog: 4110-2") {
		t.Errorf("expected YAML output, got: %s", stdout)
	}
}

func TestRunShow_Errors(t *testing.T) {
	path := initStore(t)

	code, _, stderr := run(t, RunShow, "-store", path)
	if code != exitCommandError || !strings.Contains(stderr, "exactly one catalog key") {
		t.Errorf("expected missing key error, got %d: %s", code, stderr)
	}

	code, _, stderr = run(t, RunShow, "-store", path, "4999-1")
	if code != exitCommandError || !strings.Contains(stderr, "not built in") {
		t.Errorf("expected unknown catalog error, got %d: %s", code, stderr)
	}

	code, _, _ = run(t, RunShow, "-store", path, "-test", "99", "4110-1")
	if code != exitCommandError {
		t.Errorf("expected exit code %d for unknown test, got %d", exitCommandError, code)
	}
}

func TestRunImportExport(t *testing.T) {
	path := initStore(t)
	dir := t.TempDir()
	file := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(file, []byte(customCatalog), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := run(t, RunImport, "-store", path, "-description", "site test", dir)
	if code != exitSuccess {
		t.Fatalf("import failed with %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "imported 9001-1 (2 tests)") {
		t.Errorf("unexpected import output: %s", stdout)
	}

	out := filepath.Join(dir, "export", "9001.yaml")
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		t.Fatal(err)
	}
	code, _, stderr = run(t, RunExport, "-store", path, "-o", out, "9001-1")
	if code != exitSuccess {
		t.Fatalf("export failed with %d: %s", code, stderr)
	}
	c, err := fault.LoadCatalog(out)
	if err != nil {
		t.Fatalf("reload export: %v", err)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 tests, got %d", c.Len())
	}
	if test, _ := c.Get(2); test.PreFaultVoltage != 1 {
		t.Errorf("expected default pre-fault voltage 1, got %g", test.PreFaultVoltage)
	}

	_, stdout, _ = run(t, RunExport, "-store", path, "4120-2")
	if !strings.Contains(stdout, `standard: "4120"`) {
		t.Errorf("expected YAML on stdout, got: %s", stdout)
	}
}

func TestRunImport_Errors(t *testing.T) {
	path := initStore(t)

	code, _, stderr := run(t, RunImport, "-store", path)
	if code != exitCommandError || !strings.Contains(stderr, "no files specified") {
		t.Errorf("expected no files error, got %d: %s", code, stderr)
	}

	code, _, _ = run(t, RunImport, "-store", path, "nonexistent.yaml")
	if code != exitCommandError {
		t.Errorf("expected exit code %d, got %d", exitCommandError, code)
	}
}

func TestRunRemove(t *testing.T) {
	path := initStore(t)

	code, stdout, stderr := run(t, RunRemove, "-store", path, "-test", "17", "4120-1")
	if code != exitSuccess {
		t.Fatalf("remove test failed with %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "removed test 17 from 4120-1") {
		t.Errorf("unexpected output: %s", stdout)
	}

	code, _, _ = run(t, RunRemove, "-store", path, "4110-2")
	if code != exitSuccess {
		t.Fatalf("expected exit code %d, got %d", exitSuccess, code)
	}
	code, _, stderr = run(t, RunRemove, "-store", path, "4110-2")
	if code != exitCommandError || !strings.Contains(stderr, "catalog not found") {
		t.Errorf("expected not found error, got %d: %s", code, stderr)
	}

	store, err := catalogstore.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	c, err := store.LoadCatalog(context.Background(), fault.Key{Standard: "4120", Type: 1})
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 16 {
		t.Errorf("expected 16 tests left, got %d", c.Len())
	}
}

func TestRunPlot(t *testing.T) {
	out := filepath.Join(t.TempDir(), "chart.svg")

	code, stdout, stderr := run(t, RunPlot, "-store", filepath.Join(t.TempDir(), "none.db"), "-o", out, "4110-1")
	if code != exitSuccess {
		t.Fatalf("plot failed with %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "wrote 4110-1 chart") {
		t.Errorf("unexpected output: %s", stdout)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("expected SVG output")
	}
}

func TestRunRuns(t *testing.T) {
	path := initStore(t)

	_, stdout, _ := run(t, RunRuns, "-store", path)
	if !strings.Contains(stdout, "No runs recorded") {
		t.Errorf("expected empty message, got: %s", stdout)
	}

	store, err := catalogstore.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	rf, xf := 1.5, 5.6
	err = store.RecordRun(context.Background(), &catalogstore.Run{
		ID:      "run-1",
		Project: "19-EZA-0326",
		Catalog: fault.Key{Standard: "4120", Type: 1},
		Total:   2,
	}, []catalogstore.RunResult{
		{TestID: 1, Kind: "three-phase short circuit", Psif: 75, Rf: &rf, Xf: &xf},
		{TestID: 2, Kind: "switching step", Psif: 75},
	})
	store.Close()
	if err != nil {
		t.Fatal(err)
	}

	_, stdout, _ = run(t, RunRuns, "-store", path)
	if !strings.Contains(stdout, "run-1") || !strings.Contains(stdout, "19-EZA-0326") {
		t.Errorf("expected run in list, got: %s", stdout)
	}

	_, stdout, _ = run(t, RunRuns, "-store", path, "run-1")
	if !strings.Contains(stdout, "Rf=1.50000 Xf=5.60000 Ohm") {
		t.Errorf("expected result line, got: %s", stdout)
	}

	code, stdout, _ := run(t, RunRuns, "-store", path, "-delete", "run-1")
	if code != exitSuccess || !strings.Contains(stdout, "deleted run run-1") {
		t.Errorf("expected delete, got %d: %s", code, stdout)
	}
	code, _, stderr := run(t, RunRuns, "-store", path, "run-1")
	if code != exitCommandError || !strings.Contains(stderr, "run not found") {
		t.Errorf("expected not found, got %d: %s", code, stderr)
	}
}

func TestHelpFlag(t *testing.T) {
	code, _, _ := run(t, RunList, "-h")
	if code != exitSuccess {
		t.Errorf("expected exit code %d for -h, got %d", exitSuccess, code)
	}
}
