package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	root := t.TempDir()
	mgr, err := NewManager(WithConfigPath(filepath.Join(t.TempDir(), "cfgdir", configFileName)), WithRoot(root))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return mgr, root
}

func TestManagerCreatesFileWithDefaults(t *testing.T) {
	mgr, root := newTestManager(t)

	if _, err := os.Stat(mgr.Path()); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if got := mgr.Get().ResultsDir; got != filepath.Join(root, "results") {
		t.Fatalf("expected results dir under %s, got %s", root, got)
	}
}

func TestManagerDefaultsRootedAtWorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	mgr, err := NewManager(WithConfigPath(filepath.Join(t.TempDir(), "cfgdir", configFileName)))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if got := mgr.Get().ResultsDir; got != filepath.Join(wd, "results") {
		t.Fatalf("expected ./results, got %s", got)
	}
}

func TestManagerSetPersists(t *testing.T) {
	mgr, _ := newTestManager(t)

	if err := mgr.Set("search_step=0.001", "solver_method=bisect", "plot_enabled=false"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	cfg := mgr.Get()
	if cfg.SearchStep != 0.001 || cfg.SolverMethod != "bisect" || cfg.PlotEnabled {
		t.Fatalf("set not applied: %+v", cfg)
	}

	reopened, err := NewManager(WithConfigPath(mgr.Path()), WithRoot(mgr.root))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Get() != cfg {
		t.Fatalf("set not persisted: %+v", reopened.Get())
	}
}

func TestManagerSetRejects(t *testing.T) {
	mgr, _ := newTestManager(t)
	before := mgr.Get()

	if err := mgr.Set("color=blue"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	for _, bad := range []string{"search_step", "search_step=abc", "search_step=-1", "solver_method=newton", "debug=maybe"} {
		if err := mgr.Set(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
	if mgr.Get() != before {
		t.Fatalf("rejected assignment changed the config: %+v", mgr.Get())
	}
}

func TestManagerUpdateFromJSONKeepsOmittedKeys(t *testing.T) {
	mgr, _ := newTestManager(t)
	if err := mgr.UpdateFromJSON(`{"plot_format":"svg"}`); err != nil {
		t.Fatalf("UpdateFromJSON: %v", err)
	}
	cfg := mgr.Get()
	if cfg.PlotFormat != "svg" || cfg.SearchStep != 0.0001 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestManagerReset(t *testing.T) {
	mgr, root := newTestManager(t)
	if err := mgr.Set("plot_step=0.05"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := mgr.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if mgr.Get() != *DefaultConfigWithRoot(root) {
		t.Fatalf("reset did not restore defaults: %+v", mgr.Get())
	}
}

func TestManagerFillsMissingKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, configFileName)
	if err := os.WriteFile(path, []byte(`{"solver_method":"bisect"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	mgr, err := NewManager(WithConfigPath(path), WithRoot(dir))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	cfg := mgr.Get()
	if cfg.SolverMethod != "bisect" || cfg.SearchStep != 0.0001 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestManagerRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFileName)
	if err := os.WriteFile(path, []byte(`{"plot_format":"gif"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewManager(WithConfigPath(path)); err == nil {
		t.Fatalf("expected invalid plot_format to be rejected")
	}
}

func TestChangesListsDifferences(t *testing.T) {
	a := *DefaultConfigWithRoot("/x")
	b := a
	b.SolverMethod = "bisect"

	diff := changes(a, b)
	if len(diff) != 1 || diff["solver_method"] != "grid -> bisect" {
		t.Fatalf("unexpected diff %v", diff)
	}
	if len(changes(a, a)) != 0 {
		t.Fatalf("expected no changes")
	}
}

func TestManagerWatchReloads(t *testing.T) {
	mgr, _ := newTestManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan Config, 1)
	if err := mgr.Watch(ctx, func(cfg Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	edited := []byte(`{"search_step": 0.01}`)
	if err := os.WriteFile(mgr.Path(), edited, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case got := <-reloaded:
		if got.SearchStep != 0.01 {
			t.Fatalf("expected reloaded step 0.01, got %v", got.SearchStep)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("watcher did not fire on config change")
	}
}

func TestManagerWatchKeepsConfigOnInvalidEdit(t *testing.T) {
	mgr, _ := newTestManager(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Watch(ctx, nil); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(mgr.Path(), []byte(`{"solver_method":"newton"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(2 * reloadDebounce)

	if got := mgr.Get().SolverMethod; got != "grid" {
		t.Fatalf("invalid edit was applied: %q", got)
	}
}
