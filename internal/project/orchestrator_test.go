// ABOUTME: Tests for orchestrator operations and file-consistency invariants
// ABOUTME: Uses real managers for init paths and a fake Manager for install paths

package project

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/monoforge/monoforge/internal/pathmap"
	"github.com/monoforge/monoforge/internal/pkgmanager"
)

// fakeManager satisfies pkgmanager.Manager without spawning subprocesses.
type fakeManager struct {
	kind       pkgmanager.Kind
	manifest   *pkgmanager.Manifest
	installErr error
	installed  [][]string
	dev        []bool
}

func (f *fakeManager) Init(name string, private bool) error {
	f.manifest = &pkgmanager.Manifest{Name: name, Private: private}
	return nil
}

func (f *fakeManager) Install(_ context.Context, names []string, dev bool) error {
	if f.installErr != nil {
		return f.installErr
	}
	f.installed = append(f.installed, names)
	f.dev = append(f.dev, dev)
	return nil
}

func (f *fakeManager) Save() error                    { return nil }
func (f *fakeManager) Kind() pkgmanager.Kind          { return f.kind }
func (f *fakeManager) Manifest() *pkgmanager.Manifest { return f.manifest }

func newTestProject(t *testing.T) *Orchestrator {
	t.Helper()
	root := filepath.Join(t.TempDir(), "proj")
	o := New(root, pkgmanager.New(pkgmanager.KindNPM, root))
	if err := o.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return o
}

func TestInit_EmptyRoot(t *testing.T) {
	t.Parallel()
	o := newTestProject(t)

	fi, err := os.Stat(ModulesDir(o.Root))
	if err != nil || !fi.IsDir() {
		t.Errorf("expected modules directory: %v", err)
	}

	m, err := pkgmanager.LoadManifest(o.Root)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Name != "proj" {
		t.Errorf("manifest name = %q; want %q", m.Name, "proj")
	}
	if !m.Private {
		t.Error("expected private = true")
	}

	ts, err := pathmap.Load(TSConfigFile(o.Root))
	if err != nil {
		t.Fatalf("pathmap.Load: %v", err)
	}
	paths := ts.CompilerOptions.Paths
	if len(paths) != 2 {
		t.Fatalf("expected exactly 2 paths keys, got %d", len(paths))
	}
	if got := paths["@proj/*"]; !reflect.DeepEqual(got, []string{"*/src"}) {
		t.Errorf("@proj/* = %v; want [*/src]", got)
	}
	if got := paths["@proj/*/typings"]; !reflect.DeepEqual(got, []string{"*/typings"}) {
		t.Errorf("@proj/*/typings = %v; want [*/typings]", got)
	}

	if _, err := os.Stat(ConfigFile(o.Root)); err != nil {
		t.Errorf("expected config file: %v", err)
	}
}

func TestInit_RefusesExistingProject(t *testing.T) {
	t.Parallel()
	o := newTestProject(t)

	again := New(o.Root, pkgmanager.New(pkgmanager.KindNPM, o.Root))
	if err := again.Init(); err == nil {
		t.Error("expected error re-initializing existing project")
	}
}

func TestCreateModule_DeclaresOnce(t *testing.T) {
	t.Parallel()
	o := newTestProject(t)

	m, err := o.CreateModule("server")
	if err != nil {
		t.Fatalf("CreateModule: %v", err)
	}
	if m.FullName != "@proj/server" {
		t.Errorf("FullName = %q; want %q", m.FullName, "@proj/server")
	}
	if !m.Initialized() {
		t.Error("expected module layout on disk")
	}

	// Second call must not rewrite the configuration document. Removing
	// the file makes any write observable.
	if err := os.Remove(ConfigFile(o.Root)); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	m2, err := o.CreateModule("server")
	if err != nil {
		t.Fatalf("CreateModule (second): %v", err)
	}
	if m2.FullName != m.FullName {
		t.Errorf("second FullName = %q; want %q", m2.FullName, m.FullName)
	}
	if _, err := os.Stat(ConfigFile(o.Root)); !os.IsNotExist(err) {
		t.Error("expected no config write on duplicate create")
	}

	mods := o.Modules()
	if len(mods) != 1 || mods[0] != "@proj/server" {
		t.Errorf("Modules = %v; want [@proj/server]", mods)
	}
}

func TestGetModule_PureConstruction(t *testing.T) {
	t.Parallel()
	o := newTestProject(t)

	m := o.GetModule("client")
	if m.FullName != "@proj/client" {
		t.Errorf("FullName = %q; want %q", m.FullName, "@proj/client")
	}
	if m.Manager != pkgmanager.KindNPM {
		t.Errorf("Manager = %v; want KindNPM", m.Manager)
	}
	if m.Initialized() {
		t.Error("GetModule must not touch disk")
	}
}

func TestAddExternalRepo_MergePreservesKeys(t *testing.T) {
	t.Parallel()
	o := newTestProject(t)
	writeExternalRepo(t, o.Root, "lib", "@lib", "util")

	before, err := pathmap.Load(TSConfigFile(o.Root))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := o.AddExternalRepo("lib"); err != nil {
		t.Fatalf("AddExternalRepo: %v", err)
	}

	after, err := pathmap.Load(TSConfigFile(o.Root))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for key, val := range before.CompilerOptions.Paths {
		if got := after.CompilerOptions.Paths[key]; !reflect.DeepEqual(got, val) {
			t.Errorf("pre-existing key %q changed: got %v want %v", key, got, val)
		}
	}

	wantSrc := []string{"../external/lib/modules/*/src"}
	if got := after.CompilerOptions.Paths["@lib/*"]; !reflect.DeepEqual(got, wantSrc) {
		t.Errorf("@lib/* = %v; want %v", got, wantSrc)
	}
	wantTypings := []string{"../external/lib/modules/*/typings"}
	if got := after.CompilerOptions.Paths["@lib/*/typings"]; !reflect.DeepEqual(got, wantTypings) {
		t.Errorf("@lib/*/typings = %v; want %v", got, wantTypings)
	}
}

func TestAddExternalRepo_Missing(t *testing.T) {
	t.Parallel()
	o := newTestProject(t)

	err := o.AddExternalRepo("nope")
	var notFound *ExternalRepoNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected ExternalRepoNotFoundError, got %v", err)
	}
}

func TestGetExternalModuleNames(t *testing.T) {
	t.Parallel()
	o := newTestProject(t)
	writeExternalRepo(t, o.Root, "lib", "@lib", "zeta", "alpha")

	names, err := o.GetExternalModuleNames("lib")
	if err != nil {
		t.Fatalf("GetExternalModuleNames: %v", err)
	}

	want := []string{"@lib/alpha", "@lib/zeta"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v; want %v", names, want)
	}
}

func TestAddWorkspaceTooling_Yarn(t *testing.T) {
	t.Parallel()
	o := newTestProject(t)
	o.mgr = &fakeManager{kind: pkgmanager.KindYarn}

	if err := o.AddWorkspaceTooling(context.Background()); err != nil {
		t.Fatalf("AddWorkspaceTooling: %v", err)
	}

	meta := readWorkspaceMeta(t, o.Root)
	if meta["tool"] != "yarn" {
		t.Errorf("tool = %v; want yarn", meta["tool"])
	}
	if meta["useWorkspaces"] != true {
		t.Errorf("useWorkspaces = %v; want true", meta["useWorkspaces"])
	}
}

func TestAddWorkspaceTooling_NPMOmitsWorkspaces(t *testing.T) {
	t.Parallel()
	o := newTestProject(t)
	fake := &fakeManager{kind: pkgmanager.KindNPM}
	o.mgr = fake

	if err := o.AddWorkspaceTooling(context.Background()); err != nil {
		t.Fatalf("AddWorkspaceTooling: %v", err)
	}

	if len(fake.installed) != 1 || fake.installed[0][0] != "lerna" || !fake.dev[0] {
		t.Errorf("expected lerna installed as dev dependency, got %v dev=%v", fake.installed, fake.dev)
	}

	meta := readWorkspaceMeta(t, o.Root)
	if meta["tool"] != "npm" {
		t.Errorf("tool = %v; want npm", meta["tool"])
	}
	if _, present := meta["useWorkspaces"]; present {
		t.Error("expected useWorkspaces to be omitted for npm")
	}
	if meta["version"] != "0.0.0" {
		t.Errorf("version = %v; want 0.0.0", meta["version"])
	}
}

func TestAddWorkspaceTooling_InstallFailureSkipsMetadata(t *testing.T) {
	t.Parallel()
	o := newTestProject(t)
	o.mgr = &fakeManager{kind: pkgmanager.KindYarn, installErr: errors.New("offline")}

	if err := o.AddWorkspaceTooling(context.Background()); err == nil {
		t.Fatal("expected install error")
	}
	if _, err := os.Stat(WorkspaceFile(o.Root)); !os.IsNotExist(err) {
		t.Error("expected no workspace metadata after failed install")
	}
}

func TestAddModules_InstallFailureLeavesConfig(t *testing.T) {
	t.Parallel()
	o := newTestProject(t)
	o.mgr = &fakeManager{kind: pkgmanager.KindNPM, installErr: errors.New("resolution failed")}

	before, err := os.ReadFile(ConfigFile(o.Root))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	if err := o.AddModules(context.Background(), []string{"@proj/web"}, false); err == nil {
		t.Fatal("expected install error")
	}

	after, err := os.ReadFile(ConfigFile(o.Root))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(before) != string(after) {
		t.Error("expected configuration untouched after failed install")
	}
	if o.cfg.CheckModule("@proj/web") {
		t.Error("expected module not declared after failed install")
	}
}

func TestAddModules_DeclaresAfterInstall(t *testing.T) {
	t.Parallel()
	o := newTestProject(t)
	fake := &fakeManager{kind: pkgmanager.KindNPM}
	o.mgr = fake

	if err := o.AddModules(context.Background(), []string{"@proj/web", "@proj/api"}, false); err != nil {
		t.Fatalf("AddModules: %v", err)
	}

	want := []string{"@proj/api", "@proj/web"}
	if got := o.Modules(); !reflect.DeepEqual(got, want) {
		t.Errorf("Modules = %v; want %v", got, want)
	}
}

func TestAddLocalModules_CollapsesDuplicates(t *testing.T) {
	t.Parallel()
	o := newTestProject(t)

	if err := o.AddLocalModules([]string{"@proj/a", "@proj/a", "@proj/b"}); err != nil {
		t.Fatalf("AddLocalModules: %v", err)
	}

	want := []string{"@proj/a", "@proj/b"}
	if got := o.Modules(); !reflect.DeepEqual(got, want) {
		t.Errorf("Modules = %v; want %v", got, want)
	}
}

func TestLoad_RestoresState(t *testing.T) {
	t.Parallel()
	o := newTestProject(t)
	if _, err := o.CreateModule("server"); err != nil {
		t.Fatalf("CreateModule: %v", err)
	}

	loaded, err := Load(o.Root, ConfigFile(o.Root))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.Name != "proj" {
		t.Errorf("Name = %q; want %q", loaded.Name, "proj")
	}
	if loaded.Manager().Kind() != pkgmanager.KindNPM {
		t.Errorf("Kind = %v; want KindNPM", loaded.Manager().Kind())
	}
	if !loaded.cfg.CheckModule("@proj/server") {
		t.Error("expected declared module restored")
	}
}

func TestSync_DeclaresModulesFoundOnDisk(t *testing.T) {
	t.Parallel()
	o := newTestProject(t)

	if err := os.MkdirAll(filepath.Join(ModulesDir(o.Root), "stray", "src"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	if err := o.Sync(); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if !o.cfg.CheckModule("@proj/stray") {
		t.Error("expected stray module declared after sync")
	}

	loaded, err := LoadConfig(ConfigFile(o.Root))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !loaded.CheckModule("@proj/stray") {
		t.Error("expected sync to persist the declaration")
	}
}

// writeExternalRepo fabricates a linked repository under external/.
func writeExternalRepo(t *testing.T, root, rel, pkgName string, moduleDirs ...string) {
	t.Helper()

	dir := filepath.Join(ExternalDir(root), rel)
	for _, mod := range moduleDirs {
		if err := os.MkdirAll(filepath.Join(dir, "modules", mod), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
	}

	manifest := []byte(`{"name": "` + pkgName + `", "private": true}`)
	if err := os.WriteFile(filepath.Join(dir, "package.json"), manifest, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func readWorkspaceMeta(t *testing.T, root string) map[string]any {
	t.Helper()

	data, err := os.ReadFile(WorkspaceFile(root))
	if err != nil {
		t.Fatalf("reading workspace metadata: %v", err)
	}
	var meta map[string]any
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatalf("parsing workspace metadata: %v", err)
	}
	return meta
}
