// ABOUTME: Orchestrator keeps manifest, tsconfig, config and disk layout consistent
// ABOUTME: Each operation persists its own writes in documented order; no rollback

package project

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/monoforge/monoforge/internal/log"
	"github.com/monoforge/monoforge/internal/pathmap"
	"github.com/monoforge/monoforge/internal/pkgmanager"
)

// Orchestrator coordinates the four persisted representations of project
// state: package.json, tsconfig.json, monoforge.yaml, and the modules/ and
// external/ directory layout. Operations persist one file after each
// mutation; a failed step leaves earlier writes in place. No locking guards
// concurrent processes on the same root.
type Orchestrator struct {
	Root string
	// Name is derived from the root's base name at init and must match the
	// manifest's declared name for the project's lifetime.
	Name string

	mgr pkgmanager.Manager
	cfg *ConfigManager
}

// workspaceMeta is the generated workspace metadata (lerna.json).
type workspaceMeta struct {
	Version       string `json:"version"`
	Tool          string `json:"tool"`
	UseWorkspaces bool   `json:"useWorkspaces,omitempty"`
}

// New constructs an orchestrator for a fresh project rooted at root.
func New(root string, mgr pkgmanager.Manager) *Orchestrator {
	return &Orchestrator{
		Root: root,
		Name: filepath.Base(root),
		mgr:  mgr,
		cfg:  NewConfigManager(filepath.Base(root)),
	}
}

// Load resumes an existing project. configPath is the canonical location of
// the configuration document, passed in explicitly by the caller. The
// package-manager variant is restored from what is present on disk.
func Load(root, configPath string) (*Orchestrator, error) {
	mgr, err := pkgmanager.Detect(root)
	if err != nil {
		return nil, fmt.Errorf("detecting package manager: %w", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	log.Debug("loaded project %s (%s)", cfg.name, mgr.Kind())
	return &Orchestrator{
		Root: root,
		Name: mgr.Manifest().Name,
		mgr:  mgr,
		cfg:  cfg,
	}, nil
}

// Scope returns the npm scope addressing the project's own modules.
func (o *Orchestrator) Scope() string {
	return "@" + o.Name
}

// Manager exposes the package-manager controller.
func (o *Orchestrator) Manager() pkgmanager.Manager { return o.mgr }

// Modules returns the declared module names, sorted.
func (o *Orchestrator) Modules() []string { return o.cfg.Modules() }

// Init creates the project layout. Order matters: the manifest and the
// path-mapping file must exist before the configuration document is written,
// since later operations assume their presence.
func (o *Orchestrator) Init() error {
	if _, err := os.Stat(ConfigFile(o.Root)); err == nil {
		return fmt.Errorf("project already initialized at %s", o.Root)
	}

	if err := os.MkdirAll(ModulesDir(o.Root), 0o755); err != nil {
		return fmt.Errorf("creating modules directory: %w", err)
	}

	ts := pathmap.New(o.Scope())
	if err := ts.Save(TSConfigFile(o.Root)); err != nil {
		return err
	}

	if err := o.mgr.Init(o.Name, true); err != nil {
		return err
	}
	if err := o.mgr.Save(); err != nil {
		return err
	}

	o.cfg.Init()
	if err := o.cfg.saveConfig(ConfigFile(o.Root)); err != nil {
		return err
	}

	log.Info("initialized project %s (%s)", o.Name, o.mgr.Kind())
	return nil
}

// AddWorkspaceTooling installs the workspace-coordination dependency and
// writes variant-specific workspace metadata. The metadata file is written
// only after a successful install.
func (o *Orchestrator) AddWorkspaceTooling(ctx context.Context) error {
	if err := o.mgr.Install(ctx, []string{"lerna"}, true); err != nil {
		return err
	}

	meta := workspaceMeta{Version: "0.0.0", Tool: o.mgr.Kind().String()}
	if o.mgr.Kind() == pkgmanager.KindYarn {
		meta.UseWorkspaces = true
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling workspace metadata: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(WorkspaceFile(o.Root), data, 0o644); err != nil {
		return fmt.Errorf("writing workspace metadata: %w", err)
	}
	return nil
}

// AddExternalRepo merges path-mapping entries for a linked repository into
// the existing tsconfig. Pre-existing entries are preserved; a re-linked
// repository overwrites its own keys.
func (o *Orchestrator) AddExternalRepo(rel string) error {
	link := NewExternalRepoLink(o.Root, rel)
	extName, err := link.PackageName()
	if err != nil {
		return err
	}

	ts, err := pathmap.Load(TSConfigFile(o.Root))
	if err != nil {
		return err
	}

	// Entries are relative to the tsconfig baseUrl (modules/).
	base := "../" + externalDirName + "/" + rel + "/" + modulesDirName + "/*/"
	ts.Merge(map[string][]string{
		extName + "/*":         {base + "src"},
		extName + "/*/typings": {base + "typings"},
	})

	if err := ts.Save(TSConfigFile(o.Root)); err != nil {
		return err
	}

	log.Info("linked external repository %s as %s", rel, extName)
	return nil
}

// GetExternalModuleNames returns one scoped name per module directory under
// the linked repository, as {externalPackageName}/{dirName}, sorted.
func (o *Orchestrator) GetExternalModuleNames(rel string) ([]string, error) {
	link := NewExternalRepoLink(o.Root, rel)
	extName, err := link.PackageName()
	if err != nil {
		return nil, err
	}

	dirs, err := link.ModuleNames()
	if err != nil {
		return nil, err
	}

	names := make([]string, len(dirs))
	for i, dir := range dirs {
		names[i] = extName + "/" + dir
	}
	return names, nil
}

// GetModule constructs a Module bound to the current package-manager
// variant. No I/O is performed.
func (o *Orchestrator) GetModule(name string) *Module {
	return &Module{
		Name:     name,
		FullName: o.Scope() + "/" + name,
		Dir:      filepath.Join(ModulesDir(o.Root), name),
		Manager:  o.mgr.Kind(),
	}
}

// CreateModule initializes a module on disk and declares it. A module that
// is already declared is not re-declared and the configuration document is
// not rewritten; the Module is returned either way.
func (o *Orchestrator) CreateModule(name string) (*Module, error) {
	m := o.GetModule(name)
	if err := m.Init(); err != nil {
		return nil, err
	}

	if !o.cfg.CheckModule(m.FullName) {
		o.cfg.AddModule(m.FullName)
		if err := o.cfg.saveConfig(ConfigFile(o.Root)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Install delegates to the package manager. The configuration document is
// not touched.
func (o *Orchestrator) Install(ctx context.Context, names []string, dev bool) error {
	return o.mgr.Install(ctx, names, dev)
}

// AddLocalModules declares each name and persists the configuration once
// after the batch. Duplicates collapse silently.
func (o *Orchestrator) AddLocalModules(names []string) error {
	for _, name := range names {
		o.cfg.AddModule(name)
	}
	return o.cfg.saveConfig(ConfigFile(o.Root))
}

// AddModules installs the named dependencies, then declares them. When the
// install fails the configuration is left unmodified.
func (o *Orchestrator) AddModules(ctx context.Context, names []string, dev bool) error {
	if err := o.Install(ctx, names, dev); err != nil {
		return err
	}
	return o.AddLocalModules(names)
}

// Sync reconciles the declared-module set with the modules/ directory and
// re-seeds the project's own tsconfig entries. Used by watch mode after
// on-disk changes.
func (o *Orchestrator) Sync() error {
	entries, err := os.ReadDir(ModulesDir(o.Root))
	if err != nil {
		return fmt.Errorf("reading modules directory: %w", err)
	}

	changed := false
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		full := o.Scope() + "/" + entry.Name()
		if !o.cfg.CheckModule(full) {
			o.cfg.AddModule(full)
			changed = true
			log.Debug("declared module %s found on disk", full)
		}
	}

	ts, err := pathmap.Load(TSConfigFile(o.Root))
	if err != nil {
		return err
	}
	ts.Merge(map[string][]string{
		o.Scope() + "/*":         {"*/src"},
		o.Scope() + "/*/typings": {"*/typings"},
	})
	if err := ts.Save(TSConfigFile(o.Root)); err != nil {
		return err
	}

	if changed {
		return o.cfg.saveConfig(ConfigFile(o.Root))
	}
	return nil
}
