// ABOUTME: Manager interface over package-manager variants plus shared exec plumbing
// ABOUTME: Detect restores the variant for an existing project from its lockfiles

package pkgmanager

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Manager abstracts the package manager driving a project. Implementations
// hold the in-memory manifest; mutations reach disk only through Save or
// as a side effect of Install running the underlying tool.
type Manager interface {
	// Init seeds a fresh manifest. Fails with ErrManifestExists if the
	// project root already has one.
	Init(name string, private bool) error
	// Install fetches the named dependencies and records them in the
	// manifest (and lockfile) on disk.
	Install(ctx context.Context, names []string, dev bool) error
	// Save persists the in-memory manifest state.
	Save() error
	// Kind reports which variant this manager is.
	Kind() Kind
	// Manifest exposes the current in-memory manifest state.
	Manifest() *Manifest
}

// PackageManagerError wraps a failed package-manager subprocess invocation.
type PackageManagerError struct {
	Command string
	Err     error
}

func (e *PackageManagerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *PackageManagerError) Unwrap() error { return e.Err }

// execRunner runs a package-manager command in dir. Tests replace it to
// avoid spawning real npm/yarn processes.
var execRunner = func(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// New returns a Manager of the given kind rooted at root.
func New(kind Kind, root string) Manager {
	switch kind {
	case KindYarn:
		return &yarnManager{root: root}
	default:
		return &npmManager{root: root}
	}
}

// Detect restores the manager for an existing project root: a yarn.lock
// selects yarn, anything else falls back to npm. The manifest is loaded so
// the returned manager starts from the persisted state.
func Detect(root string) (Manager, error) {
	m, err := LoadManifest(root)
	if err != nil {
		return nil, err
	}

	kind := KindNPM
	if _, err := os.Stat(filepath.Join(root, "yarn.lock")); err == nil {
		kind = KindYarn
	}

	switch kind {
	case KindYarn:
		return &yarnManager{root: root, manifest: m}, nil
	default:
		return &npmManager{root: root, manifest: m}, nil
	}
}

// initManifest implements the shared Init contract for both variants.
func initManifest(root, name string, private bool) (*Manifest, error) {
	if _, err := os.Stat(ManifestFile(root)); err == nil {
		return nil, ErrManifestExists
	}
	return &Manifest{Name: name, Private: private}, nil
}
