// ABOUTME: npm variant of Manager wrapping the npm CLI
// ABOUTME: Install runs npm install --save/--save-dev and reloads the mutated manifest

package pkgmanager

import (
	"context"
	"fmt"
)

type npmManager struct {
	root     string
	manifest *Manifest
}

func (n *npmManager) Kind() Kind { return KindNPM }

func (n *npmManager) Manifest() *Manifest { return n.manifest }

func (n *npmManager) Init(name string, private bool) error {
	m, err := initManifest(n.root, name, private)
	if err != nil {
		return err
	}
	n.manifest = m
	return nil
}

// Install runs npm install --save <names> (or --save-dev for dev deps) in the
// project root. npm rewrites package.json itself, so the in-memory manifest
// is reloaded afterwards to pick up the recorded versions.
func (n *npmManager) Install(ctx context.Context, names []string, dev bool) error {
	saveFlag := "--save"
	if dev {
		saveFlag = "--save-dev"
	}

	args := append([]string{"install", saveFlag}, names...)
	if err := execRunner(ctx, n.root, "npm", args...); err != nil {
		return &PackageManagerError{Command: "npm install", Err: err}
	}

	m, err := LoadManifest(n.root)
	if err != nil {
		return fmt.Errorf("reloading manifest after install: %w", err)
	}
	n.manifest = m
	return nil
}

func (n *npmManager) Save() error {
	return SaveManifest(n.root, n.manifest)
}
