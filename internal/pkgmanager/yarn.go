// ABOUTME: yarn variant of Manager wrapping the yarn CLI
// ABOUTME: Install runs yarn add [--dev] and reloads the mutated manifest

package pkgmanager

import (
	"context"
	"fmt"
)

type yarnManager struct {
	root     string
	manifest *Manifest
}

func (y *yarnManager) Kind() Kind { return KindYarn }

func (y *yarnManager) Manifest() *Manifest { return y.manifest }

func (y *yarnManager) Init(name string, private bool) error {
	m, err := initManifest(y.root, name, private)
	if err != nil {
		return err
	}
	y.manifest = m
	return nil
}

// Install runs yarn add <names> (or yarn add --dev) in the project root.
// yarn rewrites package.json and yarn.lock itself, so the in-memory manifest
// is reloaded afterwards.
func (y *yarnManager) Install(ctx context.Context, names []string, dev bool) error {
	args := []string{"add"}
	if dev {
		args = append(args, "--dev")
	}
	args = append(args, names...)

	if err := execRunner(ctx, y.root, "yarn", args...); err != nil {
		return &PackageManagerError{Command: "yarn add", Err: err}
	}

	m, err := LoadManifest(y.root)
	if err != nil {
		return fmt.Errorf("reloading manifest after install: %w", err)
	}
	y.manifest = m
	return nil
}

func (y *yarnManager) Save() error {
	return SaveManifest(y.root, y.manifest)
}
