// ABOUTME: Module models one unit under modules/ and its on-disk lifecycle
// ABOUTME: Init scaffolds src/, typings/, a module package.json and an index stub

package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/monoforge/monoforge/internal/pkgmanager"
)

// Module is one self-contained unit of project code under modules/.
// Construction is pure; Init performs the on-disk initialization.
type Module struct {
	Name     string
	FullName string
	Dir      string
	// Manager is the package-manager variant the owning project uses.
	Manager pkgmanager.Kind
}

// Initialized reports whether the module's directory layout exists on disk.
func (m *Module) Initialized() bool {
	fi, err := os.Stat(filepath.Join(m.Dir, "src"))
	return err == nil && fi.IsDir()
}

// Init creates the module's directory layout. It is idempotent: existing
// directories and files are left alone.
func (m *Module) Init() error {
	for _, sub := range []string{"src", "typings"} {
		if err := os.MkdirAll(filepath.Join(m.Dir, sub), 0o755); err != nil {
			return fmt.Errorf("creating %s/%s: %w", m.Name, sub, err)
		}
	}

	if err := m.writeManifestStub(); err != nil {
		return err
	}

	indexPath := filepath.Join(m.Dir, "src", "index.ts")
	if _, err := os.Stat(indexPath); os.IsNotExist(err) {
		if err := os.WriteFile(indexPath, []byte("export {};\n"), 0o644); err != nil {
			return fmt.Errorf("writing index stub: %w", err)
		}
	}

	return nil
}

// writeManifestStub writes the module-level package.json unless one exists.
func (m *Module) writeManifestStub() error {
	path := filepath.Join(m.Dir, "package.json")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	stub := struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}{Name: m.FullName, Version: "0.1.0"}

	data, err := json.MarshalIndent(stub, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling module manifest: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing module manifest: %w", err)
	}
	return nil
}
