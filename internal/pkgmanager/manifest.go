// ABOUTME: Manifest models package.json and persists it with atomic writes
// ABOUTME: Load distinguishes a missing manifest from a corrupt one

package pkgmanager

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const manifestFileName = "package.json"

// ErrManifestExists is returned by Init when a manifest is already present.
var ErrManifestExists = errors.New("package.json already exists")

// ManifestCorruptError indicates a manifest file that exists but cannot be parsed.
type ManifestCorruptError struct {
	Path string
	Err  error
}

func (e *ManifestCorruptError) Error() string {
	return fmt.Sprintf("corrupt manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestCorruptError) Unwrap() error { return e.Err }

// Manifest mirrors the package.json fields the orchestrator cares about.
type Manifest struct {
	Name            string            `json:"name"`
	Private         bool              `json:"private"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
}

// ManifestFile returns the manifest path for a project root.
func ManifestFile(root string) string {
	return filepath.Join(root, manifestFileName)
}

// LoadManifest reads package.json from the given directory.
// Returns os.ErrNotExist (wrapped) if the file does not exist and
// ManifestCorruptError if it exists but cannot be parsed.
func LoadManifest(root string) (*Manifest, error) {
	path := ManifestFile(root)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ManifestCorruptError{Path: path, Err: err}
	}
	return &m, nil
}

// SaveManifest writes a manifest to the given directory atomically.
func SaveManifest(root string, m *Manifest) error {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	data = append(data, '\n')

	path := ManifestFile(root)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp manifest: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp manifest: %w", err)
	}

	return nil
}
