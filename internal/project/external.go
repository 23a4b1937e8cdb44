// ABOUTME: ExternalRepoLink reads a linked repository under external/
// ABOUTME: Exposes its declared package name and sorted module directory names

package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ExternalRepoNotFoundError indicates a linked path that is absent or is
// missing its package manifest.
type ExternalRepoNotFoundError struct {
	Path string
	Err  error
}

func (e *ExternalRepoNotFoundError) Error() string {
	return fmt.Sprintf("external repository %s: %v", e.Path, e.Err)
}

func (e *ExternalRepoNotFoundError) Unwrap() error { return e.Err }

// ExternalRepoLink is a read-only view of one linked external repository.
type ExternalRepoLink struct {
	// RelPath is the repository's path relative to the external/ directory.
	RelPath string
	// Dir is the resolved absolute directory.
	Dir string
}

// NewExternalRepoLink resolves rel under the project's external storage.
func NewExternalRepoLink(root, rel string) *ExternalRepoLink {
	return &ExternalRepoLink{
		RelPath: rel,
		Dir:     filepath.Join(ExternalDir(root), filepath.FromSlash(rel)),
	}
}

// PackageName reads the linked repository's declared package name.
func (l *ExternalRepoLink) PackageName() (string, error) {
	data, err := os.ReadFile(filepath.Join(l.Dir, "package.json"))
	if err != nil {
		return "", &ExternalRepoNotFoundError{Path: l.RelPath, Err: err}
	}

	var pkg struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", &ExternalRepoNotFoundError{Path: l.RelPath, Err: err}
	}
	if pkg.Name == "" {
		return "", &ExternalRepoNotFoundError{Path: l.RelPath, Err: fmt.Errorf("package.json has no name")}
	}
	return pkg.Name, nil
}

// ModuleNames lists the module directory names the repository exposes,
// sorted lexicographically for determinism.
func (l *ExternalRepoLink) ModuleNames() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.Dir, modulesDirName))
	if err != nil {
		return nil, &ExternalRepoNotFoundError{Path: l.RelPath, Err: err}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
