// ABOUTME: Standard filesystem paths inside a monoforge project root
// ABOUTME: Resolves config, tsconfig, workspace metadata, modules/ and external/

package project

import "path/filepath"

const (
	configFileName    = "monoforge.yaml"
	workspaceFileName = "lerna.json"
	modulesDirName    = "modules"
	externalDirName   = "external"
)

// ConfigFile returns the declarative configuration document path.
func ConfigFile(root string) string {
	return filepath.Join(root, configFileName)
}

// TSConfigFile returns the compiler path-mapping file path.
func TSConfigFile(root string) string {
	return filepath.Join(root, "tsconfig.json")
}

// WorkspaceFile returns the workspace metadata path.
func WorkspaceFile(root string) string {
	return filepath.Join(root, workspaceFileName)
}

// ModulesDir returns the directory holding the project's own modules.
func ModulesDir(root string) string {
	return filepath.Join(root, modulesDirName)
}

// ExternalDir returns the storage directory for linked external repositories.
func ExternalDir(root string) string {
	return filepath.Join(root, externalDirName)
}
