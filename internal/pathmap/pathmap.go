// ABOUTME: tsconfig.json path-mapping config: seed, load, merge, atomic save
// ABOUTME: The paths map grows monotonically; merge never drops existing keys

package pathmap

import (
	"encoding/json"
	"fmt"
	"os"
)

const FileName = "tsconfig.json"

// CompilerOptions holds the subset of tsconfig compiler options the
// orchestrator generates.
type CompilerOptions struct {
	Target           string              `json:"target"`
	Module           string              `json:"module"`
	ModuleResolution string              `json:"moduleResolution"`
	BaseURL          string              `json:"baseUrl"`
	Strict           bool                `json:"strict"`
	Paths            map[string][]string `json:"paths"`
}

// Config models the generated tsconfig.json.
type Config struct {
	CompilerOptions CompilerOptions `json:"compilerOptions"`
	Include         []string        `json:"include"`
}

// New seeds a config for a project's own scope: modules resolve from the
// modules/ directory, with src and typings entries per module.
func New(scope string) *Config {
	return &Config{
		CompilerOptions: CompilerOptions{
			Target:           "es2019",
			Module:           "commonjs",
			ModuleResolution: "node",
			BaseURL:          "modules",
			Strict:           true,
			Paths: map[string][]string{
				scope + "/*":         {"*/src"},
				scope + "/*/typings": {"*/typings"},
			},
		},
		Include: []string{"modules/*/src", "modules/*/typings"},
	}
}

// Load reads a path-mapping config from path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if c.CompilerOptions.Paths == nil {
		c.CompilerOptions.Paths = map[string][]string{}
	}
	return &c, nil
}

// Save writes the config to path atomically.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling tsconfig: %w", err)
	}
	data = append(data, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp tsconfig: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp tsconfig: %w", err)
	}
	return nil
}

// Merge adds entries to the paths map. Existing keys not named in entries
// are left untouched; a re-specified key is overwritten (last writer wins).
func (c *Config) Merge(entries map[string][]string) {
	if c.CompilerOptions.Paths == nil {
		c.CompilerOptions.Paths = map[string][]string{}
	}
	for key, globs := range entries {
		c.CompilerOptions.Paths[key] = globs
	}
}
