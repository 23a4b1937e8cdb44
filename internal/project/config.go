// ABOUTME: ConfigManager owns the declared-module set and its YAML document
// ABOUTME: Membership is map-backed; serialization emits a sorted module list

package project

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ConfigManager tracks which modules the project declares. The set is
// persisted as the project's monoforge.yaml document.
type ConfigManager struct {
	name    string
	modules map[string]struct{}
}

// configDoc is the serialized form of the declared configuration.
type configDoc struct {
	Name    string   `yaml:"name"`
	Modules []string `yaml:"modules"`
}

// NewConfigManager returns a manager for the named project with an empty set.
func NewConfigManager(name string) *ConfigManager {
	c := &ConfigManager{name: name}
	c.Init()
	return c
}

// Init resets to an empty declared-module set.
func (c *ConfigManager) Init() {
	c.modules = make(map[string]struct{})
}

// CheckModule reports whether the fully-qualified name is declared.
func (c *ConfigManager) CheckModule(fullName string) bool {
	_, ok := c.modules[fullName]
	return ok
}

// AddModule declares a module. Adding an already-declared name is a no-op;
// callers that care use CheckModule first.
func (c *ConfigManager) AddModule(fullName string) {
	c.modules[fullName] = struct{}{}
}

// Modules returns the declared names in sorted order.
func (c *ConfigManager) Modules() []string {
	names := make([]string, 0, len(c.modules))
	for name := range c.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Serialize produces the configuration document for the current set.
func (c *ConfigManager) Serialize() ([]byte, error) {
	doc := configDoc{Name: c.name, Modules: c.Modules()}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}

// LoadConfig reconstructs a ConfigManager from a configuration document.
func LoadConfig(path string) (*ConfigManager, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var doc configDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	c := NewConfigManager(doc.Name)
	for _, name := range doc.Modules {
		c.AddModule(name)
	}
	return c, nil
}

// saveConfig writes the document to path atomically.
func (c *ConfigManager) saveConfig(path string) error {
	data, err := c.Serialize()
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing temp config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp config: %w", err)
	}
	return nil
}
