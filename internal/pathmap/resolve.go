// ABOUTME: Resolves scoped module names to filesystem matches via the paths map
// ABOUTME: Substitutes the * wildcard then expands each candidate with doublestar

package pathmap

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Resolve maps a scoped name (e.g. "@proj/server") to the filesystem paths
// its path-mapping entries match, relative to root. Keys are tried
// longest-prefix first, mirroring how tsc picks the most specific pattern.
// Returns nil when no key matches the name.
func (c *Config) Resolve(root, scoped string) ([]string, error) {
	keys := make([]string, 0, len(c.CompilerOptions.Paths))
	for k := range c.CompilerOptions.Paths {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	baseDir := filepath.Join(root, filepath.FromSlash(c.CompilerOptions.BaseURL))

	for _, key := range keys {
		wildcard, ok := matchPattern(key, scoped)
		if !ok {
			continue
		}

		var out []string
		for _, glob := range c.CompilerOptions.Paths[key] {
			candidate := strings.Replace(glob, "*", wildcard, 1)
			// External entries step out of baseUrl with ../, so glob on
			// real paths rather than an fs.FS rooted at baseDir.
			pattern := filepath.Join(baseDir, filepath.FromSlash(candidate))
			matches, err := doublestar.FilepathGlob(pattern)
			if err != nil {
				return nil, fmt.Errorf("globbing %s: %w", candidate, err)
			}
			out = append(out, matches...)
		}
		sort.Strings(out)
		return out, nil
	}

	return nil, nil
}

// matchPattern matches a name against a single-wildcard pattern and returns
// the text captured by the *.
func matchPattern(pattern, name string) (string, bool) {
	star := strings.Index(pattern, "*")
	if star < 0 {
		return "", pattern == name
	}
	prefix, suffix := pattern[:star], pattern[star+1:]
	if len(name) < len(prefix)+len(suffix) {
		return "", false
	}
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return "", false
	}
	return name[len(prefix) : len(name)-len(suffix)], true
}
