// ABOUTME: Git-backed store for external repositories linked under external/
// ABOUTME: Wraps git clone/pull via os/exec and scans for checked-out repos

package extrepo

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Repo describes one linked repository checkout.
type Repo struct {
	// RelPath is the checkout path relative to the store root.
	RelPath string
	// Ref is the short HEAD commit, or "unknown" when unreadable.
	Ref string
}

// Store manages git checkouts under a project's external/ directory.
type Store struct {
	Root string
}

// Link clones url into the store under rel. When rel is empty the
// repository's base name is used.
func (s *Store) Link(ctx context.Context, url, rel string) (string, error) {
	if rel == "" {
		rel = repoBaseName(url)
	}
	target := filepath.Join(s.Root, filepath.FromSlash(rel))

	if _, err := os.Stat(target); err == nil {
		return "", fmt.Errorf("external path %s already exists", rel)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("creating external directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, "git", "clone", url, target)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git clone %s: %w", url, err)
	}
	return rel, nil
}

// Update runs git pull in an existing checkout.
func (s *Store) Update(ctx context.Context, rel string) error {
	target := filepath.Join(s.Root, filepath.FromSlash(rel))

	cmd := exec.CommandContext(ctx, "git", "-C", target, "pull")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git pull %s: %w", rel, err)
	}
	return nil
}

// List scans the store for directories containing a .git folder, sorted by
// relative path.
func (s *Store) List() ([]Repo, error) {
	entries, err := os.ReadDir(s.Root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Root, err)
	}

	var repos []Repo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(s.Root, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
			continue
		}
		repos = append(repos, Repo{
			RelPath: entry.Name(),
			Ref:     headRef(context.Background(), dir),
		})
	}

	sort.Slice(repos, func(i, j int) bool { return repos[i].RelPath < repos[j].RelPath })
	return repos, nil
}

// headRef returns the short HEAD commit hash for a checkout.
func headRef(ctx context.Context, dir string) string {
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "--short", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

// repoBaseName extracts a checkout name from a git URL.
func repoBaseName(url string) string {
	name := strings.TrimSuffix(url, ".git")
	if idx := strings.LastIndex(name, ":"); strings.HasPrefix(name, "git@") && idx > 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	return name
}
