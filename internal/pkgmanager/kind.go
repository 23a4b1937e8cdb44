// ABOUTME: Package manager kinds: npm and yarn variants
// ABOUTME: Closed enum selected once per project session via flag or lockfile detection

package pkgmanager

import "fmt"

// Kind identifies which package manager drives a project.
type Kind int

const (
	KindNPM Kind = iota
	KindYarn
)

// String returns the human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindNPM:
		return "npm"
	case KindYarn:
		return "yarn"
	default:
		return "unknown"
	}
}

// ParseKind converts a manager name back to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "npm":
		return KindNPM, nil
	case "yarn":
		return KindYarn, nil
	default:
		return 0, fmt.Errorf("unknown package manager %q", s)
	}
}
