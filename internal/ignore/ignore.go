// Package ignore decides whether an intercepted call should bypass
// substitution and fall through to the real constructor.
//
// Matching is by string prefix against each frame's package path, checked
// across the entire caller chain rather than only the immediate caller. That
// way application code calling into a library which itself constructs UUIDs
// is exempted whenever the library's package prefix appears anywhere in the
// chain, regardless of indirection depth.
package ignore

import (
	"strings"

	"github.com/uuidfreeze/uuidfreeze/internal/origin"
)

// Overrides carries the scope-level adjustments to the session ignore list.
//
// Prefixes are unioned with the session defaults. DisableDefaults drops the
// session defaults for the lifetime of the scope that carries the override;
// it never mutates the session list itself.
type Overrides struct {
	Prefixes        []string
	DisableDefaults bool
}

// Effective combines session defaults with scope overrides.
//
// Defaults come first so that list order is stable for diagnostics. The
// returned slice is freshly allocated; callers may retain it.
func Effective(defaults []string, ov Overrides) []string {
	var combined []string
	if !ov.DisableDefaults {
		combined = append(combined, defaults...)
	}
	combined = append(combined, ov.Prefixes...)
	return combined
}

// Match reports whether any frame in the chain originates from a package
// matching any of the prefixes.
//
// An empty prefix list never matches. Frames without a package path (symbol
// information unavailable) are skipped.
func Match(chain []origin.Frame, prefixes []string) bool {
	if len(prefixes) == 0 {
		return false
	}
	for _, fr := range chain {
		if fr.Module == "" {
			continue
		}
		for _, prefix := range prefixes {
			if prefix == "" {
				continue
			}
			if strings.HasPrefix(fr.Module, prefix) {
				return true
			}
		}
	}
	return false
}
