package pkgbackend

import (
	"strconv"
	"strings"

	"github.com/crossforge/crossforge/pkg/xerrors"
)

// component is one comparable unit of a decomposed version string: either
// a plain integer run, a textual modifier ("alpha"/"beta"/"pre"/"rc"/"pl"/
// "."), or a single unrecognized letter expanded to (0, idx+1).
type component struct {
	Major int
	Minor int
}

var modifierValues = map[string]int{
	"alpha": -3,
	"beta":  -2,
	"pre":   -1,
	"rc":    -1,
	"pl":    0,
}

// Version is a decomposed xbps-style version string: ordered components
// plus a revision suffix compared lexicographically after them.
type Version struct {
	Components []component
	Revision   string
}

// ParseVersion decomposes a raw "<version>[_<revision>]" string per spec §6:
// integer runs become numeric components, the textual modifiers alpha/
// beta/pre/rc/pl and "." become fixed-value components, and any other
// single letter expands to (0, idx+1) in the alphabet.
func ParseVersion(raw string) (Version, error) {
	version := raw
	revision := ""
	if idx := strings.LastIndexByte(raw, '_'); idx >= 0 {
		version, revision = raw[:idx], raw[idx+1:]
	}

	var comps []component
	i := 0
	for i < len(version) {
		c := version[i]
		switch {
		case c >= '0' && c <= '9':
			j := i
			for j < len(version) && version[j] >= '0' && version[j] <= '9' {
				j++
			}
			n, err := strconv.Atoi(version[i:j])
			if err != nil {
				return Version{}, xerrors.NewConfigError("version %q has an unparseable numeric run: %v", raw, err)
			}
			comps = append(comps, component{Major: n})
			i = j
		default:
			j := i
			for j < len(version) && !(version[j] >= '0' && version[j] <= '9') {
				j++
			}
			comps = append(comps, decomposeRun(version[i:j])...)
			i = j
		}
	}

	return Version{Components: comps, Revision: revision}, nil
}

// decomposeRun turns one maximal non-digit run into components: a
// recognized modifier keyword becomes one component, "." becomes a
// zero-value component, and every other letter expands individually.
func decomposeRun(run string) []component {
	lower := strings.ToLower(run)
	if v, ok := modifierValues[lower]; ok {
		return []component{{Major: v}}
	}

	comps := make([]component, 0, len(run))
	for _, r := range run {
		switch {
		case r == '.':
			comps = append(comps, component{})
		case r >= 'a' && r <= 'z':
			comps = append(comps, component{Minor: int(r-'a') + 1})
		case r >= 'A' && r <= 'Z':
			comps = append(comps, component{Minor: int(r-'A') + 1})
		default:
			comps = append(comps, component{})
		}
	}
	return comps
}

// StripPkgName removes a leading "<pkgname>-" segment from a repodata
// pkgver string, when present.
func StripPkgName(pkgver, pkgname string) string {
	prefix := pkgname + "-"
	return strings.TrimPrefix(pkgver, prefix)
}

// CompareVersions parses both raw version strings and returns -1, 0, or 1
// the way strings.Compare does.
func CompareVersions(a, b string) (int, error) {
	va, err := ParseVersion(a)
	if err != nil {
		return 0, err
	}
	vb, err := ParseVersion(b)
	if err != nil {
		return 0, err
	}
	return CompareParsed(va, vb), nil
}

// CompareParsed compares two decomposed versions component-wise (missing
// trailing components are treated as zero-valued), then falls back to a
// lexicographic string comparison of the revisions.
func CompareParsed(a, b Version) int {
	n := len(a.Components)
	if len(b.Components) > n {
		n = len(b.Components)
	}
	for i := 0; i < n; i++ {
		ca, cb := componentAt(a, i), componentAt(b, i)
		if ca.Major != cb.Major {
			return sign(ca.Major - cb.Major)
		}
		if ca.Minor != cb.Minor {
			return sign(ca.Minor - cb.Minor)
		}
	}
	return strings.Compare(a.Revision, b.Revision)
}

func componentAt(v Version, i int) component {
	if i < len(v.Components) {
		return v.Components[i]
	}
	return component{}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
