package plan

import (
	"strings"

	"github.com/crossforge/crossforge/pkg/graph"
)

// Key identifies one schedulable unit: an action against a subject, plus an
// optional sysroot isolation tag. Two items with the same Key are the same
// plan entry; TargetSysrootID distinguishes INSTALL_PKG/CONFIGURE_PKG/
// BUILD_PKG instances running against different isolated sysroots (spec
// §4.4's "Sysroot isolation").
type Key struct {
	Action          Action
	Subject         graph.SubjectID
	TargetSysrootID string
}

// String renders a Key for error messages and cycle reports.
func (k Key) String() string {
	if k.TargetSysrootID == "" {
		return string(k.Action) + " " + k.Subject.String()
	}
	return string(k.Action) + " " + k.Subject.String() + "[" + k.TargetSysrootID + "]"
}

// SortKey is the deterministic ordering tuple from spec §4.4.2:
// (action-priority, subject-id-key, action-value, sysroot-tuple).
func (k Key) SortKey() string {
	var b strings.Builder
	b.WriteByte(byte(k.Action.Priority()))
	b.WriteByte(0)
	b.WriteString(k.Subject.OrderingKey())
	b.WriteByte(0)
	b.WriteString(string(k.Action))
	b.WriteByte(0)
	b.WriteString(k.TargetSysrootID)
	return b.String()
}

// SysrootID computes the target_sysroot_id for an isolated INSTALL_PKG/
// CONFIGURE_PKG/BUILD_PKG: the sorted, deduplicated tuple of package
// dependency names, joined. The empty string means "shared sysroot, no
// isolation".
func SysrootID(pkgDeps []string) string {
	if len(pkgDeps) == 0 {
		return ""
	}
	sorted := append([]string(nil), pkgDeps...)
	dedup := make([]string, 0, len(sorted))
	seen := make(map[string]bool, len(sorted))
	for _, d := range sortStrings(sorted) {
		if !seen[d] {
			seen[d] = true
			dedup = append(dedup, d)
		}
	}
	return strings.Join(dedup, ",")
}

func sortStrings(s []string) []string {
	// insertion sort: dependency lists are small, and this keeps the
	// package free of an extra "sort" import for a handful of entries.
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
	return s
}
