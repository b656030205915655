package action

import (
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// sysrootAllocator maps a plan.Key's TargetSysrootID (the sorted,
// deduplicated tuple of a requester's package dependencies, or "" for the
// shared sysroot) to a stable temporary directory for the lifetime of one
// plan run. Distinct ids get distinct directories so isolated
// CONFIGURE_PKG/BUILD_PKG/INSTALL_PKG instances never see each other's
// installed files (spec §4.4's sysroot isolation).
type sysrootAllocator struct {
	root string

	mu   sync.Mutex
	dirs map[string]string
}

func newSysrootAllocator(buildRoot string) *sysrootAllocator {
	return &sysrootAllocator{
		root: filepath.Join(buildRoot, "isolated-sysroots"),
		dirs: make(map[string]string),
	}
}

// Dir returns shared when id is empty (no isolation requested), else the
// id's allocated directory, creating one on first use.
func (a *sysrootAllocator) Dir(id, shared string) string {
	if id == "" {
		return shared
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if dir, ok := a.dirs[id]; ok {
		return dir
	}
	dir := filepath.Join(a.root, uuid.NewString())
	a.dirs[id] = dir
	return dir
}
