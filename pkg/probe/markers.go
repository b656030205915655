package probe

import (
	"os"
	"path/filepath"
	"time"

	"github.com/crossforge/crossforge/pkg/constants"
)

// checkMarker reports whether dir/marker exists and, if so, its mtime.
func checkMarker(dir, marker string) (bool, time.Time, error) {
	info, err := os.Stat(filepath.Join(dir, marker))
	if err != nil {
		if os.IsNotExist(err) {
			return false, time.Time{}, nil
		}
		return false, time.Time{}, err
	}
	return true, info.ModTime(), nil
}

// WriteMarker creates dir/marker atomically (temp file + rename), so a
// reader never observes a marker file mid-write. Action handlers call this
// on success; probe's monotonicity guarantee (spec §8.4/§9) depends on it.
func WriteMarker(dir, marker string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".marker-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, filepath.Join(dir, marker))
}

// markerResult turns a marker's existence/mtime into a probe Result: absent
// markers are reported missing with no timestamp; present ones carry their
// mtime for outdatedness comparisons.
func markerResult(dir, marker string) (Result, error) {
	exists, mtime, err := checkMarker(dir, marker)
	if err != nil {
		return Result{}, err
	}
	if !exists {
		return Result{Missing: true}, nil
	}
	return Result{Missing: false, Timestamp: mtime, HasTimestamp: true}, nil
}

const (
	fetchedMarker     = constants.MarkerFetched
	checkedOutMarker  = constants.MarkerCheckedOut
	patchedMarker     = constants.MarkerPatched
	regeneratedMarker = constants.MarkerRegenerated
	configuredMarker  = constants.MarkerConfigured
	builtMarker       = constants.MarkerBuilt
	installedMarker   = constants.MarkerInstalled
	archivedMarker    = constants.MarkerArchived
)
