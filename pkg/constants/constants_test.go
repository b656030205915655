//go:build !integration

package constants

import "testing"

func TestManifestFileNames(t *testing.T) {
	if RootManifestFile == "" || SiteOverrideFile == "" || CommitPinFile == "" {
		t.Error("manifest file name constants must not be empty")
	}
	if RootManifestFile == SiteOverrideFile || RootManifestFile == CommitPinFile {
		t.Error("manifest file names must be distinct")
	}
}

func TestMarkerNamesAreDistinct(t *testing.T) {
	markers := []string{
		MarkerFetched, MarkerCheckedOut, MarkerPatched, MarkerRegenerated,
		MarkerConfigured, MarkerBuilt, MarkerInstalled, MarkerArchived, MarkerMirrored,
	}
	seen := make(map[string]bool, len(markers))
	for _, m := range markers {
		if m == "" {
			t.Fatal("marker name must not be empty")
		}
		if seen[m] {
			t.Fatalf("duplicate marker name %q", m)
		}
		seen[m] = true
	}
}

func TestEnvVarNamesFollowXbstrapConvention(t *testing.T) {
	prefixed := []string{EnvSourceRoot, EnvBuildRoot, EnvSysrootDir}
	for _, v := range prefixed {
		if len(v) < len("XBSTRAP_") || v[:len("XBSTRAP_")] != "XBSTRAP_" {
			t.Errorf("expected %q to carry the XBSTRAP_ prefix", v)
		}
	}
}
