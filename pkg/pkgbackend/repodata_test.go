package pkgbackend

import "testing"

func TestParseRepodataListing(t *testing.T) {
	listing := "[*] libfoo-1.2.3_1 a foo library\n[-] bar-0.9_2 not installed\n\n"
	rd := parseRepodataListing(listing)

	foo, ok := rd.Entries["libfoo"]
	if !ok {
		t.Fatal("expected libfoo entry")
	}
	if foo.Version != "1.2.3_1" {
		t.Fatalf("got version %q", foo.Version)
	}

	bar, ok := rd.Entries["bar"]
	if !ok {
		t.Fatal("expected bar entry")
	}
	if bar.PkgVer != "bar-0.9_2" {
		t.Fatalf("got pkgver %q", bar.PkgVer)
	}
}

func TestParseRepodataListingSkipsBlankLines(t *testing.T) {
	rd := parseRepodataListing("\n\n  \n")
	if len(rd.Entries) != 0 {
		t.Fatalf("expected no entries, got %v", rd.Entries)
	}
}
