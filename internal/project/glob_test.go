package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandGlobsMatchesMultipleFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.dat", "b.dat", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}
	}

	entries := []FileEntry{{Path: "*.dat", Links: []string{"P"}}}
	out, err := ExpandGlobs(entries, dir)
	if err != nil {
		t.Fatalf("ExpandGlobs: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 expanded entries, got %d: %+v", len(out), out)
	}
	if out[0].Path != "a.dat" || out[1].Path != "b.dat" {
		t.Errorf("paths = %v, want sorted [a.dat b.dat]", []string{out[0].Path, out[1].Path})
	}
	for _, e := range out {
		if len(e.Links) != 1 || e.Links[0] != "P" {
			t.Errorf("expanded entry %q lost its links: %+v", e.Path, e)
		}
	}
}

func TestExpandGlobsPassesThroughLiteralPaths(t *testing.T) {
	entries := []FileEntry{{Path: "cave.dat"}}
	out, err := ExpandGlobs(entries, t.TempDir())
	if err != nil {
		t.Fatalf("ExpandGlobs: %v", err)
	}
	if len(out) != 1 || out[0].Path != "cave.dat" {
		t.Fatalf("expected literal path to pass through unchanged, got %+v", out)
	}
}

func TestHasGlobMeta(t *testing.T) {
	cases := map[string]bool{
		"cave.dat":  false,
		"*.dat":     true,
		"sub/?.dat": true,
		"a[bc].dat": true,
	}
	for path, want := range cases {
		if got := hasGlobMeta(path); got != want {
			t.Errorf("hasGlobMeta(%q) = %v, want %v", path, got, want)
		}
	}
}
