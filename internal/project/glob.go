package project

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExpandGlobs expands any file-entry path containing glob metacharacters
// into one entry per matching file under root, letting a project include a
// whole folder of survey files with a single `#pattern;` record. Entries
// with no glob metacharacters pass through unchanged. Every expanded entry
// inherits the original entry's links, fixed stations, and folder nesting.
func ExpandGlobs(files []FileEntry, root string) ([]FileEntry, error) {
	out := make([]FileEntry, 0, len(files))
	for _, f := range files {
		if !hasGlobMeta(f.Path) {
			out = append(out, f)
			continue
		}

		matches, err := doublestar.FilepathGlob(filepath.Join(root, f.Path))
		if err != nil {
			return nil, fmt.Errorf("expanding glob %q: %w", f.Path, err)
		}
		sort.Strings(matches)

		for _, m := range matches {
			rel, err := filepath.Rel(root, m)
			if err != nil {
				rel = m
			}
			expanded := f
			expanded.Path = filepath.ToSlash(rel)
			out = append(out, expanded)
		}
	}
	return out, nil
}

func hasGlobMeta(path string) bool {
	return strings.ContainsAny(path, "*?[{")
}
