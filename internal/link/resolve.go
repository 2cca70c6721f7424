package link

import (
	"path/filepath"
	"strings"
)

// StripFragment removes everything after the first '#' or '?' in a link.
// Mirrors relative-URL resolution: the fragment and query never name a
// different file.
func StripFragment(raw string) string {
	stripped, _, _ := strings.Cut(raw, "#")
	stripped, _, _ = strings.Cut(stripped, "?")
	return stripped
}

// Resolve turns a local link into a canonical path by joining it against
// the directory of the document that referenced it. A link that is empty
// after fragment/query stripping is self-referential and resolves to the
// source document itself. A root-absolute link replaces the source
// directory entirely rather than nesting under it, matching os.path.join
// semantics.
func Resolve(raw, sourcePath string) string {
	stripped := StripFragment(raw)
	if stripped == "" {
		return filepath.Clean(sourcePath)
	}

	target := filepath.FromSlash(stripped)
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(sourcePath), target))
}
