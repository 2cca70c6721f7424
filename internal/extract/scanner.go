package extract

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/avsol/linkrot/internal/manifest"
)

// Scanner walks a document tree and builds the link inventory
type Scanner struct {
	Mode     string        // "regex" or "dom"
	Registry *SeenRegistry // nil disables cross-document dedup
	Progress io.Writer     // advisory per-document output, nil to silence
}

// NewScanner creates a scanner with regex extraction and no global dedup
func NewScanner() *Scanner {
	return &Scanner{Mode: "regex"}
}

// Scan walks root and returns a manifest with one entry per file, sorted
// by path. Hidden directories and files are skipped. Only .htm/.html files
// are extracted from; every other file appears with an empty link list. A
// file that cannot be read contributes zero links and the scan continues.
func (s *Scanner) Scan(root string) (*manifest.Manifest, error) {
	m := &manifest.Manifest{Files: []manifest.FileEntry{}}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.progressf("Error accessing %s: %v\n", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		entry := manifest.FileEntry{Path: rel, Links: []string{}}
		if isHTML(name) {
			entry = s.extractEntry(path, rel)
		}
		m.Files = append(m.Files, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	m.Sort()
	return m, nil
}

// extractEntry reads one HTML document and splits its links into new and
// repeated according to the registry.
func (s *Scanner) extractEntry(path, rel string) manifest.FileEntry {
	entry := manifest.FileEntry{Path: rel, Links: []string{}}

	content, err := os.ReadFile(path)
	if err != nil {
		s.progressf("Error reading %s: %v\n", rel, err)
		return entry
	}

	var links []string
	if s.Mode == "dom" {
		links = DOMLinks(string(content))
	} else {
		links = Links(string(content))
	}

	if s.Registry == nil {
		entry.Links = links
		entry.LinkCount = len(links)
		s.progressf("Scanned %s (%d links)\n", rel, entry.LinkCount)
		return entry
	}

	for _, link := range links {
		if s.Registry.MarkNew(link) {
			entry.Links = append(entry.Links, link)
		} else {
			entry.RepeatedLinks = append(entry.RepeatedLinks, link)
		}
	}
	entry.LinkCount = len(entry.Links)
	entry.RepeatedCount = len(entry.RepeatedLinks)
	entry.TotalLinksInFile = len(links)
	s.progressf("Scanned %s (%d links, %d repeated)\n", rel, entry.LinkCount, entry.RepeatedCount)
	return entry
}

func (s *Scanner) progressf(format string, args ...any) {
	if s.Progress != nil {
		fmt.Fprintf(s.Progress, format, args...)
	}
}

func isHTML(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".htm") || strings.HasSuffix(lower, ".html")
}
