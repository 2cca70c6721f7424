// Package extract pulls candidate link strings out of HTML documents and
// builds the link inventory consumed by the verification engine.
package extract

import (
	"regexp"
	"sync"
)

// Attribute patterns are deliberately regex-level rather than a full HTML
// parse: malformed and partial tags still yield their href/src values.
var (
	hrefPattern = regexp.MustCompile(`(?i)href=["'](.*?)["']`)
	srcPattern  = regexp.MustCompile(`(?i)src=["'](.*?)["']`)
)

// Links returns the ordered, deduplicated href and src attribute values
// found in content. Duplicate raw strings within one document are
// suppressed; order of first appearance is preserved. href values come
// before src values, matching the two-pass scan.
func Links(content string) []string {
	var raw []string
	for _, m := range hrefPattern.FindAllStringSubmatch(content, -1) {
		raw = append(raw, m[1])
	}
	for _, m := range srcPattern.FindAllStringSubmatch(content, -1) {
		raw = append(raw, m[1])
	}

	seen := make(map[string]bool, len(raw))
	links := make([]string, 0, len(raw))
	for _, link := range raw {
		if seen[link] {
			continue
		}
		seen[link] = true
		links = append(links, link)
	}

	return links
}

// SeenRegistry tracks link destinations across documents so a link already
// inventoried from an earlier document can be marked repeated instead of
// being verified again. Safe for concurrent use.
type SeenRegistry struct {
	mu   sync.Mutex
	seen map[string]bool
}

// NewSeenRegistry creates an empty registry
func NewSeenRegistry() *SeenRegistry {
	return &SeenRegistry{seen: make(map[string]bool)}
}

// MarkNew records link and reports whether this is its first appearance
func (r *SeenRegistry) MarkNew(link string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.seen[link] {
		return false
	}
	r.seen[link] = true
	return true
}

// Len returns the number of distinct links recorded
func (r *SeenRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}
