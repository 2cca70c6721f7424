// Package manifest reads and writes the link inventory exchanged between
// the enumeration and verification steps.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// FileEntry describes one scanned document and the links found in it.
// Repeated* fields are present only when global deduplication marked links
// already seen in an earlier document.
type FileEntry struct {
	Path             string   `json:"path"`
	Links            []string `json:"links"`
	LinkCount        int      `json:"link_count"`
	RepeatedLinks    []string `json:"repeated_links,omitempty"`
	RepeatedCount    int      `json:"repeated_count,omitempty"`
	TotalLinksInFile int      `json:"total_links_in_file,omitempty"`
}

// Manifest is the full inventory, ordered by path
type Manifest struct {
	Files []FileEntry `json:"files"`
}

// Sort orders entries by path for deterministic output
func (m *Manifest) Sort() {
	sort.Slice(m.Files, func(i, j int) bool {
		return m.Files[i].Path < m.Files[j].Path
	})
}

// TotalLinks returns the number of checkable links across all entries
func (m *Manifest) TotalLinks() int {
	total := 0
	for _, f := range m.Files {
		total += len(f.Links)
	}
	return total
}

// Load reads a manifest from disk
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	return &m, nil
}

// Save writes the manifest to disk as indented JSON
func Save(m *Manifest, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}
