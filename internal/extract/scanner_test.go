package extract

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestScanner_WalksAndSorts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "zeta.html"), `<a href="a.html">x</a>`)
	writeFile(t, filepath.Join(root, "sub", "alpha.html"), `<img src="b.png">`)
	writeFile(t, filepath.Join(root, "notes.txt"), "no extraction here")

	m, err := NewScanner().Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	var paths []string
	for _, f := range m.Files {
		paths = append(paths, f.Path)
	}
	want := []string{"notes.txt", "sub/alpha.html", "zeta.html"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}

	byPath := make(map[string][]string)
	for _, f := range m.Files {
		byPath[f.Path] = f.Links
	}
	if got := byPath["zeta.html"]; !reflect.DeepEqual(got, []string{"a.html"}) {
		t.Errorf("zeta.html links = %v", got)
	}
	if got := byPath["sub/alpha.html"]; !reflect.DeepEqual(got, []string{"b.png"}) {
		t.Errorf("sub/alpha.html links = %v", got)
	}
	if got := byPath["notes.txt"]; len(got) != 0 {
		t.Errorf("notes.txt should have no links, got %v", got)
	}
}

func TestScanner_SkipsHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".git", "page.html"), `<a href="x.html">x</a>`)
	writeFile(t, filepath.Join(root, ".hidden.html"), `<a href="y.html">y</a>`)
	writeFile(t, filepath.Join(root, "index.html"), `<a href="z.html">z</a>`)

	m, err := NewScanner().Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	if len(m.Files) != 1 || m.Files[0].Path != "index.html" {
		t.Errorf("expected only index.html, got %+v", m.Files)
	}
}

func TestScanner_GlobalDedup(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.html"), `<a href="https://example.com/">x</a><a href="only-a.html">y</a>`)
	writeFile(t, filepath.Join(root, "b.html"), `<a href="https://example.com/">x</a><a href="only-b.html">y</a>`)

	scanner := NewScanner()
	scanner.Registry = NewSeenRegistry()

	m, err := scanner.Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	byPath := make(map[string]struct {
		links    []string
		repeated []string
		total    int
	})
	for _, f := range m.Files {
		byPath[f.Path] = struct {
			links    []string
			repeated []string
			total    int
		}{f.Links, f.RepeatedLinks, f.TotalLinksInFile}
	}

	a := byPath["a.html"]
	if !reflect.DeepEqual(a.links, []string{"https://example.com/", "only-a.html"}) {
		t.Errorf("a.html links = %v", a.links)
	}
	if len(a.repeated) != 0 {
		t.Errorf("a.html repeated = %v, want none", a.repeated)
	}

	b := byPath["b.html"]
	if !reflect.DeepEqual(b.links, []string{"only-b.html"}) {
		t.Errorf("b.html links = %v", b.links)
	}
	if !reflect.DeepEqual(b.repeated, []string{"https://example.com/"}) {
		t.Errorf("b.html repeated = %v", b.repeated)
	}
	if b.total != 2 {
		t.Errorf("b.html total = %d, want 2", b.total)
	}
}

func TestScanner_ReadFailureContinues(t *testing.T) {
	root := t.TempDir()
	// A directory with an .html name cannot be read as a file; the scan
	// must keep going and the entry-less dir contributes nothing.
	if err := os.MkdirAll(filepath.Join(root, "broken.html", "inner"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFile(t, filepath.Join(root, "ok.html"), `<a href="x.html">x</a>`)

	m, err := NewScanner().Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	for _, f := range m.Files {
		if f.Path == "ok.html" && len(f.Links) == 1 {
			return
		}
	}
	t.Errorf("ok.html not scanned, files: %+v", m.Files)
}
