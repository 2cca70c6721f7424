package verify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/avsol/linkrot/internal/manifest"
	"github.com/avsol/linkrot/internal/model"
)

// stubProber answers from a fixed table; unknown URLs succeed.
type stubProber struct {
	mu       sync.Mutex
	outcomes map[string]model.ProbeOutcome
	calls    []string
}

func (s *stubProber) Check(_ context.Context, rawURL string) model.ProbeOutcome {
	s.mu.Lock()
	s.calls = append(s.calls, rawURL)
	s.mu.Unlock()
	if out, ok := s.outcomes[rawURL]; ok {
		return out
	}
	return model.ProbeOutcome{OK: true, StatusCode: 200, Reason: "OK"}
}

type memorySink struct {
	mu      sync.Mutex
	records []model.VerificationRecord
}

func (m *memorySink) Write(rec model.VerificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memorySink) all() []model.VerificationRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.VerificationRecord, len(m.records))
	copy(out, m.records)
	return out
}

func testConfig(workers int) *model.Config {
	cfg := model.DefaultConfig()
	cfg.Concurrency.Workers = workers
	cfg.RateLimit.RequestsPerSecond = 10000
	cfg.RateLimit.Burst = 10000
	return cfg
}

func newTestEngine(root string, workers int, prober Prober, sink Sink) *Engine {
	e := New(testConfig(workers), root, sink, nil)
	e.prober = prober
	return e
}

func TestEngine_MixedLinks(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m := &manifest.Manifest{Files: []manifest.FileEntry{{
		Path:  "index.html",
		Links: []string{"#top", "mailto:a@b.com", "missing.png", "https://example.invalid/404"},
	}}}

	prober := &stubProber{outcomes: map[string]model.ProbeOutcome{
		"https://example.invalid/404": {StatusCode: 404, Reason: "HTTP 404", Detail: "Page not found - The requested resource does not exist on this server"},
	}}
	sink := &memorySink{}

	stats, err := newTestEngine(root, 4, prober, sink).Run(context.Background(), m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.LinksChecked != 4 {
		t.Errorf("LinksChecked = %d, want 4", stats.LinksChecked)
	}
	if stats.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", stats.Skipped)
	}
	if stats.ExternalProbed != 1 {
		t.Errorf("ExternalProbed = %d, want 1", stats.ExternalProbed)
	}
	if stats.DeadLinks != 2 {
		t.Errorf("DeadLinks = %d, want 2", stats.DeadLinks)
	}

	recs := sink.all()
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2: %+v", len(recs), recs)
	}

	byLink := map[string]model.VerificationRecord{}
	for _, r := range recs {
		byLink[r.Link] = r
	}

	local, ok := byLink["missing.png"]
	if !ok {
		t.Fatal("no record for missing.png")
	}
	if local.Reason != "File not found" || local.SourceFile != "index.html" {
		t.Errorf("local record wrong: %+v", local)
	}

	ext, ok := byLink["https://example.invalid/404"]
	if !ok {
		t.Fatal("no record for the external link")
	}
	if ext.Reason != "HTTP 404" {
		t.Errorf("external reason = %q, want HTTP 404", ext.Reason)
	}
	if ext.ResolvedPath != ext.Link {
		t.Errorf("external resolved path = %q, want the link itself", ext.ResolvedPath)
	}
}

func TestEngine_PassingRunWritesNothing(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.html"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "b.css"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m := &manifest.Manifest{Files: []manifest.FileEntry{{
		Path:  "a.html",
		Links: []string{"b.css", "https://ok.example/"},
	}}}

	sink := &memorySink{}
	stats, err := newTestEngine(root, 2, &stubProber{}, sink).Run(context.Background(), m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.DeadLinks != 0 {
		t.Errorf("DeadLinks = %d, want 0", stats.DeadLinks)
	}
	if len(sink.all()) != 0 {
		t.Errorf("records written for a clean run: %+v", sink.all())
	}
}

// The failure set must not depend on the pool width.
func TestEngine_FailureSetIndependentOfWorkers(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	const n = 40
	var links []string
	outcomes := map[string]model.ProbeOutcome{}
	for i := 0; i < n; i++ {
		u := fmt.Sprintf("https://host%d.example/p", i)
		links = append(links, u)
		if i%3 == 0 {
			outcomes[u] = model.ProbeOutcome{StatusCode: 404, Reason: "HTTP 404"}
		}
	}
	m := &manifest.Manifest{Files: []manifest.FileEntry{{Path: "index.html", Links: links}}}

	failures := func(workers int) []string {
		sink := &memorySink{}
		prober := &stubProber{outcomes: outcomes}
		stats, err := newTestEngine(root, workers, prober, sink).Run(context.Background(), m)
		if err != nil {
			t.Fatalf("Run(workers=%d): %v", workers, err)
		}
		if stats.ExternalProbed != n {
			t.Fatalf("workers=%d: probed %d, want %d", workers, stats.ExternalProbed, n)
		}
		var out []string
		for _, r := range sink.all() {
			out = append(out, r.Link)
		}
		sort.Strings(out)
		return out
	}

	serial := failures(1)
	wide := failures(n)

	if len(serial) != len(wide) {
		t.Fatalf("failure counts differ: %d vs %d", len(serial), len(wide))
	}
	for i := range serial {
		if serial[i] != wide[i] {
			t.Errorf("failure sets diverge at %d: %q vs %q", i, serial[i], wide[i])
		}
	}
}

// A URL referenced from two documents is probed once per occurrence and
// each failure is attributed to its own source document.
func TestEngine_PerOccurrenceProbing(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.html", "b.html"} {
		if err := os.WriteFile(filepath.Join(root, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	const dead = "https://gone.example/x"
	m := &manifest.Manifest{Files: []manifest.FileEntry{
		{Path: "a.html", Links: []string{dead}},
		{Path: "b.html", Links: []string{dead}},
	}}

	prober := &stubProber{outcomes: map[string]model.ProbeOutcome{
		dead: {StatusCode: 404, Reason: "HTTP 404"},
	}}
	sink := &memorySink{}

	stats, err := newTestEngine(root, 2, prober, sink).Run(context.Background(), m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.ExternalProbed != 2 {
		t.Errorf("ExternalProbed = %d, want 2", stats.ExternalProbed)
	}
	if len(prober.calls) != 2 {
		t.Errorf("prober called %d times, want 2", len(prober.calls))
	}

	sources := map[string]bool{}
	for _, r := range sink.all() {
		sources[r.SourceFile] = true
	}
	if !sources["a.html"] || !sources["b.html"] {
		t.Errorf("failures not attributed to both documents: %+v", sink.all())
	}
}

// robotsDenyAll declines every probe.
type robotsDenyAll struct{}

func (robotsDenyAll) Allowed(context.Context, string) bool { return false }

func TestEngine_RobotsSkip(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m := &manifest.Manifest{Files: []manifest.FileEntry{{
		Path:  "index.html",
		Links: []string{"https://blocked.example/"},
	}}}

	prober := &stubProber{outcomes: map[string]model.ProbeOutcome{
		"https://blocked.example/": {StatusCode: 404, Reason: "HTTP 404"},
	}}
	sink := &memorySink{}
	e := newTestEngine(root, 1, prober, sink)
	e.robots = robotsDenyAll{}

	stats, err := e.Run(context.Background(), m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
	if stats.ExternalProbed != 0 {
		t.Errorf("ExternalProbed = %d, want 0", stats.ExternalProbed)
	}
	if len(prober.calls) != 0 {
		t.Errorf("prober should not have been called, got %v", prober.calls)
	}
	if len(sink.all()) != 0 {
		t.Errorf("skipped probe must not produce a record: %+v", sink.all())
	}
}

func TestEngine_EmptyEntriesIgnored(t *testing.T) {
	root := t.TempDir()
	m := &manifest.Manifest{Files: []manifest.FileEntry{{Path: "empty.html"}}}

	sink := &memorySink{}
	stats, err := newTestEngine(root, 1, &stubProber{}, sink).Run(context.Background(), m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.FilesProcessed != 0 {
		t.Errorf("FilesProcessed = %d, want 0", stats.FilesProcessed)
	}
}
