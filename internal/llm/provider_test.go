package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/avsol/linkrot/internal/model"
)

type stubProvider struct {
	reply string
	err   error
	got   string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, prompt string, _ int) (string, error) {
	s.got = prompt
	return s.reply, s.err
}

func sampleRecords() []model.VerificationRecord {
	return []model.VerificationRecord{
		{SourceFile: "a.html", Link: "https://gone.example/x", Reason: "HTTP 404"},
		{SourceFile: "b.html", Link: "https://gone.example/y", Reason: "HTTP 404"},
		{SourceFile: "a.html", Link: "img/logo.png", Reason: "File not found"},
	}
}

func TestBuildPrompt_GroupsByReason(t *testing.T) {
	stats := model.CheckStats{FilesProcessed: 2, LinksChecked: 10, ExternalProbed: 5, DeadLinks: 3}
	prompt := BuildPrompt(stats, sampleRecords())

	if !strings.Contains(prompt, "processed 2 files and 10 links") {
		t.Errorf("stats missing from prompt:\n%s", prompt)
	}
	if !strings.Contains(prompt, "HTTP 404 (2):") {
		t.Errorf("404 group missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, "File not found (1):") {
		t.Errorf("local group missing:\n%s", prompt)
	}
	if !strings.Contains(prompt, "https://gone.example/x (in a.html)") {
		t.Errorf("link attribution missing:\n%s", prompt)
	}

	// Groups are emitted in sorted reason order.
	if strings.Index(prompt, "File not found") > strings.Index(prompt, "HTTP 404") {
		t.Error("reason groups not sorted")
	}
}

func TestBuildPrompt_CapsLargeGroups(t *testing.T) {
	var records []model.VerificationRecord
	for i := 0; i < 25; i++ {
		records = append(records, model.VerificationRecord{
			SourceFile: "a.html",
			Link:       fmt.Sprintf("https://dead.example/p%d", i),
			Reason:     "HTTP 404",
		})
	}

	prompt := BuildPrompt(model.CheckStats{DeadLinks: 25}, records)

	if !strings.Contains(prompt, "... and 15 more") {
		t.Errorf("cap marker missing:\n%s", prompt)
	}
	if strings.Contains(prompt, "p11") {
		t.Error("links beyond the cap leaked into the prompt")
	}
}

func TestSummarizer_UsesProvider(t *testing.T) {
	stub := &stubProvider{reply: "  All four failures share one host.  \n"}
	s := &Summarizer{provider: stub, maxTokens: 100}

	text, err := s.Summarize(context.Background(), model.CheckStats{DeadLinks: 4}, sampleRecords())
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if text != "All four failures share one host." {
		t.Errorf("summary not trimmed: %q", text)
	}
	if !strings.Contains(stub.got, "triaging a dead-link report") {
		t.Errorf("provider got unexpected prompt:\n%s", stub.got)
	}
}

func TestSummarizer_ProviderError(t *testing.T) {
	stub := &stubProvider{err: errors.New("quota exceeded")}
	s := &Summarizer{provider: stub, maxTokens: 100}

	_, err := s.Summarize(context.Background(), model.CheckStats{}, nil)
	if err == nil {
		t.Fatal("expected provider error")
	}
	if !strings.Contains(err.Error(), "stub summary") {
		t.Errorf("error = %v, want provider name context", err)
	}
}

func TestNewSummarizer_ProviderSelection(t *testing.T) {
	if _, err := NewSummarizer(model.LLMConfig{}); err == nil {
		t.Error("empty provider must be rejected")
	}
	if _, err := NewSummarizer(model.LLMConfig{Provider: "carrier-pigeon"}); err == nil {
		t.Error("unknown provider must be rejected")
	}
	if _, err := NewSummarizer(model.LLMConfig{Provider: "openai"}); err == nil {
		t.Error("openai without an API key must be rejected")
	}

	s, err := NewSummarizer(model.LLMConfig{Provider: "ollama"})
	if err != nil {
		t.Fatalf("ollama needs no key: %v", err)
	}
	if s.maxTokens != 800 {
		t.Errorf("maxTokens default = %d, want 800", s.maxTokens)
	}
}
