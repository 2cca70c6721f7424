// Package llm generates an optional prose triage of a finished dead-link
// report. The summary is advisory output only: it never affects records,
// counts, or exit status.
package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/avsol/linkrot/internal/model"
)

// Provider is a text-completion backend
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete generates a completion for the prompt
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Summarizer turns a verification run into a short triage note
type Summarizer struct {
	provider  Provider
	maxTokens int
}

// NewSummarizer creates a summarizer for the configured provider
func NewSummarizer(cfg model.LLMConfig) (*Summarizer, error) {
	var provider Provider
	var err error

	switch cfg.Provider {
	case "openai":
		provider, err = NewOpenAIProvider(cfg)
	case "ollama":
		provider, err = NewOllamaProvider(cfg)
	case "":
		return nil, fmt.Errorf("no LLM provider configured")
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 800
	}

	return &Summarizer{provider: provider, maxTokens: maxTokens}, nil
}

// Summarize generates the triage text for a finished run
func (s *Summarizer) Summarize(ctx context.Context, stats model.CheckStats, records []model.VerificationRecord) (string, error) {
	prompt := BuildPrompt(stats, records)
	text, err := s.provider.Complete(ctx, prompt, s.maxTokens)
	if err != nil {
		return "", fmt.Errorf("%s summary: %w", s.provider.Name(), err)
	}
	return strings.TrimSpace(text), nil
}

// BuildPrompt constructs the triage prompt. Failures are grouped by reason
// so the model talks about systemic causes, and the link list is capped to
// keep the prompt bounded on large reports.
func BuildPrompt(stats model.CheckStats, records []model.VerificationRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are triaging a dead-link report for a website maintainer.

The checker processed %d files and %d links, probed %d external URLs, and found %d dead or invalid links.

Failures grouped by reason:
`, stats.FilesProcessed, stats.LinksChecked, stats.ExternalProbed, stats.DeadLinks)

	byReason := make(map[string][]model.VerificationRecord)
	for _, rec := range records {
		byReason[rec.Reason] = append(byReason[rec.Reason], rec)
	}

	reasons := make([]string, 0, len(byReason))
	for reason := range byReason {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	for _, reason := range reasons {
		group := byReason[reason]
		fmt.Fprintf(&b, "\n%s (%d):\n", reason, len(group))
		for i, rec := range group {
			if i >= 10 {
				fmt.Fprintf(&b, "  ... and %d more\n", len(group)-10)
				break
			}
			fmt.Fprintf(&b, "  - %s (in %s)\n", rec.Link, rec.SourceFile)
		}
	}

	b.WriteString(`
Write a short triage note (4-6 sentences): which failures look systemic
(one broken host, an edge-protection block, a moved directory) versus
individually dead pages, and which group the maintainer should fix first.
Mention only links listed above. Do not speculate about content.`)

	return b.String()
}
