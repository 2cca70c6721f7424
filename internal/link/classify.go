// Package link classifies raw link strings and resolves local ones
// against their source documents.
package link

import (
	"net/url"
	"strings"
)

// Kind is the routing decision for one raw link string
type Kind int

const (
	// KindLocal routes to the filesystem checker
	KindLocal Kind = iota
	// KindExternal routes to the network probe
	KindExternal
	// KindSkip produces no verdict at all
	KindSkip
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindExternal:
		return "external"
	case KindSkip:
		return "skip"
	}
	return "unknown"
}

// probedSchemes are the schemes we can actually reach over the network.
// mailto/tel/javascript imply "not a file path" but carry nothing
// checkable, so they are always treated as valid and skipped.
var (
	probedSchemes  = map[string]bool{"http": true, "https": true, "ftp": true}
	skippedSchemes = map[string]bool{"mailto": true, "tel": true, "javascript": true}
)

// Classify decides how a raw link string is routed. Pure function: same
// input, same output, independent of call order.
func Classify(raw string) Kind {
	if strings.TrimSpace(raw) == "" {
		return KindSkip
	}
	if strings.HasPrefix(raw, "#") {
		return KindSkip
	}

	scheme := schemeOf(raw)
	if probedSchemes[scheme] {
		return KindExternal
	}
	if skippedSchemes[scheme] {
		return KindSkip
	}
	return KindLocal
}

// schemeOf extracts the URL scheme, lowercased, or "" for scheme-less
// links. Unparseable strings fall back to a prefix sniff so that a broken
// absolute URL is still routed to the probe rather than the filesystem.
func schemeOf(raw string) string {
	if parsed, err := url.Parse(raw); err == nil {
		return strings.ToLower(parsed.Scheme)
	}
	if idx := strings.Index(raw, ":"); idx > 0 {
		candidate := strings.ToLower(raw[:idx])
		if probedSchemes[candidate] || skippedSchemes[candidate] {
			return candidate
		}
	}
	return ""
}
