package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// DOMLinks extracts href and src attribute values by walking HTML tokens
// instead of pattern matching. It applies the same dedup and ordering
// contract as Links, but attribute order follows document order rather
// than href-then-src. Tokenizer errors terminate the walk with whatever
// was collected so far; a truncated document is not an error.
func DOMLinks(content string) []string {
	tokenizer := html.NewTokenizer(strings.NewReader(content))
	seen := make(map[string]bool)
	var links []string

	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			return links
		}
		if tokenType != html.StartTagToken && tokenType != html.SelfClosingTagToken {
			continue
		}

		token := tokenizer.Token()
		for _, attr := range token.Attr {
			key := strings.ToLower(attr.Key)
			if key != "href" && key != "src" {
				continue
			}
			if seen[attr.Val] {
				continue
			}
			seen[attr.Val] = true
			links = append(links, attr.Val)
		}
	}
}
