// Package links finds URLs in issue text and fetches a capped snapshot of each.
package links

import "regexp"

// urlPattern matches a scheme followed by any run of non-whitespace. Trailing
// punctuation such as ")" or "." stays attached to the match.
var urlPattern = regexp.MustCompile(`https?://\S+`)

// Extract returns every URL in text in first-occurrence order, duplicates included.
func Extract(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// Dedupe drops repeated URLs, keeping the first occurrence of each.
func Dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// WithCanonical appends canonical to urls unless it is already present.
func WithCanonical(urls []string, canonical string) []string {
	for _, u := range urls {
		if u == canonical {
			return urls
		}
	}
	return append(urls, canonical)
}
