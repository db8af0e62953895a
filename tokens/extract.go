// Package tokens maintains the ordered, deduplicated list of game app ids
// and the heuristics that pull ids out of free-form text.
package tokens

import (
	"regexp"
	"strings"
)

// strategy is one pure text→id matcher. Strategies run in priority order;
// the first hit wins.
type strategy struct {
	name string
	re   *regexp.Regexp
}

var strategies = []strategy{
	{"store-path", regexp.MustCompile(`(?i)app/(\d+)`)},
	{"protocol-launch", regexp.MustCompile(`(?i)steam://(?:rungameid|run|install)/(\d+)`)},
	{"bare-run", regexp.MustCompile(`(?i)run(?:gameid)?/(\d+)`)},
	{"digit-run", regexp.MustCompile(`(\d{3,})`)},
}

// Extract pulls an app id from a store link, a steam:// launch URL, or any
// run of three or more digits. Returns "" and false when nothing matches.
func Extract(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}
	for _, s := range strategies {
		if match := s.re.FindStringSubmatch(value); match != nil {
			return match[1], true
		}
	}
	return "", false
}

var chunkSplit = regexp.MustCompile(`[\s,]+`)

// SplitChunks separates pasted text on whitespace and commas, dropping
// empty pieces.
func SplitChunks(text string) []string {
	parts := chunkSplit.Split(text, -1)
	chunks := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			chunks = append(chunks, part)
		}
	}
	return chunks
}
