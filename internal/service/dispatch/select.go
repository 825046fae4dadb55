// Package dispatch picks lookup tools from a model draft by keyword matching.
package dispatch

import (
	"strings"

	"github.com/sandevgo/searchbot/internal/core"
)

var (
	paperKeywords        = []string{"arxiv", "paper", "research"}
	encyclopediaKeywords = []string{"wikipedia", "wiki"}
	webKeyword           = "search"
)

// Select returns the tools to run for a draft answer, in core.ToolOrder.
// The result is never empty: web_search fires when nothing else matched or
// when the draft mentions "search". A draft naming only an encyclopedia or a
// paper source does not pull in the web lookup.
//
// The query is accepted for symmetry with the cycle contract; matching looks
// only at the draft.
func Select(draft, _ string) []core.ToolID {
	text := strings.ToLower(draft)

	selected := make([]core.ToolID, 0, len(core.ToolOrder))
	if containsAny(text, paperKeywords) {
		selected = append(selected, core.PaperSearch)
	}
	if containsAny(text, encyclopediaKeywords) {
		selected = append(selected, core.EncyclopediaSearch)
	}
	if len(selected) == 0 || strings.Contains(text, webKeyword) {
		selected = append(selected, core.WebSearch)
	}
	return selected
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
