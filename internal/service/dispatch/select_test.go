package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandevgo/searchbot/internal/core"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name     string
		draft    string
		expected []core.ToolID
	}{
		{
			name:     "no keyword falls back to web",
			draft:    "Quantum computers use qubits.",
			expected: []core.ToolID{core.WebSearch},
		},
		{
			name:     "empty draft falls back to web",
			draft:    "",
			expected: []core.ToolID{core.WebSearch},
		},
		{
			name:     "arxiv and wikipedia without search",
			draft:    "Check arXiv and Wikipedia.",
			expected: []core.ToolID{core.PaperSearch, core.EncyclopediaSearch},
		},
		{
			name:     "wikipedia only",
			draft:    "I should look this up on Wikipedia.",
			expected: []core.ToolID{core.EncyclopediaSearch},
		},
		{
			name:     "wikipedia plus search keeps the asymmetry",
			draft:    "Let me search Wikipedia.",
			expected: []core.ToolID{core.EncyclopediaSearch, core.WebSearch},
		},
		{
			name:     "research also contains search",
			draft:    "Recent RESEARCH suggests otherwise.",
			expected: []core.ToolID{core.PaperSearch, core.WebSearch},
		},
		{
			name:     "all three in fixed order",
			draft:    "search the web, then wiki, then a paper",
			expected: []core.ToolID{core.PaperSearch, core.EncyclopediaSearch, core.WebSearch},
		},
		{
			name:     "substring match inside a word",
			draft:    "See the paper by Wikimedia staff.",
			expected: []core.ToolID{core.PaperSearch, core.EncyclopediaSearch},
		},
		{
			name:     "search alone",
			draft:    "I need to search for that.",
			expected: []core.ToolID{core.WebSearch},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Select(tt.draft, "any query"))
		})
	}
}

func TestSelect_IgnoresQuery(t *testing.T) {
	assert.Equal(t,
		[]core.ToolID{core.WebSearch},
		Select("no hints here", "find an arxiv paper on wikipedia"),
	)
}

func TestSelect_NeverEmptyAndOrdered(t *testing.T) {
	order := map[core.ToolID]int{}
	for i, id := range core.ToolOrder {
		order[id] = i
	}

	drafts := []string{
		"", "x", "wiki", "paper", "search", "arxiv wiki search",
		"SEARCH PAPER", "Wikipedia research", "nothing relevant at all",
	}
	for _, d := range drafts {
		got := Select(d, "")
		assert.NotEmpty(t, got, d)
		for i := 1; i < len(got); i++ {
			assert.Less(t, order[got[i-1]], order[got[i]], d)
		}
	}
}
