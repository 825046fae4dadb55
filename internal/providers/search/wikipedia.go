package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/sandevgo/searchbot/pkg/conv"
)

type Wikipedia struct {
	// Endpoint overrides the per-language api.php URL.
	Endpoint string

	http    *httpClient
	maxDocs int
	maxLen  int
}

func NewWikipedia(cfg Config) *Wikipedia {
	cfg = cfg.withDefaults()
	return &Wikipedia{
		Endpoint: fmt.Sprintf("https://%s.wikipedia.org/w/api.php", cfg.WikiLang),
		http:     newHTTPClient(cfg),
		maxDocs:  1,
		maxLen:   cfg.DocMaxChars,
	}
}

func (w *Wikipedia) Name() string {
	return "Wikipedia"
}

// Lookup searches titles and returns the intro extract of the best hits as
// Page/Summary blocks capped at the document limit.
func (w *Wikipedia) Lookup(ctx context.Context, query string) (string, error) {
	q, err := checkQuery(query)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("generator", "search")
	params.Set("gsrsearch", q)
	params.Set("gsrlimit", fmt.Sprint(w.maxDocs))
	params.Set("prop", "extracts")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")

	body, err := w.http.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, w.Endpoint+"?"+params.Encode(), nil)
	})
	if err != nil {
		return "", err
	}

	var result struct {
		Query struct {
			Pages []struct {
				Index   int    `json:"index"`
				Title   string `json:"title"`
				Extract string `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
		Error *struct {
			Info string `json:"info"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode wikipedia response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("wikipedia: %s", result.Error.Info)
	}

	pages := result.Query.Pages
	// generator pages come back unordered; index is the search rank
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].Index < pages[j].Index })

	var docs []string
	for _, p := range pages {
		extract := strings.TrimSpace(p.Extract)
		if extract == "" {
			continue
		}
		docs = append(docs, fmt.Sprintf("Page: %s\nSummary: %s", p.Title, extract))
	}
	if len(docs) == 0 {
		return "No good Wikipedia Search Result was found", nil
	}
	return conv.Truncate(strings.Join(docs, "\n\n"), w.maxLen), nil
}
