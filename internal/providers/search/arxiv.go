package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sandevgo/searchbot/pkg/conv"
)

const ArxivEndpoint = "https://export.arxiv.org/api/query"

type Arxiv struct {
	Endpoint string

	http    *httpClient
	maxDocs int
	maxLen  int
}

func NewArxiv(cfg Config) *Arxiv {
	cfg = cfg.withDefaults()
	return &Arxiv{
		Endpoint: ArxivEndpoint,
		http:     newHTTPClient(cfg),
		maxDocs:  1,
		maxLen:   cfg.DocMaxChars,
	}
}

func (a *Arxiv) Name() string {
	return "Arxiv"
}

type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	Published string `xml:"published"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Authors   []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

// Lookup returns the top abstract as a Published/Title/Authors/Summary block
// capped at the document limit.
func (a *Arxiv) Lookup(ctx context.Context, query string) (string, error) {
	q, err := checkQuery(query)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("search_query", "all:"+q)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprint(a.maxDocs))

	body, err := a.http.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, a.Endpoint+"?"+params.Encode(), nil)
	})
	if err != nil {
		return "", err
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return "", fmt.Errorf("decode arxiv feed: %w", err)
	}
	if len(feed.Entries) == 0 {
		return "No good Arxiv Result was found", nil
	}

	docs := make([]string, 0, len(feed.Entries))
	for _, e := range feed.Entries {
		authors := make([]string, 0, len(e.Authors))
		for _, au := range e.Authors {
			authors = append(authors, strings.TrimSpace(au.Name))
		}
		published := e.Published
		if len(published) >= 10 {
			published = published[:10]
		}
		docs = append(docs, fmt.Sprintf("Published: %s\nTitle: %s\nAuthors: %s\nSummary: %s",
			published,
			collapse(e.Title),
			strings.Join(authors, ", "),
			collapse(e.Summary),
		))
	}
	return conv.Truncate(strings.Join(docs, "\n\n"), a.maxLen), nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
