package search

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/inbucket/html2text"
)

const (
	DuckDuckGoEndpoint = "https://lite.duckduckgo.com/lite/"
	ddgMaxResults      = 4
	ddgBrowserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var (
	ddgLinkPattern    = regexp.MustCompile(`<a[^>]*class=['"]result-link['"][^>]*>(.*?)</a>`)
	ddgSnippetPattern = regexp.MustCompile(`(?s)<td[^>]*class=['"]result-snippet['"][^>]*>(.*?)</td>`)
)

type DuckDuckGo struct {
	Endpoint string

	http     *httpClient
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func NewDuckDuckGo(cfg Config) *DuckDuckGo {
	cfg = cfg.withDefaults()
	c := newHTTPClient(cfg)
	c.userAgent = ddgBrowserAgent
	return &DuckDuckGo{
		Endpoint: DuckDuckGoEndpoint,
		http:     c,
		interval: time.Second,
	}
}

func (d *DuckDuckGo) Name() string {
	return "DuckDuckGo Search"
}

// Lookup scrapes the lite page and joins the top snippets.
func (d *DuckDuckGo) Lookup(ctx context.Context, query string) (string, error) {
	q, err := checkQuery(query)
	if err != nil {
		return "", err
	}
	if err := d.wait(ctx); err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("q", q)

	body, err := d.http.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	})
	if err != nil {
		return "", err
	}

	snippets := parseDuckDuckGo(string(body))
	if len(snippets) == 0 {
		return "No good DuckDuckGo Search Result was found", nil
	}
	return strings.Join(snippets, " "), nil
}

// wait keeps queries at least one interval apart.
func (d *DuckDuckGo) wait(ctx context.Context) error {
	d.mu.Lock()
	wait := time.Until(d.last.Add(d.interval))
	if wait < 0 {
		wait = 0
	}
	d.last = time.Now().Add(wait)
	d.mu.Unlock()

	if wait == 0 {
		return nil
	}
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// parseDuckDuckGo returns result snippets, falling back to link titles for
// results that carry no snippet. A snippet belongs to the link before it.
func parseDuckDuckGo(page string) []string {
	links := ddgLinkPattern.FindAllStringSubmatchIndex(page, -1)

	var out []string
	for i, link := range links {
		end := len(page)
		if i+1 < len(links) {
			end = links[i+1][0]
		}

		text := ""
		if snip := ddgSnippetPattern.FindStringSubmatch(page[link[1]:end]); snip != nil {
			text = cleanHTML(snip[1])
		}
		if text == "" {
			text = cleanHTML(page[link[2]:link[3]])
		}
		if text == "" {
			continue
		}
		out = append(out, text)
		if len(out) >= ddgMaxResults {
			break
		}
	}
	return out
}

func cleanHTML(s string) string {
	text, err := html2text.FromString(s, html2text.Options{OmitLinks: true})
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(strings.Fields(text), " ")
}
