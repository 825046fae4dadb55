// Package search holds the read-only lookup adapters: web, paper and
// encyclopedia search.
package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sandevgo/searchbot/internal/core"
	"github.com/sandevgo/searchbot/pkg/conv"
	"github.com/sandevgo/searchbot/pkg/retry"
)

const (
	maxResponseSize  = 2 << 20
	defaultTimeout   = 15 * time.Second
	defaultDocMax    = 200
	defaultWikiLang  = "en"
	defaultUserAgent = core.BotUserAgent
)

var ErrEmptyQuery = errors.New("query is empty")

type Config struct {
	Timeout     time.Duration
	MaxRetries  int
	DocMaxChars int
	WikiLang    string
	RetryDelay  time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.DocMaxChars <= 0 {
		c.DocMaxChars = defaultDocMax
	}
	if c.WikiLang == "" {
		c.WikiLang = defaultWikiLang
	}
	return c
}

// httpClient retries 429 and 5xx answers only. Transport failures and other
// statuses are returned on the first attempt.
type httpClient struct {
	client    *http.Client
	retrier   *retry.Retrier
	userAgent string
}

func newHTTPClient(cfg Config) *httpClient {
	rc := retry.NewDefaultConfig()
	rc.MaxRetries = cfg.MaxRetries
	if cfg.RetryDelay > 0 {
		rc.InitialDelay = cfg.RetryDelay
		rc.Jitter = 0
	}
	return &httpClient{
		client:    &http.Client{Timeout: cfg.Timeout},
		retrier:   retry.NewRetrier(rc),
		userAgent: defaultUserAgent,
	}
}

// do builds a fresh request per attempt and returns the body of the first
// 200 answer.
func (c *httpClient) do(ctx context.Context, build func(context.Context) (*http.Request, error)) ([]byte, error) {
	var body []byte
	err := c.retrier.Do(ctx, func() error {
		req, err := build(ctx)
		if err != nil {
			return retry.Permanent(fmt.Errorf("create request: %w", err))
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return retry.Permanent(fmt.Errorf("request: %w", err))
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return retry.Permanent(fmt.Errorf("read body: %w", err))
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			body = data
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return fmt.Errorf("http %d", resp.StatusCode)
		default:
			return retry.Permanent(fmt.Errorf("http %d: %s", resp.StatusCode, conv.Truncate(strings.TrimSpace(string(data)), 200)))
		}
	})
	return body, err
}

// NewLookups wires one adapter per tool id.
func NewLookups(cfg Config) map[core.ToolID]core.Lookup {
	return map[core.ToolID]core.Lookup{
		core.PaperSearch:        NewArxiv(cfg),
		core.EncyclopediaSearch: NewWikipedia(cfg),
		core.WebSearch:          NewDuckDuckGo(cfg),
	}
}

func checkQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", ErrEmptyQuery
	}
	return q, nil
}
