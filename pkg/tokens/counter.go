// Package tokens estimates prompt sizes for context budgeting.
package tokens

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const defaultEncoding = "cl100k_base"

// Counter counts tokens with a tiktoken encoding. The encoding is loaded lazily;
// when it cannot be loaded (offline, no cache) Count falls back to Estimate.
type Counter struct {
	encoding string
	once     sync.Once
	enc      *tiktoken.Tiktoken
	err      error
}

func NewCounter() *Counter {
	return &Counter{encoding: defaultEncoding}
}

// NewEstimator returns a Counter that never loads an encoding.
func NewEstimator() *Counter {
	c := &Counter{}
	c.once.Do(func() {})
	return c
}

func (c *Counter) load() {
	c.enc, c.err = tiktoken.GetEncoding(c.encoding)
}

// Err reports why the encoding could not be loaded, if it was attempted.
func (c *Counter) Err() error {
	return c.err
}

func (c *Counter) Count(text string) int {
	c.once.Do(c.load)
	if c.enc == nil {
		return Estimate(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Estimate is the usual four-characters-per-token approximation.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}
