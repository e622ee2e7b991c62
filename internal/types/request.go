package types

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// FetchMode selects the transport used to retrieve a page.
type FetchMode string

const (
	// ModePlain performs a raw HTTP GET and parses the returned markup.
	ModePlain FetchMode = "plain"
	// ModeRendered drives a headless browser and reads the settled DOM.
	ModeRendered FetchMode = "rendered"
)

// Request describes a single page retrieval.
type Request struct {
	// URL is the target URL to fetch.
	URL *url.URL

	// Mode selects plain HTTP or rendered-DOM retrieval.
	Mode FetchMode

	// Headers are extra HTTP headers to send.
	Headers http.Header

	// MaxRetries bounds retry attempts on transport failure.
	MaxRetries int

	// Timeout overrides the configured request timeout when positive.
	Timeout time.Duration

	// Tag categorizes the request (e.g. "homepage", "listing", "detail").
	Tag string

	// CreatedAt is when this request was created.
	CreatedAt time.Time
}

// NewRequest creates a plain-mode Request with defaults.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, ErrInvalidURL)
	}

	return &Request{
		URL:        u,
		Mode:       ModePlain,
		Headers:    make(http.Header),
		MaxRetries: 3,
		CreatedAt:  time.Now(),
	}, nil
}

// URLString returns the string form of the request URL.
func (r *Request) URLString() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.String()
}

// Domain returns the hostname of the request URL.
func (r *Request) Domain() string {
	if r.URL == nil {
		return ""
	}
	return r.URL.Hostname()
}
