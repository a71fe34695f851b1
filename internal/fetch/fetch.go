package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"github.com/itohnobue/web-search-agent/internal/extract"
	"github.com/itohnobue/web-search-agent/internal/useragent"
)

// Classification of a single retrieval attempt. Every attempt lands in
// exactly one class; only ClassSuccess carries usable content.
const (
	ClassSuccess      = "success"
	ClassBlocked      = "blocked"
	ClassTooShort     = "too_short"
	ClassHTTPError    = "http_error"
	ClassNetworkError = "network_error"
	ClassTimeout      = "timeout"
)

// DefaultMinContent is the minimum extracted rune count for an attempt
// to count as success.
const DefaultMinContent = 200

const maxBodyBytes = 2 << 20

var (
	// ErrBlocked marks attempts rejected by an anti-bot wall.
	ErrBlocked = errors.New("fetch blocked")
	// ErrTooShort marks attempts whose extracted text was below the
	// minimum content threshold.
	ErrTooShort = errors.New("content too short")
)

// Attempt is the outcome of one retrieval attempt against one URL.
type Attempt struct {
	URL     string
	Class   string
	Title   string
	Content string
	Status  int   // HTTP status, when a response arrived
	Err     error // nil only for ClassSuccess
}

// Client performs one direct fetch plus text extraction per URL. It
// never retries; escalation to a fallback is the caller's concern.
type Client struct {
	HTTPClient *http.Client
	Agents     *useragent.Pool
	// Timeout bounds each request. Zero means no per-request deadline
	// beyond the caller's context.
	Timeout time.Duration
	// MinContent is the minimum extracted rune count for success.
	// Zero means DefaultMinContent.
	MinContent int
	// Detectors identify block walls. Nil means DefaultDetectors.
	Detectors []Detector
	// Extractor turns HTML into plain text. Nil means extract.Heuristic.
	Extractor extract.Extractor
	// RedirectMaxHops caps redirect following to avoid loops. Zero means default (5).
	RedirectMaxHops int
}

// Fetch retrieves one URL and classifies the result.
func (c *Client) Fetch(ctx context.Context, rawURL string) Attempt {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Attempt{URL: rawURL, Class: ClassNetworkError, Err: fmt.Errorf("new request: %w", err)}
	}
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return Attempt{URL: rawURL, Class: ClassNetworkError, Err: fmt.Errorf("unsupported URL scheme: %q", rawURL)}
	}
	if c.Agents != nil {
		req.Header.Set("User-Agent", c.Agents.Next())
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), c.Timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return Attempt{URL: rawURL, Class: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := decodeBody(resp)
	if err != nil {
		return Attempt{URL: rawURL, Class: ClassNetworkError, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	detectors := c.Detectors
	if detectors == nil {
		detectors = DefaultDetectors
	}
	if reason, blocked := Detect(detectors, resp.StatusCode, body); blocked {
		return Attempt{
			URL:    rawURL,
			Class:  ClassBlocked,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s: %w", reason, ErrBlocked),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Attempt{
			URL:    rawURL,
			Class:  ClassHTTPError,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("unexpected status: %d", resp.StatusCode),
		}
	}

	extractor := c.Extractor
	if extractor == nil {
		extractor = extract.Heuristic{}
	}
	doc := extractor.Extract([]byte(body))
	min := c.MinContent
	if min <= 0 {
		min = DefaultMinContent
	}
	if n := utf8.RuneCountInString(doc.Text); n < min {
		return Attempt{
			URL:    rawURL,
			Class:  ClassTooShort,
			Title:  doc.Title,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("extracted %d chars: %w", n, ErrTooShort),
		}
	}
	return Attempt{
		URL:     rawURL,
		Class:   ClassSuccess,
		Title:   doc.Title,
		Content: doc.Text,
		Status:  resp.StatusCode,
	}
}

// decodeBody reads a capped response body, converting legacy charsets
// to UTF-8 based on the Content-Type header and sniffed markup.
func decodeBody(resp *http.Response) (string, error) {
	r, err := charset.NewReader(io.LimitReader(resp.Body, maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func classifyTransport(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ClassTimeout
	}
	return ClassNetworkError
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: c.Timeout, CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		// Only allow http/https during redirects
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
