package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/itohnobue/web-search-agent/internal/ratelimit"
	"github.com/itohnobue/web-search-agent/internal/useragent"
)

// DefaultReaderURL is the public Jina Reader endpoint.
const DefaultReaderURL = "https://r.jina.ai/"

// ErrReaderRejected marks targets the reader service refused to extract.
var ErrReaderRejected = errors.New("reader rejected target")

// readerRejections are body sentinels the reader service returns with
// status 200 when the target itself failed or blocked the service.
var readerRejections = []string{
	"Target URL returned error",
	"You've been blocked",
	"SecurityCompromiseError",
}

// Reader retrieves page text through an external extraction service.
// The service fetches the target itself and returns plain text, which
// gets around walls that stop direct requests. All Reader instances
// sharing a Limiter respect one global minimum interval between calls.
type Reader struct {
	BaseURL    string // defaults to DefaultReaderURL
	APIKey     string // optional bearer token
	HTTPClient *http.Client
	Agents     *useragent.Pool
	// Timeout bounds each request. Zero means no per-request deadline
	// beyond the caller's context.
	Timeout time.Duration
	// MinContent is the minimum returned rune count for success.
	// Zero means DefaultMinContent.
	MinContent int
	// Limiter spaces calls to the shared service. Nil disables spacing.
	Limiter *ratelimit.Interval
}

// Fetch asks the reader service to extract one URL and classifies the
// result the same way Client.Fetch does.
func (r *Reader) Fetch(ctx context.Context, rawURL string) Attempt {
	if err := r.Limiter.Wait(ctx); err != nil {
		return Attempt{URL: rawURL, Class: ClassNetworkError, Err: err}
	}

	base := r.BaseURL
	if base == "" {
		base = DefaultReaderURL
	}
	// The service takes the target URL appended to its base path.
	target := strings.TrimRight(base, "/") + "/" + rawURL

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Attempt{URL: rawURL, Class: ClassNetworkError, Err: fmt.Errorf("new request: %w", err)}
	}
	if r.Agents != nil {
		req.Header.Set("User-Agent", r.Agents.Next())
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("X-Return-Format", "text")
	if r.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.APIKey)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), r.Timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	hc := r.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: r.Timeout}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return Attempt{URL: rawURL, Class: classifyTransport(err), Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Attempt{URL: rawURL, Class: ClassNetworkError, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	body := string(b)

	if resp.StatusCode != http.StatusOK {
		return Attempt{
			URL:    rawURL,
			Class:  ClassHTTPError,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("reader status: %d", resp.StatusCode),
		}
	}
	for _, sentinel := range readerRejections {
		if strings.Contains(body, sentinel) {
			return Attempt{
				URL:    rawURL,
				Class:  ClassBlocked,
				Status: resp.StatusCode,
				Err:    fmt.Errorf("%s: %w", sentinel, ErrReaderRejected),
			}
		}
	}

	text := norm.NFC.String(strings.TrimSpace(body))
	min := r.MinContent
	if min <= 0 {
		min = DefaultMinContent
	}
	if n := utf8.RuneCountInString(text); n < min {
		return Attempt{
			URL:    rawURL,
			Class:  ClassTooShort,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("reader returned %d chars: %w", n, ErrTooShort),
		}
	}
	return Attempt{
		URL:     rawURL,
		Class:   ClassSuccess,
		Title:   titleFromText(text),
		Content: text,
		Status:  resp.StatusCode,
	}
}

// titleFromText pulls a title from the reader's leading lines when the
// service includes one. Plain text responses usually do not, which
// leaves the title empty.
func titleFromText(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if t, ok := strings.CutPrefix(line, "Title: "); ok {
			return strings.TrimSpace(t)
		}
		if t, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(t)
		}
		return ""
	}
	return ""
}
