package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/itohnobue/web-search-agent/internal/useragent"
)

// DefaultDuckDuckGoURL is the HTML (non-JS) results endpoint.
const DefaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

const (
	resultsPerPage = 30
	maxSERPBytes   = 2 << 20
)

// DuckDuckGo implements Provider against the DuckDuckGo HTML endpoint.
// Results arrive in pages of 30; each parsed result is yielded immediately.
type DuckDuckGo struct {
	BaseURL    string
	HTTPClient *http.Client
	Agents     *useragent.Pool
	// Pace spaces page requests so the endpoint is not hammered.
	Pace *rate.Limiter
	// MaxPages caps pagination. Zero derives a cap from the limit.
	MaxPages int
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int, yield func(Hit) bool) error {
	if limit <= 0 {
		return nil
	}
	base := d.BaseURL
	if base == "" {
		base = DefaultDuckDuckGoURL
	}
	maxPages := d.MaxPages
	if maxPages <= 0 {
		maxPages = limit/10 + 3
	}

	yielded := 0
	consecutiveEmpty := 0
	for page := 1; page <= maxPages; page++ {
		if consecutiveEmpty >= 3 {
			return nil
		}
		if d.Pace != nil {
			if err := d.Pace.Wait(ctx); err != nil {
				return err
			}
		}

		body, err := d.fetchPage(ctx, base, query, page)
		if err != nil {
			if page == 1 && yielded == 0 {
				return fmt.Errorf("duckduckgo: %w", err)
			}
			if errors.Is(err, ErrRateLimited) || ctx.Err() != nil {
				return fmt.Errorf("duckduckgo: %w", err)
			}
			consecutiveEmpty++
			continue
		}
		if strings.Contains(body, "anomaly.js") || strings.Contains(body, "cc=botnet") {
			return fmt.Errorf("duckduckgo: %w", ErrBotDetected)
		}

		found := 0
		stopped := false
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
		if err != nil {
			consecutiveEmpty++
			continue
		}
		doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			anchor := s.Find("a.result__a").First()
			href, ok := anchor.Attr("href")
			if !ok || strings.Contains(href, "ad_provider") {
				return true
			}
			title := cleanText(anchor.Text())
			if title == "" {
				return true
			}
			target := decodeRedirect(href)
			if target == "" {
				return true
			}
			found++
			yielded++
			hit := Hit{
				Title:   title,
				URL:     target,
				Snippet: cleanText(s.Find(".result__snippet").First().Text()),
				Rank:    yielded,
				Source:  d.Name(),
			}
			if !yield(hit) || yielded >= limit {
				stopped = true
				return false
			}
			return true
		})
		if stopped {
			return nil
		}
		if found == 0 {
			consecutiveEmpty++
		} else {
			consecutiveEmpty = 0
		}
	}
	return nil
}

func (d *DuckDuckGo) fetchPage(ctx context.Context, base, query string, page int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("q", query)
	if page > 1 {
		q.Set("s", strconv.Itoa((page-1)*resultsPerPage))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	if d.Agents != nil {
		req.Header.Set("User-Agent", d.Agents.Next())
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	hc := d.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxSERPBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(b), nil
}

// decodeRedirect resolves a result anchor to its real target. Direct links
// pass through; duckduckgo redirect links carry the target in the uddg
// query parameter.
func decodeRedirect(href string) string {
	if href == "" {
		return ""
	}
	if (strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://")) &&
		!strings.Contains(href, "duckduckgo.com") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get("uddg")
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
