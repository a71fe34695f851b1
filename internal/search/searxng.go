package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SearxNG implements Provider against a SearxNG instance's JSON /search
// endpoint. It is an optional alternative to the DuckDuckGo scraper for
// setups that run their own metasearch instance.
type SearxNG struct {
	BaseURL    string
	APIKey     string // optional
	HTTPClient *http.Client
	UserAgent  string // optional custom UA
	// MaxPages caps pagination. Zero derives a cap from the limit.
	MaxPages int
}

func (s *SearxNG) Name() string { return "searxng" }

// Search pages through /search?pageno=N until limit hits are yielded, a
// page comes back empty, or yield asks to stop.
func (s *SearxNG) Search(ctx context.Context, query string, limit int, yield func(Hit) bool) error {
	if s.BaseURL == "" {
		return fmt.Errorf("missing searxng base url")
	}
	if limit <= 0 {
		return nil
	}
	maxPages := s.MaxPages
	if maxPages <= 0 {
		maxPages = limit/10 + 1
	}

	yielded := 0
	for page := 1; page <= maxPages; page++ {
		hits, err := s.fetchPage(ctx, query, limit, page)
		if err != nil {
			if yielded == 0 {
				return err
			}
			return nil
		}
		if len(hits) == 0 {
			return nil
		}
		for _, h := range hits {
			yielded++
			h.Rank = yielded
			if !yield(h) || yielded >= limit {
				return nil
			}
		}
	}
	return nil
}

func (s *SearxNG) fetchPage(ctx context.Context, query string, limit, page int) ([]Hit, error) {
	endpoint, err := s.searchURL(query, limit, page)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	hc := s.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searxng: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("searxng: %w", ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("searxng status: %d", resp.StatusCode)
	}

	var sr searxResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("searxng: %w", err)
	}
	hits := make([]Hit, 0, len(sr.Results))
	for _, r := range sr.Results {
		if r.URL == "" || r.Title == "" {
			continue
		}
		hits = append(hits, Hit{
			Title:   strings.TrimSpace(r.Title),
			URL:     strings.TrimSpace(r.URL),
			Snippet: strings.TrimSpace(r.Content),
			Source:  s.Name(),
		})
	}
	return hits, nil
}

func (s *SearxNG) searchURL(query string, limit, page int) (string, error) {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return "", err
	}
	if !strings.HasSuffix(u.Path, "/search") {
		u.Path = strings.TrimRight(u.Path, "/") + "/search"
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("language", "auto")
	q.Set("safesearch", "1")
	q.Set("categories", "general")
	q.Set("count", strconv.Itoa(limit))
	if page > 1 {
		q.Set("pageno", strconv.Itoa(page))
	}
	if s.APIKey != "" {
		q.Set("apikey", s.APIKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

type searxResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}
