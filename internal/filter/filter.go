package filter

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Reason explains why a candidate URL was rejected.
type Reason string

const (
	ReasonInvalidURL       Reason = "invalid_url"
	ReasonBlockedDomain    Reason = "blocked_domain"
	ReasonExcludedPath     Reason = "excluded_path"
	ReasonDisallowedSuffix Reason = "disallowed_suffix"
	// ReasonDuplicate is assigned by the pipeline when the dedup registry
	// rejects an already-accepted canonical URL; the filter itself never
	// returns it.
	ReasonDuplicate Reason = "duplicate"
)

// Decision is the outcome of filtering one candidate URL.
type Decision struct {
	Allow  bool
	Reason Reason
}

// defaultBlockedDomains lists hosts that block scraping or sit behind a
// login wall. Matching is a substring check over the lowercased URL.
var defaultBlockedDomains = []string{
	"reddit.com", "twitter.com", "x.com", "facebook.com",
	"youtube.com", "tiktok.com", "instagram.com",
	"linkedin.com", "medium.com",
}

// defaultExcludedPatterns rejects auth/commerce pages and low-density
// index/aggregation pages.
var defaultExcludedPatterns = []string{
	`/login`, `/signin`, `/signup`, `/cart`, `/checkout`,
	`amazon\.com/.*/(dp|gp)/`, `ebay\.com/itm/`,
	`/tag/`, `/tags/`, `/category/`, `/categories/`,
	`/topic/`, `/topics/`, `/archive/`, `/page/\d+`,
	`/shop/`, `/store/`, `/buy/`, `/product/`, `/products/`,
}

// defaultDisallowedSuffixes rejects document and image files that carry no
// extractable article text.
var defaultDisallowedSuffixes = []string{".pdf", ".jpg", ".png", ".gif"}

// Filter decides whether a candidate URL is worth fetching. It is a pure
// predicate: no side effects, no network access.
type Filter struct {
	domains  []string
	patterns []*regexp.Regexp
	suffixes []string
}

// New builds a filter from the default rules plus any extra blocked domains
// and excluded patterns from configuration. Patterns are matched against the
// lowercased URL.
func New(extraDomains, extraPatterns []string) (*Filter, error) {
	f := &Filter{
		domains:  append(append([]string{}, defaultBlockedDomains...), lowerAll(extraDomains)...),
		suffixes: defaultDisallowedSuffixes,
	}
	all := append(append([]string{}, defaultExcludedPatterns...), extraPatterns...)
	for _, p := range all {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("filter: bad excluded pattern %q: %w", p, err)
		}
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// Decide classifies one candidate URL. Rule order: URL validity, blocked
// domains, disallowed suffixes, excluded path patterns.
func (f *Filter) Decide(rawURL string) Decision {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || !isHTTPScheme(u.Scheme) {
		return Decision{Reason: ReasonInvalidURL}
	}

	lower := strings.ToLower(rawURL)
	for _, d := range f.domains {
		if strings.Contains(lower, d) {
			return Decision{Reason: ReasonBlockedDomain}
		}
	}
	for _, s := range f.suffixes {
		if strings.HasSuffix(lower, s) {
			return Decision{Reason: ReasonDisallowedSuffix}
		}
	}
	for _, re := range f.patterns {
		if re.MatchString(lower) {
			return Decision{Reason: ReasonExcludedPath}
		}
	}
	return Decision{Allow: true}
}

func isHTTPScheme(scheme string) bool {
	s := strings.ToLower(scheme)
	return s == "http" || s == "https"
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if v := strings.ToLower(strings.TrimSpace(s)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
