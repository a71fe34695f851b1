package search

import (
	"context"
	"errors"
)

// Hit is a single ranked result from a provider.
type Hit struct {
	Title   string
	URL     string
	Snippet string
	Rank    int
	Source  string // provider name for observability
}

// Provider streams ranked hits for a query. Implementations yield each hit
// as soon as it is parsed so downstream fetching can start before the full
// result set is known. The stream is finite and non-restartable: it ends when
// limit hits have been yielded, the provider is exhausted, yield returns
// false, or ctx is done. An error returned after some hits were yielded means
// the stream ended early, not that the yielded hits are invalid.
type Provider interface {
	Search(ctx context.Context, query string, limit int, yield func(Hit) bool) error
	Name() string
}

// ErrRateLimited is returned when the search backend refuses further
// requests for this run.
var ErrRateLimited = errors.New("search rate limited")

// ErrBotDetected is returned when the search backend serves a bot-detection
// interstitial instead of results.
var ErrBotDetected = errors.New("search bot detection triggered")
