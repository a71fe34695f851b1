package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/itohnobue/web-search-agent/internal/fetch"
	"github.com/itohnobue/web-search-agent/internal/filter"
	"github.com/itohnobue/web-search-agent/internal/progress"
	"github.com/itohnobue/web-search-agent/internal/search"
)

// Source of a successful page.
const (
	SourceDirect   = "direct"
	SourceFallback = "fallback"
)

// Terminal status of a scheduled URL. Every accepted URL ends in
// exactly one of these.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// TruncationMarker is appended when content is cut at the length cap.
const TruncationMarker = "\n\n[Truncated...]"

// Fetcher is one retrieval strategy. fetch.Client and fetch.Reader
// both implement it.
type Fetcher interface {
	Fetch(ctx context.Context, url string) fetch.Attempt
}

// Outcome is the terminal record for one accepted URL.
type Outcome struct {
	ID        uuid.UUID
	Rank      int    // discovery order among accepted URLs, 1-based
	URL       string
	Title     string
	Content   string
	CharCount int
	Source    string // SourceDirect or SourceFallback; empty when skipped
	Status    string
	Class     string // terminal fetch classification; empty when skipped
	Err       error  // nil unless Status is StatusFailed
}

// Result is a completed run.
type Result struct {
	Query    string
	Stats    Stats
	Outcomes []Outcome // discovery order
}

// Pages returns the outcomes that produced content, in discovery order.
func (r *Result) Pages() []Outcome {
	out := make([]Outcome, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.Status == StatusSuccess {
			out = append(out, o)
		}
	}
	return out
}

// Pipeline streams provider hits through filtering and deduplication
// into a bounded worker pool that fetches, escalates, and records one
// terminal outcome per accepted URL.
type Pipeline struct {
	Provider search.Provider
	Filter   *filter.Filter
	Direct   Fetcher
	// Fallback handles every URL whose direct attempt failed, whatever
	// the failure class. Nil disables escalation.
	Fallback Fetcher
	Reporter progress.Reporter

	// SearchLimit is how many hits to request from the provider.
	SearchLimit int
	// FetchCap bounds fetch attempts. Accepted URLs beyond the cap end
	// as skipped. Zero means no cap.
	FetchCap int
	// Concurrency is the worker pool size. Values below 1 mean 1.
	Concurrency int
	// MaxContent truncates page text above this many runes. Zero means
	// no cap.
	MaxContent int

	// OnOutcome, when set, receives each successful outcome as it
	// completes. Calls are serialized but arrive in completion order,
	// not discovery order.
	OnOutcome func(Outcome)
}

type job struct {
	rank int
	hit  search.Hit
}

// Run executes one research pass. The returned error is nil for
// partial and empty runs; it is non-nil when the provider produced
// nothing at all or the context was canceled.
func (p *Pipeline) Run(ctx context.Context, query string) (*Result, error) {
	if p.Provider == nil {
		return nil, errors.New("pipeline: no search provider")
	}
	if p.Direct == nil {
		return nil, errors.New("pipeline: no direct fetcher")
	}
	workers := p.Concurrency
	if workers < 1 {
		workers = 1
	}
	rep := p.Reporter
	if rep == nil {
		rep = progress.Nop{}
	}

	runID := uuid.New()
	log.Debug().Str("run_id", runID.String()).Str("query", query).Int("limit", p.SearchLimit).Msg("run started")

	rep.Start(query)

	var (
		col      Collector
		registry = NewRegistry()
		started  atomic.Int64

		mu       sync.Mutex
		outcomes []Outcome

		searchErr error
	)

	jobs := make(chan job, workers)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		found := 0
		accepted := 0
		err := p.Provider.Search(gctx, query, p.SearchLimit, func(h search.Hit) bool {
			col.Searched()
			found++
			rep.Searching(found, p.SearchLimit)
			if p.Filter != nil {
				if d := p.Filter.Decide(h.URL); !d.Allow {
					col.Filtered()
					log.Debug().Str("url", h.URL).Str("reason", string(d.Reason)).Msg("filtered")
					return true
				}
			}
			if !registry.InsertIfAbsent(h.URL) {
				col.Filtered()
				log.Debug().Str("url", h.URL).Str("reason", string(filter.ReasonDuplicate)).Msg("filtered")
				return true
			}
			col.Accepted()
			accepted++
			select {
			case jobs <- job{rank: accepted, hit: h}:
				return true
			case <-gctx.Done():
				return false
			}
		})
		if err != nil {
			searchErr = err
		}
		return nil
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for jb := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				var o Outcome
				if p.FetchCap > 0 && started.Add(1) > int64(p.FetchCap) {
					o = Outcome{ID: uuid.New(), Rank: jb.rank, URL: jb.hit.URL, Title: jb.hit.Title, Status: StatusSkipped}
					col.Skipped()
				} else {
					o = p.attempt(gctx, jb)
					switch {
					case o.Status == StatusSuccess && o.Source == SourceDirect:
						col.SucceededDirect(o.CharCount)
					case o.Status == StatusSuccess:
						col.SucceededFallback(o.CharCount)
					default:
						col.Failed()
					}
				}
				mu.Lock()
				outcomes = append(outcomes, o)
				done := len(outcomes)
				if o.Status == StatusSuccess && p.OnOutcome != nil {
					p.OnOutcome(o)
				}
				mu.Unlock()
				snap := col.Snapshot()
				rep.Fetched(done, snap.Accepted, snap.ContentChars)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := col.Snapshot()
	if searchErr != nil {
		if snap.Searched == 0 {
			return nil, fmt.Errorf("search: %w", searchErr)
		}
		log.Warn().Str("run_id", runID.String()).Err(searchErr).Int("searched", snap.Searched).
			Msg("search ended early, continuing with partial results")
	}

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Rank < outcomes[j].Rank })

	rep.Finish(progress.Summary{
		Fetched:  snap.Fetched(),
		Accepted: snap.Accepted,
		Fallback: snap.FetchedFallback,
		Filtered: snap.Filtered,
		Chars:    snap.ContentChars,
	})
	return &Result{Query: query, Stats: snap, Outcomes: outcomes}, nil
}

// attempt fetches one URL directly and escalates any failure to the
// fallback reader. The returned outcome is terminal.
func (p *Pipeline) attempt(ctx context.Context, jb job) Outcome {
	att := p.Direct.Fetch(ctx, jb.hit.URL)
	source := SourceDirect
	if att.Class != fetch.ClassSuccess && p.Fallback != nil && ctx.Err() == nil {
		log.Debug().Str("url", jb.hit.URL).Str("class", att.Class).Err(att.Err).
			Msg("direct fetch failed, trying fallback reader")
		att = p.Fallback.Fetch(ctx, jb.hit.URL)
		source = SourceFallback
	}

	o := Outcome{ID: uuid.New(), Rank: jb.rank, URL: jb.hit.URL, Source: source, Class: att.Class}
	if att.Class != fetch.ClassSuccess {
		o.Status = StatusFailed
		o.Title = jb.hit.Title
		o.Err = att.Err
		log.Debug().Str("url", jb.hit.URL).Str("class", att.Class).Err(att.Err).Msg("page failed")
		return o
	}

	content, truncated := truncate(att.Content, p.MaxContent)
	o.Status = StatusSuccess
	o.Title = att.Title
	if o.Title == "" {
		o.Title = jb.hit.Title
	}
	o.Content = content
	o.CharCount = utf8.RuneCountInString(content)
	if truncated {
		log.Debug().Str("url", jb.hit.URL).Int("chars", o.CharCount).Msg("content truncated")
	}
	return o
}

// truncate cuts content at max runes and appends the marker. Content at
// or under the cap passes through untouched.
func truncate(content string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(content) <= max {
		return content, false
	}
	runes := []rune(content)
	return string(runes[:max]) + TruncationMarker, true
}
