package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/itohnobue/web-search-agent/internal/fetch"
	"github.com/itohnobue/web-search-agent/internal/filter"
	"github.com/itohnobue/web-search-agent/internal/pipeline"
	"github.com/itohnobue/web-search-agent/internal/progress"
	"github.com/itohnobue/web-search-agent/internal/ratelimit"
	"github.com/itohnobue/web-search-agent/internal/search"
	"github.com/itohnobue/web-search-agent/internal/useragent"
)

// searchPageInterval spaces provider page requests; readerInterval is
// the global minimum gap between fallback reader calls.
const (
	searchPageInterval = 2 * time.Second
	readerInterval     = 500 * time.Millisecond
)

// App wires the configured pipeline together and runs it.
type App struct {
	cfg  Config
	pipe *pipeline.Pipeline

	// OnPage, when set before Run, receives each successful page as it
	// completes, in completion order.
	OnPage func(pipeline.Outcome)
}

// New assembles the pipeline from cfg. The config should already have
// passed ValidateConfig.
func New(cfg Config) (*App, error) {
	hc := newHTTPClient()
	agents := useragent.NewPool()

	flt, err := filter.New(cfg.BlockedDomains, cfg.ExcludedPatterns)
	if err != nil {
		return nil, err
	}

	var provider search.Provider
	switch {
	case cfg.FileSearchPath != "":
		provider = &search.FileProvider{Path: cfg.FileSearchPath}
	case cfg.SearxURL != "":
		provider = &search.SearxNG{BaseURL: cfg.SearxURL, APIKey: cfg.SearxKey, HTTPClient: hc, UserAgent: agents.Next()}
	default:
		provider = &search.DuckDuckGo{
			HTTPClient: hc,
			Agents:     agents,
			Pace:       rate.NewLimiter(rate.Every(searchPageInterval), 1),
		}
	}
	log.Debug().Str("provider", provider.Name()).Msg("search provider selected")

	direct := &fetch.Client{
		HTTPClient: hc,
		Agents:     agents,
		Timeout:    cfg.Timeout,
		MinContent: cfg.MinContent,
	}
	fallback := &fetch.Reader{
		BaseURL:    cfg.ReaderURL,
		APIKey:     cfg.ReaderKey,
		HTTPClient: hc,
		Agents:     agents,
		Timeout:    cfg.Timeout,
		MinContent: cfg.MinContent,
		Limiter:    ratelimit.NewInterval(readerInterval),
	}

	var rep progress.Reporter = &progress.Terminal{Out: os.Stderr}
	if cfg.Quiet {
		rep = progress.Nop{}
	}

	a := &App{
		cfg: cfg,
		pipe: &pipeline.Pipeline{
			Provider:    provider,
			Filter:      flt,
			Direct:      direct,
			Fallback:    fallback,
			Reporter:    rep,
			SearchLimit: cfg.SearchLimit,
			FetchCap:    cfg.FetchCap,
			Concurrency: cfg.Concurrency,
			MaxContent:  cfg.MaxContent,
		},
	}
	return a, nil
}

// Run executes one research pass and returns the collected result.
func (a *App) Run(ctx context.Context) (*pipeline.Result, error) {
	if a.OnPage != nil {
		a.pipe.OnOutcome = a.OnPage
	}
	res, err := a.pipe.Run(ctx, a.cfg.Query)
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}
	return res, nil
}
