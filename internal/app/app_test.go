package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/itohnobue/web-search-agent/internal/pipeline"
	"github.com/itohnobue/web-search-agent/internal/progress"
	"github.com/itohnobue/web-search-agent/internal/search"
)

func testConfig() Config {
	return Config{
		Query:       "scheduler",
		SearchLimit: 10,
		Timeout:     5 * time.Second,
		Concurrency: 2,
		MaxContent:  0,
		MinContent:  50,
		Output:      "raw",
		Quiet:       true,
	}
}

func TestNew_SelectsProviderByConfig(t *testing.T) {
	cfg := testConfig()
	cfg.FileSearchPath = "results.json"
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := a.pipe.Provider.(*search.FileProvider); !ok {
		t.Fatalf("provider = %T, want *search.FileProvider", a.pipe.Provider)
	}

	cfg = testConfig()
	cfg.SearxURL = "http://localhost:8888"
	a, err = New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := a.pipe.Provider.(*search.SearxNG); !ok {
		t.Fatalf("provider = %T, want *search.SearxNG", a.pipe.Provider)
	}

	cfg = testConfig()
	a, err = New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := a.pipe.Provider.(*search.DuckDuckGo); !ok {
		t.Fatalf("provider = %T, want *search.DuckDuckGo", a.pipe.Provider)
	}
}

func TestNew_ReporterRespectsQuiet(t *testing.T) {
	cfg := testConfig()
	cfg.Quiet = false
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := a.pipe.Reporter.(*progress.Terminal); !ok {
		t.Fatalf("reporter = %T, want *progress.Terminal", a.pipe.Reporter)
	}

	cfg.Quiet = true
	a, err = New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := a.pipe.Reporter.(progress.Nop); !ok {
		t.Fatalf("reporter = %T, want progress.Nop", a.pipe.Reporter)
	}
}

func TestNew_BadExcludedPatternFails(t *testing.T) {
	cfg := testConfig()
	cfg.ExcludedPatterns = []string{"["}
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

// TestApp_RunOffline drives a full run against a local page server using
// the file-based search provider, covering wiring end to end without any
// external traffic.
func TestApp_RunOffline(t *testing.T) {
	article := "<html><head><title>Scheduler Notes</title></head><body><article><p>" +
		strings.Repeat("The scheduler multiplexes goroutines onto threads. ", 10) +
		"</p></article></body></html>"
	pages := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, article)
	}))
	defer pages.Close()

	// The reader stub must stay untouched: every direct fetch succeeds.
	reader := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected fallback call: %s", r.URL)
		http.Error(w, "no", http.StatusBadGateway)
	}))
	defer reader.Close()

	rows := []map[string]string{
		{"title": "Scheduler internals", "url": pages.URL + "/a", "snippet": "runqueues"},
		{"title": "Scheduler discussion", "url": "https://reddit.com/r/golang/1", "snippet": "thread"},
		{"title": "Scheduler deep dive", "url": pages.URL + "/b", "snippet": "preemption"},
	}
	data, err := json.Marshal(rows)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	fixture := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(fixture, data, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := testConfig()
	cfg.FileSearchPath = fixture
	cfg.ReaderURL = reader.URL

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var streamed []pipeline.Outcome
	a.OnPage = func(o pipeline.Outcome) { streamed = append(streamed, o) }

	res, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s := res.Stats
	if s.Searched != 3 || s.Filtered != 1 || s.Accepted != 2 {
		t.Fatalf("funnel stats wrong: %+v", s)
	}
	if s.FetchedDirect != 2 || s.FetchedFallback != 0 || s.Failed != 0 {
		t.Fatalf("fetch stats wrong: %+v", s)
	}
	pagesOut := res.Pages()
	if len(pagesOut) != 2 {
		t.Fatalf("pages = %d, want 2", len(pagesOut))
	}
	if pagesOut[0].URL != rows[0]["url"] || pagesOut[1].URL != rows[2]["url"] {
		t.Fatalf("pages out of discovery order: %q then %q", pagesOut[0].URL, pagesOut[1].URL)
	}
	if pagesOut[0].Title != "Scheduler Notes" {
		t.Fatalf("title = %q, want extracted page title", pagesOut[0].Title)
	}
	if len(streamed) != 2 {
		t.Fatalf("streamed %d pages, want 2", len(streamed))
	}
}
