package app

import (
	"fmt"
	"strings"
	"time"
)

// Defaults applied by the CLI when a setting arrives from nowhere else.
const (
	DefaultSearchLimit = 50
	DefaultFetchCap    = 0 // no cap
	DefaultMaxContent  = 4000
	DefaultMinContent  = 200
	DefaultTimeout     = 20 * time.Second
	DefaultConcurrency = 10
	DefaultOutput      = "raw"
)

// Config holds runtime configuration for one run.
// Precedence: flags > environment > config file > defaults.
type Config struct {
	Query string

	// Search
	SearchLimit    int    // how many hits to request from the provider
	SearxURL       string // optional SearxNG instance; empty selects DuckDuckGo
	SearxKey       string
	FileSearchPath string // JSON fixture provider for offline runs

	// Fetching
	FetchCap    int // max fetch attempts; 0 means fetch every accepted URL
	Timeout     time.Duration
	Concurrency int

	// Content
	MaxContent int // per-page rune cap; 0 means uncapped
	MinContent int // success threshold in runes

	// Fallback reader
	ReaderURL string
	ReaderKey string

	// Filtering, additive to the built-in rules
	BlockedDomains   []string
	ExcludedPatterns []string

	// Output
	Output  string // raw, json, or markdown
	Stream  bool   // emit raw blocks as pages complete
	Quiet   bool
	Verbose bool
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Query) == "" {
		return fmt.Errorf("config: query is required")
	}
	if cfg.SearchLimit < 0 || cfg.FetchCap < 0 || cfg.MaxContent < 0 || cfg.MinContent < 0 {
		return fmt.Errorf("config: negative limits are not allowed")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive")
	}
	if cfg.Concurrency <= 0 {
		return fmt.Errorf("config: concurrency must be positive")
	}
	if cfg.MaxContent > 0 && cfg.MaxContent < cfg.MinContent {
		return fmt.Errorf("config: max content %d is below the min content threshold %d", cfg.MaxContent, cfg.MinContent)
	}
	switch cfg.Output {
	case "raw", "json", "markdown":
	default:
		return fmt.Errorf("config: unknown output mode %q", cfg.Output)
	}
	if cfg.Stream && cfg.Output != "raw" {
		return fmt.Errorf("config: stream mode requires raw output")
	}
	return nil
}
