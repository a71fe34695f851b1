package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/itohnobue/web-search-agent/internal/app"
	"github.com/itohnobue/web-search-agent/internal/pipeline"
	"github.com/itohnobue/web-search-agent/internal/report"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		searchLimit int
		fetchCap    int
		maxContent  int
		minContent  int
		timeoutSec  int
		concurrency int
		output      string
		stream      bool
		quiet       bool
		verbose     bool
		configPath  string
		envFiles    []string
		searchFile  string
		searxURL    string
		searxKey    string
		showVersion bool
	)

	pflag.IntVarP(&searchLimit, "search", "s", app.DefaultSearchLimit, "Maximum search results to request")
	pflag.IntVarP(&fetchCap, "fetch", "f", app.DefaultFetchCap, "Maximum pages to fetch; 0 fetches every accepted result")
	pflag.IntVarP(&maxContent, "max-length", "m", app.DefaultMaxContent, "Per-page content cap in characters; 0 disables")
	pflag.IntVar(&minContent, "min-length", app.DefaultMinContent, "Minimum characters for a page to count as fetched")
	pflag.IntVarP(&timeoutSec, "timeout", "t", int(app.DefaultTimeout/time.Second), "Per-request timeout in seconds")
	pflag.IntVarP(&concurrency, "concurrent", "c", app.DefaultConcurrency, "Number of concurrent fetch workers")
	pflag.StringVarP(&output, "output", "o", app.DefaultOutput, "Output mode: raw, json, or markdown")
	pflag.BoolVar(&stream, "stream", false, "Print page blocks as they complete (raw output only)")
	pflag.BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	pflag.StringVar(&configPath, "config", "", "Path to YAML or JSON config file")
	pflag.StringArrayVar(&envFiles, "env-file", nil, "Extra dotenv file to load (repeatable)")
	pflag.StringVar(&searchFile, "search-file", "", "Path to JSON file for the offline file-based search provider")
	pflag.StringVar(&searxURL, "searx-url", "", "SearxNG base URL; empty selects DuckDuckGo")
	pflag.StringVar(&searxKey, "searx-key", "", "SearxNG API key (optional)")
	pflag.BoolVar(&showVersion, "version", false, "Print version and exit")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <query>\n\nFlags:\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if showVersion {
		fmt.Printf("websearch %s (%s, %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
		return
	}

	if pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	cfg := app.Config{
		Query:          strings.Join(pflag.Args(), " "),
		SearchLimit:    searchLimit,
		SearxURL:       searxURL,
		SearxKey:       searxKey,
		FileSearchPath: searchFile,
		FetchCap:       fetchCap,
		Timeout:        time.Duration(timeoutSec) * time.Second,
		Concurrency:    concurrency,
		MaxContent:     maxContent,
		MinContent:     minContent,
		Output:         output,
		Stream:         stream,
		Quiet:          quiet,
		Verbose:        verbose,
	}

	// Overlay order keeps precedence flags > env > file > defaults.
	if err := app.LoadEnvFiles(append([]string{".env"}, envFiles...)...); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	app.ApplyEnvToConfig(&cfg)
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		app.ApplyFileConfig(&cfg, fc)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	if err := app.ValidateConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	os.Exit(run(cfg))
}

func run(cfg app.Config) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	if cfg.Stream {
		a.OnPage = func(o pipeline.Outcome) {
			fmt.Printf("%s\n\n", report.RawBlock(o))
		}
	}

	res, err := a.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nInterrupted")
			return 130
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if !cfg.Stream {
		out, err := report.Format(res, cfg.Output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(out)
	}
	return 0
}
