package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
// Nested sections improve readability and map naturally to flags/env.
type FileConfig struct {
	Search struct {
		Results  int    `yaml:"results" json:"results"`
		File     string `yaml:"file" json:"file"`
		SearxURL string `yaml:"searxURL" json:"searxURL"`
		SearxKey string `yaml:"searxKey" json:"searxKey"`
	} `yaml:"search" json:"search"`

	Fetch struct {
		Count      int `yaml:"count" json:"count"`
		Timeout    int `yaml:"timeout" json:"timeout"` // seconds
		Concurrent int `yaml:"concurrent" json:"concurrent"`
	} `yaml:"fetch" json:"fetch"`

	Content struct {
		Max int `yaml:"max" json:"max"`
		Min int `yaml:"min" json:"min"`
	} `yaml:"content" json:"content"`

	Reader struct {
		URL string `yaml:"url" json:"url"`
		Key string `yaml:"key" json:"key"`
	} `yaml:"reader" json:"reader"`

	Filter struct {
		BlockedDomains   []string `yaml:"blockedDomains" json:"blockedDomains"`
		ExcludedPatterns []string `yaml:"excludedPatterns" json:"excludedPatterns"`
	} `yaml:"filter" json:"filter"`

	Output  string `yaml:"output" json:"output"`
	Quiet   bool   `yaml:"quiet" json:"quiet"`
	Verbose bool   `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are currently unset or still at their default. Flags should already have
// been parsed; this lets file config supply defaults while preserving
// explicit flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}

	if (cfg.SearchLimit == 0 || cfg.SearchLimit == DefaultSearchLimit) && fc.Search.Results > 0 {
		cfg.SearchLimit = fc.Search.Results
	}
	if cfg.FileSearchPath == "" && fc.Search.File != "" {
		cfg.FileSearchPath = fc.Search.File
	}
	if cfg.SearxURL == "" && fc.Search.SearxURL != "" {
		cfg.SearxURL = fc.Search.SearxURL
	}
	if cfg.SearxKey == "" && fc.Search.SearxKey != "" {
		cfg.SearxKey = fc.Search.SearxKey
	}

	if cfg.FetchCap == 0 && fc.Fetch.Count > 0 {
		cfg.FetchCap = fc.Fetch.Count
	}
	if (cfg.Timeout == 0 || cfg.Timeout == DefaultTimeout) && fc.Fetch.Timeout > 0 {
		cfg.Timeout = time.Duration(fc.Fetch.Timeout) * time.Second
	}
	if (cfg.Concurrency == 0 || cfg.Concurrency == DefaultConcurrency) && fc.Fetch.Concurrent > 0 {
		cfg.Concurrency = fc.Fetch.Concurrent
	}

	if (cfg.MaxContent == 0 || cfg.MaxContent == DefaultMaxContent) && fc.Content.Max > 0 {
		cfg.MaxContent = fc.Content.Max
	}
	if (cfg.MinContent == 0 || cfg.MinContent == DefaultMinContent) && fc.Content.Min > 0 {
		cfg.MinContent = fc.Content.Min
	}

	if cfg.ReaderURL == "" && fc.Reader.URL != "" {
		cfg.ReaderURL = fc.Reader.URL
	}
	if cfg.ReaderKey == "" && fc.Reader.Key != "" {
		cfg.ReaderKey = fc.Reader.Key
	}

	if len(cfg.BlockedDomains) == 0 && len(fc.Filter.BlockedDomains) > 0 {
		cfg.BlockedDomains = append([]string{}, fc.Filter.BlockedDomains...)
	}
	if len(cfg.ExcludedPatterns) == 0 && len(fc.Filter.ExcludedPatterns) > 0 {
		cfg.ExcludedPatterns = append([]string{}, fc.Filter.ExcludedPatterns...)
	}

	if (cfg.Output == "" || cfg.Output == DefaultOutput) && fc.Output != "" {
		cfg.Output = fc.Output
	}
	if !cfg.Quiet && fc.Quiet {
		cfg.Quiet = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}
