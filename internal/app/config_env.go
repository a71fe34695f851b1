package app

import "os"

// ApplyEnvToConfig populates unset fields of cfg from environment
// variables. Explicit cfg values take precedence over env; call this
// before overlaying a config file so env beats the file too.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.ReaderURL == "" {
		// Support both WEBSEARCH_READER_URL and READER_URL; prefer the former
		v := os.Getenv("WEBSEARCH_READER_URL")
		if v == "" {
			v = os.Getenv("READER_URL")
		}
		cfg.ReaderURL = v
	}
	if cfg.ReaderKey == "" {
		v := os.Getenv("JINA_API_KEY")
		if v == "" {
			v = os.Getenv("WEBSEARCH_READER_KEY")
		}
		cfg.ReaderKey = v
	}

	if cfg.SearxURL == "" {
		cfg.SearxURL = os.Getenv("SEARXNG_URL")
	}
	if cfg.SearxKey == "" {
		cfg.SearxKey = os.Getenv("SEARXNG_KEY")
	}
}
