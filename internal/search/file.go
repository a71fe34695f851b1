package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// FileProvider streams search results from a local JSON file for
// offline and testing use. The file holds an array of objects:
// {"title": "...", "url": "...", "snippet": "..."}.
type FileProvider struct {
	Path string
}

func (f *FileProvider) Name() string { return "file" }

func (f *FileProvider) Search(ctx context.Context, query string, limit int, yield func(Hit) bool) error {
	if strings.TrimSpace(f.Path) == "" {
		return errors.New("file provider path is empty")
	}
	if limit <= 0 {
		return nil
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("file provider: %w", err)
	}
	var raw []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Snippet string `json:"snippet"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("file provider: %w", err)
	}
	q := strings.ToLower(strings.TrimSpace(query))
	yielded := 0
	for _, r := range raw {
		if err := ctx.Err(); err != nil {
			return err
		}
		if r.URL == "" || r.Title == "" {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.Title), q) &&
			!strings.Contains(strings.ToLower(r.Snippet), q) {
			continue
		}
		yielded++
		hit := Hit{Title: r.Title, URL: r.URL, Snippet: r.Snippet, Rank: yielded, Source: f.Name()}
		if !yield(hit) || yielded >= limit {
			return nil
		}
	}
	return nil
}
