package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itohnobue/web-search-agent/internal/pipeline"
)

// Output modes.
const (
	ModeRaw      = "raw"
	ModeJSON     = "json"
	ModeMarkdown = "markdown"
)

// previewRunes caps per-page content in the markdown digest.
const previewRunes = 2000

// Format renders a completed run in the requested mode. Only pages
// that produced content appear; order follows discovery order.
func Format(res *pipeline.Result, mode string) (string, error) {
	switch mode {
	case ModeRaw:
		return formatRaw(res), nil
	case ModeJSON:
		return formatJSON(res)
	case ModeMarkdown:
		return formatMarkdown(res), nil
	default:
		return "", fmt.Errorf("unknown output mode: %q", mode)
	}
}

// RawBlock renders one page as a raw block, for streaming output.
func RawBlock(o pipeline.Outcome) string {
	return fmt.Sprintf("=== %s ===\n%s", o.URL, o.Content)
}

func formatRaw(res *pipeline.Result) string {
	pages := res.Pages()
	blocks := make([]string, 0, len(pages))
	for _, o := range pages {
		blocks = append(blocks, RawBlock(o))
	}
	return strings.Join(blocks, "\n\n")
}

type jsonPage struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

type jsonStats struct {
	Searched     int `json:"urls_searched"`
	Fetched      int `json:"urls_fetched"`
	Filtered     int `json:"urls_filtered"`
	ContentChars int `json:"content_chars"`
	Fallbacks    int `json:"fallback_count"`
}

type jsonDocument struct {
	Query   string     `json:"query"`
	Stats   jsonStats  `json:"stats"`
	Content []jsonPage `json:"content"`
}

func formatJSON(res *pipeline.Result) (string, error) {
	pages := res.Pages()
	doc := jsonDocument{
		Query:   res.Query,
		Content: make([]jsonPage, 0, len(pages)),
		Stats: jsonStats{
			Searched:     res.Stats.Searched,
			Fetched:      res.Stats.Fetched(),
			Filtered:     res.Stats.Filtered,
			ContentChars: res.Stats.ContentChars,
			Fallbacks:    res.Stats.FetchedFallback,
		},
	}
	for _, o := range pages {
		doc.Content = append(doc.Content, jsonPage{
			URL:     o.URL,
			Title:   o.Title,
			Content: o.Content,
			Source:  o.Source,
		})
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func formatMarkdown(res *pipeline.Result) string {
	pages := res.Pages()
	var b strings.Builder
	fmt.Fprintf(&b, "# Research: %s\n\n", res.Query)
	fmt.Fprintf(&b, "**Sources Analyzed**: %d pages from %d search results\n\n",
		len(pages), res.Stats.Searched)
	b.WriteString("---\n")
	for _, o := range pages {
		title := o.Title
		if title == "" {
			title = o.URL
		}
		fmt.Fprintf(&b, "\n## %s\n\n", title)
		fmt.Fprintf(&b, "*Source: %s (%s)*\n\n", o.URL, o.Source)
		b.WriteString(preview(o.Content, previewRunes))
		b.WriteString("\n\n---\n")
	}
	return b.String()
}

func preview(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}
