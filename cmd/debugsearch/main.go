package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/itohnobue/web-search-agent/internal/search"
	"github.com/itohnobue/web-search-agent/internal/useragent"
)

func main() {
	q := "what is a goroutine"
	if len(os.Args) > 1 {
		q = strings.Join(os.Args[1:], " ")
	}
	client := &http.Client{Timeout: 20 * time.Second}

	var prov search.Provider
	if base := os.Getenv("SEARXNG_URL"); base != "" {
		prov = &search.SearxNG{BaseURL: base, HTTPClient: client, UserAgent: "debugsearch/1.0"}
	} else {
		prov = &search.DuckDuckGo{HTTPClient: client, Agents: useragent.NewPool()}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	err := prov.Search(ctx, q, 10, func(h search.Hit) bool {
		fmt.Printf("%d. %s - %s\n", h.Rank, h.Title, h.URL)
		return true
	})
	if err != nil {
		fmt.Println("err:", err)
	}
}
