package pipeline

import (
	"fmt"
	"sync"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://Example.COM/Post", "https://example.com/Post"},
		{"https://example.com/post/", "https://example.com/post"},
		{"https://example.com/post#section-2", "https://example.com/post"},
		{"https://example.com/post?utm_source=nl&utm_medium=email", "https://example.com/post"},
		{"https://example.com/post?gclid=abc123", "https://example.com/post"},
		{"https://example.com/post?fbclid=xyz", "https://example.com/post"},
		{"https://example.com/post?page=2&utm_source=nl", "https://example.com/post?page=2"},
		{"https://example.com/", "https://example.com/"},
		{"https://example.com", "https://example.com"},
	}
	for _, tc := range cases {
		if got := Canonicalize(tc.in); got != tc.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRegistry_InsertIfAbsent(t *testing.T) {
	r := NewRegistry()
	if !r.InsertIfAbsent("https://example.com/post") {
		t.Fatal("first insert must succeed")
	}
	variants := []string{
		"https://example.com/post",
		"https://example.com/post/",
		"https://example.com/post#comments",
		"https://EXAMPLE.com/post?utm_campaign=x",
	}
	for _, v := range variants {
		if r.InsertIfAbsent(v) {
			t.Errorf("variant %q not recognized as duplicate", v)
		}
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 distinct entry, got %d", r.Len())
	}
}

func TestRegistry_ConcurrentInserts(t *testing.T) {
	r := NewRegistry()
	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- r.InsertIfAbsent("https://example.com/shared")
		}()
	}
	wg.Wait()
	close(wins)
	var winners int
	for w := range wins {
		if w {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestRegistry_DistinctURLsAllowed(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 10; i++ {
		u := fmt.Sprintf("https://example.com/post/%d", i)
		if !r.InsertIfAbsent(u) {
			t.Fatalf("distinct URL rejected: %s", u)
		}
	}
	if r.Len() != 10 {
		t.Fatalf("expected 10 entries, got %d", r.Len())
	}
}
