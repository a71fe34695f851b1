package pipeline

import "sync"

// Stats is a consistent snapshot of the run counters.
//
// Two identities hold at the end of a run:
//
//	Searched = Filtered + Accepted
//	Accepted = FetchedDirect + FetchedFallback + Failed + Skipped
type Stats struct {
	Searched        int
	Filtered        int
	Accepted        int
	FetchedDirect   int
	FetchedFallback int
	Failed          int
	Skipped         int
	ContentChars    int
}

// Fetched is the number of pages that produced content.
func (s Stats) Fetched() int { return s.FetchedDirect + s.FetchedFallback }

// Collector accumulates run counters from concurrent workers.
type Collector struct {
	mu sync.Mutex
	s  Stats
}

func (c *Collector) Searched() {
	c.mu.Lock()
	c.s.Searched++
	c.mu.Unlock()
}

func (c *Collector) Filtered() {
	c.mu.Lock()
	c.s.Filtered++
	c.mu.Unlock()
}

func (c *Collector) Accepted() {
	c.mu.Lock()
	c.s.Accepted++
	c.mu.Unlock()
}

func (c *Collector) SucceededDirect(chars int) {
	c.mu.Lock()
	c.s.FetchedDirect++
	c.s.ContentChars += chars
	c.mu.Unlock()
}

func (c *Collector) SucceededFallback(chars int) {
	c.mu.Lock()
	c.s.FetchedFallback++
	c.s.ContentChars += chars
	c.mu.Unlock()
}

func (c *Collector) Failed() {
	c.mu.Lock()
	c.s.Failed++
	c.mu.Unlock()
}

func (c *Collector) Skipped() {
	c.mu.Lock()
	c.s.Skipped++
	c.mu.Unlock()
}

// Snapshot returns a copy of the counters.
func (c *Collector) Snapshot() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s
}
