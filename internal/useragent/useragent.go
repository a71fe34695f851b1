package useragent

import "sync/atomic"

// defaultAgents are desktop browser User-Agent strings rotated across
// outbound requests so no single identity dominates a run.
var defaultAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:123.0) Gecko/20100101 Firefox/123.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Safari/605.1.15",
}

// Pool hands out User-Agent strings in round-robin order. Safe for
// concurrent use.
type Pool struct {
	agents  []string
	counter atomic.Uint64
}

// NewPool returns a pool over the given agents, or the default browser
// set when none are provided.
func NewPool(agents ...string) *Pool {
	if len(agents) == 0 {
		agents = defaultAgents
	}
	return &Pool{agents: agents}
}

// Next returns the next agent in rotation.
func (p *Pool) Next() string {
	n := p.counter.Add(1) - 1
	return p.agents[n%uint64(len(p.agents))]
}

// Size reports how many distinct agents the pool rotates through.
func (p *Pool) Size() int { return len(p.agents) }
