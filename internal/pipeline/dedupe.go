package pipeline

import (
	"net/url"
	"strings"
	"sync"
)

// Canonicalize reduces a URL to its duplicate-detection form: scheme and
// host lowercased, fragment dropped, tracking parameters stripped, and a
// trailing path slash removed. Unparseable input is returned as-is so
// the registry still catches exact repeats.
func Canonicalize(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	changed := false
	for key := range q {
		lk := strings.ToLower(key)
		if strings.HasPrefix(lk, "utm_") || lk == "gclid" || lk == "fbclid" {
			q.Del(key)
			changed = true
		}
	}
	if changed || u.RawQuery != "" {
		u.RawQuery = q.Encode()
	}
	if len(u.Path) > 1 {
		u.Path = strings.TrimRight(u.Path, "/")
	}
	return u.String()
}

// Registry tracks canonicalized URLs already scheduled this run.
type Registry struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]struct{})}
}

// InsertIfAbsent records the URL's canonical form and reports true when
// it was not present before. False means the URL is a duplicate.
func (r *Registry) InsertIfAbsent(raw string) bool {
	key := Canonicalize(raw)
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.seen[key]; dup {
		return false
	}
	r.seen[key] = struct{}{}
	return true
}

// Len reports how many distinct URLs have been recorded.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}
