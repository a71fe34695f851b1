package progress

import (
	"fmt"
	"io"
	"strconv"
	"sync"
)

// Summary feeds the final status line.
type Summary struct {
	Fetched  int // pages that produced content
	Accepted int // URLs scheduled for fetching
	Fallback int // successes via the fallback reader
	Filtered int
	Chars    int
}

// Reporter receives live pipeline events. Implementations must be safe
// for concurrent use; workers call Fetched from multiple goroutines.
type Reporter interface {
	Start(query string)
	Searching(found, want int)
	Fetched(done, total, chars int)
	Finish(s Summary)
}

// Terminal renders single-line progress with carriage returns, the way
// interactive CLIs overwrite their status line. Writes go to Out,
// normally stderr so stdout stays clean for results.
type Terminal struct {
	Out io.Writer

	mu    sync.Mutex
	dirty bool // an unterminated \r status line is on screen
}

func (t *Terminal) Start(query string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.Out, "Researching: %q\n", query)
}

func (t *Terminal) Searching(found, want int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.Out, "\r    Search: %d/%d\x1b[K", found, want)
	t.dirty = true
}

func (t *Terminal) Fetched(done, total, chars int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.Out, "\r    Progress: %d/%d pages (%s chars)\x1b[K", done, total, comma(chars))
	t.dirty = true
}

func (t *Terminal) Finish(s Summary) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dirty {
		fmt.Fprintln(t.Out)
		t.dirty = false
	}
	fmt.Fprintf(t.Out, "  Done: %d/%d pages (%d via fallback) [%d filtered] (%s chars)\n",
		s.Fetched, s.Accepted, s.Fallback, s.Filtered, comma(s.Chars))
}

// Nop drops all events, for quiet mode and tests.
type Nop struct{}

func (Nop) Start(string) {}

func (Nop) Searching(int, int) {}

func (Nop) Fetched(int, int, int) {}

func (Nop) Finish(Summary) {}

// comma renders n with thousands separators.
func comma(n int) string {
	if n < 0 {
		return "-" + comma(-n)
	}
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i := 0; i < len(s); i++ {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}
