package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestTerminal_OverwritesStatusLine(t *testing.T) {
	var buf bytes.Buffer
	r := &Terminal{Out: &buf}
	r.Start("go scheduler")
	r.Fetched(1, 3, 1200)
	r.Fetched(2, 3, 2400)

	out := buf.String()
	if !strings.Contains(out, `Researching: "go scheduler"`) {
		t.Fatalf("missing banner: %q", out)
	}
	if !strings.Contains(out, "\r    Progress: 1/3 pages (1,200 chars)\x1b[K") {
		t.Fatalf("missing first status: %q", out)
	}
	if !strings.Contains(out, "\r    Progress: 2/3 pages (2,400 chars)\x1b[K") {
		t.Fatalf("missing second status: %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("status updates must not add lines: %q", out)
	}
}

func TestTerminal_FinishTerminatesDirtyLine(t *testing.T) {
	var buf bytes.Buffer
	r := &Terminal{Out: &buf}
	r.Fetched(1, 1, 500)
	r.Finish(Summary{Fetched: 1, Accepted: 2, Fallback: 1, Filtered: 3, Chars: 4521})

	out := buf.String()
	want := "  Done: 1/2 pages (1 via fallback) [3 filtered] (4,521 chars)\n"
	if !strings.HasSuffix(out, want) {
		t.Fatalf("unexpected done line: %q", out)
	}
	if !strings.Contains(out, "\x1b[K\n  Done:") {
		t.Fatalf("dirty status line not terminated before summary: %q", out)
	}
}

func TestTerminal_FinishWithoutStatus(t *testing.T) {
	var buf bytes.Buffer
	r := &Terminal{Out: &buf}
	r.Finish(Summary{})
	if strings.HasPrefix(buf.String(), "\n") {
		t.Fatalf("no blank line expected without prior status: %q", buf.String())
	}
}

func TestComma(t *testing.T) {
	cases := map[int]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		12345:    "12,345",
		1234567:  "1,234,567",
		-1234567: "-1,234,567",
	}
	for n, want := range cases {
		if got := comma(n); got != want {
			t.Errorf("comma(%d) = %q, want %q", n, got, want)
		}
	}
}
