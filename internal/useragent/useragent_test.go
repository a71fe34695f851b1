package useragent

import "testing"

func TestNext_RotatesAndWraps(t *testing.T) {
	p := NewPool("a", "b", "c")
	got := []string{p.Next(), p.Next(), p.Next(), p.Next()}
	want := []string{"a", "b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("rotation[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewPool_Defaults(t *testing.T) {
	p := NewPool()
	if p.Size() == 0 {
		t.Fatalf("expected non-empty default pool")
	}
	if p.Next() == "" {
		t.Fatalf("expected non-empty agent")
	}
}
