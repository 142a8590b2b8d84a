package utils

import "testing"

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Fatalf("short string changed: %q", got)
	}
	if got := Truncate("hello world", 5); got != "hello..." {
		t.Fatalf("got %q", got)
	}
	// Rune boundaries, not byte boundaries.
	if got := Truncate("我想拍一部电影", 3); got != "我想拍..." {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("anything", 0); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]string{"记忆", "", "时间", "记忆", "孤独"})
	want := []string{"记忆", "时间", "孤独"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
