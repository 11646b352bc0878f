package candidate_test

import (
	"testing"

	"github.com/zrn-ns/curacast/internal/candidate"
)

func TestIDForURLIsDeterministic(t *testing.T) {
	a := candidate.IDForURL("https://example.com/post/1")
	b := candidate.IDForURL("https://example.com/post/1")
	if a != b {
		t.Fatalf("same URL produced different ids: %q vs %q", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("expected 16-character id, got %q", a)
	}
	if c := candidate.IDForURL("https://example.com/post/2"); c == a {
		t.Fatalf("different URLs produced the same id %q", c)
	}
}

func TestIDForURLTrimsWhitespace(t *testing.T) {
	if candidate.IDForURL(" https://example.com/x ") != candidate.IDForURL("https://example.com/x") {
		t.Fatal("expected surrounding whitespace to be ignored")
	}
}

func TestEnsureID(t *testing.T) {
	c := candidate.Candidate{URL: "https://example.com/a"}
	c.EnsureID()
	if c.ID != candidate.IDForURL("https://example.com/a") {
		t.Fatalf("unexpected derived id %q", c.ID)
	}

	c = candidate.Candidate{ID: "preset", URL: "https://example.com/a"}
	c.EnsureID()
	if c.ID != "preset" {
		t.Fatalf("EnsureID overwrote explicit id: %q", c.ID)
	}
}
