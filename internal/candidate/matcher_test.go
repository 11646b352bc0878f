package candidate_test

import (
	"testing"

	"github.com/zrn-ns/curacast/internal/candidate"
)

func pool() []candidate.Candidate {
	return []candidate.Candidate{
		{ID: "a1b2c3d4e5f60718", Title: "Go 1.25 released"},
		{ID: "ffee00112233aabb", Title: "Understanding io.Reader"},
		{ID: "0099887766554433", Title: "Postgres vacuuming in depth"},
	}
}

func TestExactIDStrategy(t *testing.T) {
	idx, ok := candidate.ExactID().Match("ffee00112233aabb", pool())
	if !ok || idx != 1 {
		t.Fatalf("exact match failed: idx=%d ok=%v", idx, ok)
	}
	if _, ok := candidate.ExactID().Match("FFEE00112233AABB", pool()); ok {
		t.Fatal("exact strategy must be case-sensitive")
	}
}

func TestNormalizedIDStrategy(t *testing.T) {
	idx, ok := candidate.NormalizedID().Match("  FFEE00112233AABB ", pool())
	if !ok || idx != 1 {
		t.Fatalf("normalized match failed: idx=%d ok=%v", idx, ok)
	}
	// Full-width characters fold to ASCII under NFKC.
	idx, ok = candidate.NormalizedID().Match("ａ１ｂ２ｃ３ｄ４ｅ５ｆ６０７１８", pool())
	if !ok || idx != 0 {
		t.Fatalf("NFKC fold failed: idx=%d ok=%v", idx, ok)
	}
}

func TestIndexFallbackStrategy(t *testing.T) {
	idx, ok := candidate.IndexFallback().Match("3", pool())
	if !ok || idx != 2 {
		t.Fatalf("index match failed: idx=%d ok=%v", idx, ok)
	}
	for _, raw := range []string{"0", "4", "x", ""} {
		if _, ok := candidate.IndexFallback().Match(raw, pool()); ok {
			t.Fatalf("index strategy accepted %q", raw)
		}
	}
}

func TestPrefixIDStrategy(t *testing.T) {
	idx, ok := candidate.PrefixID().Match("0099", pool())
	if !ok || idx != 2 {
		t.Fatalf("prefix match failed: idx=%d ok=%v", idx, ok)
	}
	if _, ok := candidate.PrefixID().Match("00", pool()); ok {
		t.Fatal("prefix strategy must require at least 4 characters")
	}
}

func TestTitleSubstringStrategy(t *testing.T) {
	idx, ok := candidate.TitleSubstring().Match("io.reader", pool())
	if !ok || idx != 1 {
		t.Fatalf("title match failed: idx=%d ok=%v", idx, ok)
	}
	if _, ok := candidate.TitleSubstring().Match("rust", pool()); ok {
		t.Fatal("unexpected title match")
	}
}

func TestMatcherEvaluatesInOrder(t *testing.T) {
	m := candidate.NewMatcher()
	// "2" is not an id in the pool, so the index fallback should claim it
	// before the title strategy ever runs.
	idx, strategy, ok := m.Match("2", pool())
	if !ok || idx != 1 || strategy != "index" {
		t.Fatalf("unexpected match: idx=%d strategy=%q ok=%v", idx, strategy, ok)
	}

	idx, strategy, ok = m.Match("a1b2c3d4e5f60718", pool())
	if !ok || idx != 0 || strategy != "exact" {
		t.Fatalf("expected exact match first: idx=%d strategy=%q ok=%v", idx, strategy, ok)
	}

	if _, _, ok := m.Match("nonexistent", pool()); ok {
		t.Fatal("expected no match")
	}
}

func TestMatcherCustomStrategyList(t *testing.T) {
	m := candidate.NewMatcher(candidate.ExactID())
	if _, _, ok := m.Match("2", pool()); ok {
		t.Fatal("exact-only matcher must not resolve ordinals")
	}
}
