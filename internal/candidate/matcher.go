package candidate

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Strategy matches a raw model-returned identifier against a candidate pool
// and reports the matching index. Strategies must be pure: no state, no
// side effects, so each one is independently testable.
type Strategy struct {
	Name  string
	Match func(raw string, pool []Candidate) (int, bool)
}

// Matcher evaluates an ordered strategy list until one matches. Model output
// is untrusted: identifiers come back truncated, re-cased, or replaced with
// ordinals, so exact matching alone loses articles.
type Matcher struct {
	strategies []Strategy
}

// NewMatcher builds a matcher over the given strategies, evaluated in order.
// With no arguments the default strategy list is used.
func NewMatcher(strategies ...Strategy) *Matcher {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Matcher{strategies: strategies}
}

// Match returns the pool index the raw identifier resolves to, along with
// the name of the strategy that matched.
func (m *Matcher) Match(raw string, pool []Candidate) (int, string, bool) {
	for _, s := range m.strategies {
		if idx, ok := s.Match(raw, pool); ok && idx >= 0 && idx < len(pool) {
			return idx, s.Name, true
		}
	}
	return -1, "", false
}

// DefaultStrategies returns the standard fallback chain: exact id,
// normalized id, 1-based index, id prefix, title substring.
func DefaultStrategies() []Strategy {
	return []Strategy{
		ExactID(),
		NormalizedID(),
		IndexFallback(),
		PrefixID(),
		TitleSubstring(),
	}
}

// ExactID matches the raw string byte-for-byte against candidate ids.
func ExactID() Strategy {
	return Strategy{
		Name: "exact",
		Match: func(raw string, pool []Candidate) (int, bool) {
			for i, c := range pool {
				if raw == c.ID {
					return i, true
				}
			}
			return -1, false
		},
	}
}

// NormalizedID matches after NFKC normalization, case folding, and trimming
// on both sides. Catches smart quotes, full-width characters, and stray
// whitespace introduced by the model.
func NormalizedID() Strategy {
	return Strategy{
		Name: "normalized",
		Match: func(raw string, pool []Candidate) (int, bool) {
			want := normalizeID(raw)
			if want == "" {
				return -1, false
			}
			for i, c := range pool {
				if normalizeID(c.ID) == want {
					return i, true
				}
			}
			return -1, false
		},
	}
}

// IndexFallback interprets the raw value as a 1-based position in the pool.
func IndexFallback() Strategy {
	return Strategy{
		Name: "index",
		Match: func(raw string, pool []Candidate) (int, bool) {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || n < 1 || n > len(pool) {
				return -1, false
			}
			return n - 1, true
		},
	}
}

// PrefixID matches a truncated identifier against candidate id prefixes.
// Requires at least 4 characters to avoid accidental hits.
func PrefixID() Strategy {
	return Strategy{
		Name: "prefix",
		Match: func(raw string, pool []Candidate) (int, bool) {
			trimmed := normalizeID(raw)
			if len(trimmed) < 4 {
				return -1, false
			}
			for i, c := range pool {
				if strings.HasPrefix(normalizeID(c.ID), trimmed) {
					return i, true
				}
			}
			return -1, false
		},
	}
}

// TitleSubstring matches when the raw value appears inside a candidate
// title (case-insensitive). Known-fuzzy: overlapping titles can mismatch,
// which is why this strategy sits last in the default chain.
func TitleSubstring() Strategy {
	return Strategy{
		Name: "title",
		Match: func(raw string, pool []Candidate) (int, bool) {
			needle := strings.ToLower(strings.TrimSpace(raw))
			if len(needle) < 4 {
				return -1, false
			}
			for i, c := range pool {
				if strings.Contains(strings.ToLower(c.Title), needle) {
					return i, true
				}
			}
			return -1, false
		},
	}
}

func normalizeID(value string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFKC.String(value)))
}
