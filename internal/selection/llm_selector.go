package selection

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zrn-ns/curacast/internal/candidate"
	"github.com/zrn-ns/curacast/internal/llm"
	"github.com/zrn-ns/curacast/internal/logging"
	"github.com/zrn-ns/curacast/internal/services"
)

const selectionSystemPrompt = `You curate articles for a daily tech news podcast.
From the numbered candidate list pick the articles most worth covering, best first.
Prefer substantive, original reporting over link roundups and release notes.
Respond with a JSON array only, no prose, no code fences:
[{"id": "<candidate id>", "reason": "<one short sentence>"}]`

// LLMSelector asks a chat model to rank the pool. Model references are
// resolved through the matcher chain because ids come back truncated or
// replaced with list positions more often than not.
type LLMSelector struct {
	chatter llm.Chatter
	matcher *candidate.Matcher
	logger  *slog.Logger
}

// NewLLMSelector wires a selector over the given chat client.
func NewLLMSelector(chatter llm.Chatter, logger *slog.Logger) *LLMSelector {
	return &LLMSelector{
		chatter: chatter,
		matcher: candidate.NewMatcher(),
		logger:  logging.NewComponentLogger(logger, "selection"),
	}
}

type rankedPick struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// Select asks the model for up to count picks and maps them back onto the
// pool. Unresolvable references are logged and skipped rather than failing
// the run; duplicates resolve to their first occurrence.
func (s *LLMSelector) Select(ctx context.Context, pool []candidate.Candidate, count int) (candidate.Selection, error) {
	selection := candidate.Selection{
		Reasons:    map[string]string{},
		Priorities: map[string]int{},
	}
	if len(pool) == 0 || count < 1 {
		return selection, nil
	}

	reply, err := s.chatter.Chat(ctx, selectionSystemPrompt, buildPoolPrompt(pool, count))
	if err != nil {
		return selection, services.Wrap(services.ErrExternalTool, "selection", "chat", "article selection request failed", err)
	}

	picks, err := parsePicks(reply)
	if err != nil {
		return selection, services.Wrap(services.ErrExternalTool, "selection", "parse", "selector reply was not parseable", err)
	}

	seen := map[string]bool{}
	for _, pick := range picks {
		if len(selection.Selected) >= count {
			break
		}
		idx, strategy, ok := s.matcher.Match(pick.ID, pool)
		if !ok {
			s.logger.Warn("selector reference did not resolve", logging.String("reference", pick.ID))
			continue
		}
		chosen := pool[idx]
		if seen[chosen.ID] {
			continue
		}
		seen[chosen.ID] = true
		selection.Selected = append(selection.Selected, chosen)
		selection.Priorities[chosen.ID] = len(selection.Selected)
		selection.Reasons[chosen.ID] = strings.TrimSpace(pick.Reason)
		if strategy != "exact" {
			s.logger.Debug("selector reference matched via fallback",
				logging.String("reference", pick.ID),
				logging.String("strategy", strategy),
				logging.String("candidate_id", chosen.ID),
			)
		}
	}

	s.logger.Info("selection complete",
		logging.Int("pool", len(pool)),
		logging.Int("requested", count),
		logging.Int("selected", len(selection.Selected)),
	)
	return selection, nil
}

func buildPoolPrompt(pool []candidate.Candidate, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pick up to %d articles from these %d candidates:\n\n", count, len(pool))
	for i, c := range pool {
		fmt.Fprintf(&b, "%d. id=%s source=%s\n   title: %s\n", i+1, c.ID, c.Source, c.Title)
		if c.Description != "" {
			fmt.Fprintf(&b, "   description: %s\n", c.Description)
		}
		if c.Metadata.Bookmarks > 0 {
			fmt.Fprintf(&b, "   bookmarks: %d\n", c.Metadata.Bookmarks)
		}
		if c.Metadata.Points > 0 {
			fmt.Fprintf(&b, "   points: %d\n", c.Metadata.Points)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// parsePicks tolerates the usual model formatting slop: code fences and
// leading prose before the array.
func parsePicks(reply string) ([]rankedPick, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if start := strings.Index(cleaned, "["); start > 0 {
		cleaned = cleaned[start:]
	}
	if end := strings.LastIndex(cleaned, "]"); end >= 0 && end < len(cleaned)-1 {
		cleaned = cleaned[:end+1]
	}

	var picks []rankedPick
	if err := json.Unmarshal([]byte(cleaned), &picks); err != nil {
		return nil, fmt.Errorf("decode picks: %w", err)
	}
	return picks, nil
}
