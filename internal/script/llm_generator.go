package script

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zrn-ns/curacast/internal/candidate"
	"github.com/zrn-ns/curacast/internal/llm"
	"github.com/zrn-ns/curacast/internal/logging"
	"github.com/zrn-ns/curacast/internal/services"
)

const scriptSystemPrompt = `You write the script for a solo-host daily tech news podcast.
Write flowing spoken prose covering every article given, in the order given.
Open with a short greeting, transition naturally between stories, close with a short sign-off.
Plain text only: no markdown, no headings, no stage directions, no URLs read aloud.
Separate paragraphs with blank lines.`

// Articles shorter than this are a sign the model refused or summarized
// instead of writing a script.
const minScriptChars = 400

// Per-article body budget in the prompt. Keeps the request inside context
// limits even when an extractor returns a very long page.
const maxPromptBodyChars = 8000

// LLMGenerator produces the episode script through a chat model.
type LLMGenerator struct {
	chatter llm.Chatter
	logger  *slog.Logger
}

// NewLLMGenerator wires a generator over the given chat client.
func NewLLMGenerator(chatter llm.Chatter, logger *slog.Logger) *LLMGenerator {
	return &LLMGenerator{
		chatter: chatter,
		logger:  logging.NewComponentLogger(logger, "script"),
	}
}

// Generate builds the prompt from the enriched articles and returns the
// cleaned script text. An empty article list is a caller bug.
func (g *LLMGenerator) Generate(ctx context.Context, articles []candidate.Enriched) (string, error) {
	if len(articles) == 0 {
		return "", services.Wrap(services.ErrValidation, "script", "generate", "no articles to script", nil)
	}

	reply, err := g.chatter.Chat(ctx, scriptSystemPrompt, buildScriptPrompt(articles))
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "script", "chat", "script generation request failed", err)
	}

	text := cleanScript(reply)
	if len(text) < minScriptChars {
		return "", services.Wrap(services.ErrExternalTool, "script", "validate",
			fmt.Sprintf("generated script too short (%d chars)", len(text)), nil)
	}

	g.logger.Info("script generated",
		logging.Int("articles", len(articles)),
		logging.Int("chars", len(text)),
	)
	return text, nil
}

func buildScriptPrompt(articles []candidate.Enriched) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write today's episode covering these %d articles:\n\n", len(articles))
	for i, a := range articles {
		body := a.Body
		if len(body) > maxPromptBodyChars {
			body = body[:maxPromptBodyChars]
		}
		fmt.Fprintf(&b, "=== Article %d ===\ntitle: %s\nsource: %s\n\n%s\n\n", i+1, a.Candidate.Title, a.Candidate.SourceName, body)
	}
	return b.String()
}

// cleanScript strips the markdown artifacts models add despite being told
// not to.
func cleanScript(reply string) string {
	text := strings.TrimSpace(reply)
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimLeft(trimmed, "#")
		trimmed = strings.ReplaceAll(trimmed, "**", "")
		cleaned = append(cleaned, strings.TrimSpace(trimmed))
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
