package script

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/zrn-ns/curacast/internal/candidate"
	"github.com/zrn-ns/curacast/internal/logging"
)

type scriptedChatter struct {
	reply string
	user  string
}

func (s *scriptedChatter) Chat(_ context.Context, _ string, user string) (string, error) {
	s.user = user
	return s.reply, nil
}

func enrichedFixture() []candidate.Enriched {
	return []candidate.Enriched{
		{Candidate: candidate.Candidate{ID: "a1", Title: "Go 1.25 released", URL: "https://a.example/1", SourceName: "Hacker News"}, Body: "Go 1.25 ships with a new garbage collector."},
		{Candidate: candidate.Candidate{ID: "b2", Title: "Postgres vacuum internals", URL: "https://a.example/2", SourceName: "Hatena"}, Body: "Vacuum reclaims dead tuples."},
	}
}

func TestGenerateIncludesEveryArticleInPrompt(t *testing.T) {
	chatter := &scriptedChatter{reply: strings.Repeat("Welcome to the show. ", 40)}
	gen := NewLLMGenerator(chatter, logging.NewNop())

	text, err := gen.Generate(context.Background(), enrichedFixture())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text == "" {
		t.Fatal("empty script")
	}
	for _, want := range []string{"Go 1.25 released", "Postgres vacuum internals", "new garbage collector", "dead tuples"} {
		if !strings.Contains(chatter.user, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestGenerateStripsMarkdownArtifacts(t *testing.T) {
	reply := "## Intro\n\n**Welcome** to the show. " + strings.Repeat("Today we cover stories. ", 30)
	gen := NewLLMGenerator(&scriptedChatter{reply: reply}, logging.NewNop())

	text, err := gen.Generate(context.Background(), enrichedFixture())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if strings.Contains(text, "#") || strings.Contains(text, "**") {
		t.Fatalf("markdown left in script: %q", text[:80])
	}
}

func TestGenerateRejectsShortReply(t *testing.T) {
	gen := NewLLMGenerator(&scriptedChatter{reply: "Sorry, I cannot do that."}, logging.NewNop())
	if _, err := gen.Generate(context.Background(), enrichedFixture()); err == nil {
		t.Fatal("expected error for short reply")
	}
}

func TestGenerateRejectsEmptyArticleList(t *testing.T) {
	gen := NewLLMGenerator(&scriptedChatter{reply: "x"}, logging.NewNop())
	if _, err := gen.Generate(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty article list")
	}
}

func TestGenerateTruncatesOversizedBodies(t *testing.T) {
	articles := enrichedFixture()
	articles[0].Body = strings.Repeat("x", maxPromptBodyChars+500)
	chatter := &scriptedChatter{reply: strings.Repeat("Welcome. ", 60)}
	gen := NewLLMGenerator(chatter, logging.NewNop())

	if _, err := gen.Generate(context.Background(), articles); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if strings.Contains(chatter.user, strings.Repeat("x", maxPromptBodyChars+1)) {
		t.Fatal("prompt body not truncated")
	}
}

func TestArchiveSaveAndLoad(t *testing.T) {
	archive := NewArchive(t.TempDir())
	when := time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC)

	path, err := archive.Save("20260314-ab12cd34", "Welcome to the show.", enrichedFixture(), when)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasSuffix(path, "20260314-ab12cd34.md") {
		t.Fatalf("unexpected path %q", path)
	}

	got, err := archive.Load("20260314-ab12cd34")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	for _, want := range []string{"# Episode 20260314-ab12cd34", "Go 1.25 released", "Welcome to the show.", "2026-03-14T07:00:00Z"} {
		if !strings.Contains(got, want) {
			t.Fatalf("archived file missing %q", want)
		}
	}
}
