package selection

import (
	"context"
	"errors"
	"testing"

	"github.com/zrn-ns/curacast/internal/candidate"
	"github.com/zrn-ns/curacast/internal/logging"
)

type scriptedChatter struct {
	reply string
	err   error
	user  string
}

func (s *scriptedChatter) Chat(_ context.Context, _ string, user string) (string, error) {
	s.user = user
	return s.reply, s.err
}

func testPool() []candidate.Candidate {
	return []candidate.Candidate{
		{ID: "aaaa1111bbbb2222", URL: "https://a.example/1", Title: "Go 1.25 released", Source: "hackernews"},
		{ID: "cccc3333dddd4444", URL: "https://a.example/2", Title: "Postgres vacuum internals", Source: "hatena"},
		{ID: "eeee5555ffff6666", URL: "https://a.example/3", Title: "A tour of io_uring", Source: "hackernews"},
	}
}

func TestSelectResolvesExactAndFuzzyReferences(t *testing.T) {
	chatter := &scriptedChatter{reply: `[
		{"id": "cccc3333dddd4444", "reason": "deep dive"},
		{"id": "3", "reason": "kernel content"},
		{"id": "AAAA1111", "reason": "release news"}
	]`}
	selector := NewLLMSelector(chatter, logging.NewNop())

	sel, err := selector.Select(context.Background(), testPool(), 3)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(sel.Selected) != 3 {
		t.Fatalf("expected 3 picks, got %d", len(sel.Selected))
	}
	// Exact id, 1-based index, id prefix, in the model's priority order.
	wantIDs := []string{"cccc3333dddd4444", "eeee5555ffff6666", "aaaa1111bbbb2222"}
	for i, want := range wantIDs {
		if sel.Selected[i].ID != want {
			t.Fatalf("pick %d = %s, want %s", i, sel.Selected[i].ID, want)
		}
		if sel.Priorities[want] != i+1 {
			t.Fatalf("priority for %s = %d, want %d", want, sel.Priorities[want], i+1)
		}
	}
	if sel.Reasons["cccc3333dddd4444"] != "deep dive" {
		t.Fatalf("reason not carried: %q", sel.Reasons["cccc3333dddd4444"])
	}
}

func TestSelectToleratesCodeFencesAndProse(t *testing.T) {
	chatter := &scriptedChatter{reply: "Here are my picks:\n```json\n[{\"id\": \"1\", \"reason\": \"top story\"}]\n```"}
	selector := NewLLMSelector(chatter, logging.NewNop())

	sel, err := selector.Select(context.Background(), testPool(), 2)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(sel.Selected) != 1 || sel.Selected[0].ID != "aaaa1111bbbb2222" {
		t.Fatalf("unexpected picks: %+v", sel.Selected)
	}
}

func TestSelectSkipsUnresolvableAndDuplicateReferences(t *testing.T) {
	chatter := &scriptedChatter{reply: `[
		{"id": "1", "reason": "first"},
		{"id": "zzzz-not-a-candidate-9999", "reason": "ghost"},
		{"id": "aaaa1111bbbb2222", "reason": "again"},
		{"id": "2", "reason": "second"}
	]`}
	selector := NewLLMSelector(chatter, logging.NewNop())

	sel, err := selector.Select(context.Background(), testPool(), 5)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(sel.Selected) != 2 {
		t.Fatalf("expected 2 picks, got %d: %+v", len(sel.Selected), sel.Selected)
	}
	if sel.Selected[0].ID != "aaaa1111bbbb2222" || sel.Selected[1].ID != "cccc3333dddd4444" {
		t.Fatalf("unexpected picks: %+v", sel.Selected)
	}
}

func TestSelectCapsAtRequestedCount(t *testing.T) {
	chatter := &scriptedChatter{reply: `[{"id":"1","reason":"a"},{"id":"2","reason":"b"},{"id":"3","reason":"c"}]`}
	selector := NewLLMSelector(chatter, logging.NewNop())

	sel, err := selector.Select(context.Background(), testPool(), 2)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(sel.Selected) != 2 {
		t.Fatalf("expected cap at 2, got %d", len(sel.Selected))
	}
}

func TestSelectEmptyPool(t *testing.T) {
	selector := NewLLMSelector(&scriptedChatter{reply: "[]"}, logging.NewNop())
	sel, err := selector.Select(context.Background(), nil, 3)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(sel.Selected) != 0 {
		t.Fatalf("expected no picks for empty pool")
	}
}

func TestSelectPropagatesChatFailure(t *testing.T) {
	chatter := &scriptedChatter{err: errors.New("endpoint down")}
	selector := NewLLMSelector(chatter, logging.NewNop())

	if _, err := selector.Select(context.Background(), testPool(), 2); err == nil {
		t.Fatal("expected error when chat fails")
	}
}

func TestSelectGarbageReplyIsAnError(t *testing.T) {
	chatter := &scriptedChatter{reply: "I could not decide, sorry."}
	selector := NewLLMSelector(chatter, logging.NewNop())

	if _, err := selector.Select(context.Background(), testPool(), 2); err == nil {
		t.Fatal("expected error for unparseable reply")
	}
}
