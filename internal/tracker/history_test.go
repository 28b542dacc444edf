package tracker

import (
	"testing"
	"time"
)

func TestHistoryAppendMergesRounds(t *testing.T) {
	h := NewHistory(10)
	h.Append(1, HistoryEvent{Text: "Round started"})
	now := time.Now()
	h.Append(1, HistoryEvent{Text: "Wizard casts Fireball", Timestamp: &now})
	h.Append(2, HistoryEvent{Text: "Round started"})

	entries := h.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 round entries, got %d", len(entries))
	}
	if len(entries[0].Events) != 2 || entries[0].Events[1].Text != "Wizard casts Fireball" {
		t.Fatalf("expected events merged into round 1 in call order, got %+v", entries[0].Events)
	}
	if entries[0].Events[1].Timestamp == nil {
		t.Fatalf("expected custom event to keep its timestamp")
	}
}

func TestHistoryEvictsOldestRounds(t *testing.T) {
	h := NewHistory(3)
	for round := 1; round <= 7; round++ {
		h.Append(round, HistoryEvent{Text: "Round started"})
	}
	entries := h.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, want := range []int{5, 6, 7} {
		if entries[i].Round != want {
			t.Fatalf("expected most recent rounds [5 6 7], got %+v", entries)
		}
	}
}

func TestHistorySearch(t *testing.T) {
	h := NewHistory(10)
	h.Append(1, HistoryEvent{Text: "Wizard casts Fireball"}, HistoryEvent{Text: "Rogue attacks Goblin"})
	h.Append(2, HistoryEvent{Text: "Goblin flees"})

	got := h.Search("wizard")
	if len(got) != 1 || got[0].Round != 1 {
		t.Fatalf("expected only round 1 to match, got %+v", got)
	}
	if len(got[0].Events) != 1 || got[0].Events[0].Text != "Wizard casts Fireball" {
		t.Fatalf("expected non-matching events filtered out, got %+v", got[0].Events)
	}

	// The stored log is untouched by searching.
	if len(h.Entries()[0].Events) != 2 {
		t.Fatalf("search mutated the stored log: %+v", h.Entries())
	}
	if all := h.Search(""); len(all) != 2 || len(all[0].Events) != 2 {
		t.Fatalf("expected empty query to return the full log, got %+v", all)
	}
}

func TestHistoryVisibleKeepsMostRecent(t *testing.T) {
	h := NewHistory(10)
	for round := 1; round <= 5; round++ {
		h.Append(round, HistoryEvent{Text: "Round started"})
	}
	visible := Visible(h.Entries(), 2)
	if len(visible) != 2 || visible[0].Round != 4 || visible[1].Round != 5 {
		t.Fatalf("expected the 2 most recent rounds, got %+v", visible)
	}
	if got := Visible(h.Entries(), 0); len(got) != 5 {
		t.Fatalf("expected non-positive cap to pass through, got %d entries", len(got))
	}
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(10)
	h.Append(1, HistoryEvent{Text: "Round started"})
	h.Clear()
	if h.Len() != 0 {
		t.Fatalf("expected empty log after clear, got %d entries", h.Len())
	}
}
