package tracker

import (
	"strings"
	"time"
)

// HistoryEvent is a single logged combat event. The timestamp is
// optional; round-start entries carry none.
type HistoryEvent struct {
	Text      string     `json:"text"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// HistoryEntry buckets the events logged during one round.
type HistoryEntry struct {
	Round  int            `json:"round"`
	Events []HistoryEvent `json:"events"`
}

// History is an append-only, round-bucketed event log bounded to a
// maximum number of round entries. When the bound is exceeded the
// oldest-created entries are evicted first, keeping the most recently
// created rounds.
type History struct {
	entries   []HistoryEntry
	maxRounds int
}

// NewHistory creates a history log retaining at most maxRounds round
// entries. A non-positive bound keeps the log unbounded.
func NewHistory(maxRounds int) *History {
	return &History{entries: make([]HistoryEntry, 0), maxRounds: maxRounds}
}

// Append records events under the given round. Events for a round that
// already has an entry are appended to it in call order; otherwise a new
// entry is created. The log is then truncated from the front to the
// configured bound.
func (h *History) Append(round int, events ...HistoryEvent) {
	if len(events) == 0 {
		return
	}
	for i := range h.entries {
		if h.entries[i].Round == round {
			h.entries[i].Events = append(h.entries[i].Events, events...)
			h.truncate()
			return
		}
	}
	entry := HistoryEntry{Round: round, Events: make([]HistoryEvent, 0, len(events))}
	entry.Events = append(entry.Events, events...)
	h.entries = append(h.entries, entry)
	h.truncate()
}

func (h *History) truncate() {
	if h.maxRounds <= 0 || len(h.entries) <= h.maxRounds {
		return
	}
	drop := len(h.entries) - h.maxRounds
	h.entries = append(h.entries[:0], h.entries[drop:]...)
}

// Entries returns a copy of the stored log in creation order.
func (h *History) Entries() []HistoryEntry {
	return copyEntries(h.entries)
}

// Search returns the rounds retaining at least one event whose text
// contains the query, case-insensitively, with non-matching events
// filtered out of the returned copies. The stored log is never mutated;
// an empty query returns the full log.
func (h *History) Search(query string) []HistoryEntry {
	if strings.TrimSpace(query) == "" {
		return h.Entries()
	}
	q := strings.ToLower(query)
	out := make([]HistoryEntry, 0)
	for _, entry := range h.entries {
		matched := make([]HistoryEvent, 0)
		for _, ev := range entry.Events {
			if strings.Contains(strings.ToLower(ev.Text), q) {
				matched = append(matched, ev)
			}
		}
		if len(matched) > 0 {
			out = append(out, HistoryEntry{Round: entry.Round, Events: matched})
		}
	}
	return out
}

// Visible returns the most recent n entries of the given list. It is a
// read projection used to cap what a client renders; the stored log is
// untouched.
func Visible(entries []HistoryEntry, n int) []HistoryEntry {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}

// Clear empties the log unconditionally.
func (h *History) Clear() {
	h.entries = h.entries[:0]
}

// Len returns the number of round entries currently stored.
func (h *History) Len() int { return len(h.entries) }

func copyEntries(entries []HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, len(entries))
	for i, entry := range entries {
		events := make([]HistoryEvent, len(entry.Events))
		copy(events, entry.Events)
		out[i] = HistoryEntry{Round: entry.Round, Events: events}
	}
	return out
}
