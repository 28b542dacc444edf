package tracker

import (
	"sync"
	"testing"
	"time"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/encounter"
)

func testEncounter(round int) *encounter.Encounter {
	started := time.Now().Add(-5 * time.Minute)
	return &encounter.Encounter{
		Name:        "Goblin Ambush",
		CombatState: &encounter.CombatState{CurrentRound: round, StartedAt: &started, IsActive: true},
	}
}

// persistRecorder counts persistence calls and remembers the last patch.
type persistRecorder struct {
	mu    sync.Mutex
	calls int
	last  CombatPatch
	err   error
}

func (p *persistRecorder) persist(patch CombatPatch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.last = patch
	return p.err
}

func (p *persistRecorder) snapshot() (int, CombatPatch) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls, p.last
}

func TestNew_ClampsExternalRound(t *testing.T) {
	tr := New(testEncounter(-3), Options{})
	defer tr.Dispose()
	if got := tr.CurrentRound(); got != 1 {
		t.Fatalf("expected round clamped to 1, got %d", got)
	}
	if tr.Err() != "" {
		t.Fatalf("unexpected error: %q", tr.Err())
	}
}

func TestNew_InvalidSources(t *testing.T) {
	tr := New(nil, Options{})
	defer tr.Dispose()
	if tr.Err() != ErrMsgInvalidEncounter {
		t.Fatalf("expected encounter error, got %q", tr.Err())
	}
	if tr.CurrentRound() != 1 {
		t.Fatalf("expected round 1, got %d", tr.CurrentRound())
	}

	tr2 := New(&encounter.Encounter{Name: "No combat"}, Options{})
	defer tr2.Dispose()
	if tr2.Err() != ErrMsgInvalidCombat {
		t.Fatalf("expected combat-state error, got %q", tr2.Err())
	}

	// Round operations are blocked until a valid source is bound.
	tr2.NextRound()
	if tr2.CurrentRound() != 1 {
		t.Fatalf("expected round ops blocked, got round %d", tr2.CurrentRound())
	}
	tr2.Bind(testEncounter(4))
	if tr2.Err() != "" || tr2.CurrentRound() != 4 {
		t.Fatalf("expected rebind to clear error and adopt round 4, got %q round %d", tr2.Err(), tr2.CurrentRound())
	}
}

func TestSetRound_RejectsBelowOne(t *testing.T) {
	rec := &persistRecorder{}
	tr := New(testEncounter(2), Options{Persist: rec.persist, DisableDebouncing: true})
	defer tr.Dispose()

	tr.SetRound(-1)
	if tr.CurrentRound() != 2 {
		t.Fatalf("expected state preserved at round 2, got %d", tr.CurrentRound())
	}
	if tr.Err() != ErrMsgRoundTooLow {
		t.Fatalf("expected validation error, got %q", tr.Err())
	}
	if calls, _ := rec.snapshot(); calls != 0 {
		t.Fatalf("expected no persistence call, got %d", calls)
	}

	// A subsequent advance clears the error and persists.
	tr.NextRound()
	if tr.Err() != "" {
		t.Fatalf("expected error cleared, got %q", tr.Err())
	}
	if tr.CurrentRound() != 3 {
		t.Fatalf("expected round 3, got %d", tr.CurrentRound())
	}
	calls, last := rec.snapshot()
	if calls != 1 || last.CurrentRound != 3 {
		t.Fatalf("expected one persist with round 3, got %d calls, last %+v", calls, last)
	}
}

func TestSetRound_SameValueStillPersists(t *testing.T) {
	rec := &persistRecorder{}
	tr := New(testEncounter(5), Options{Persist: rec.persist, DisableDebouncing: true})
	defer tr.Dispose()

	tr.SetRound(5)
	if tr.Err() != "" {
		t.Fatalf("unexpected error: %q", tr.Err())
	}
	calls, last := rec.snapshot()
	if calls != 1 || last.CurrentRound != 5 {
		t.Fatalf("expected persist with unchanged round, got %d calls, last %+v", calls, last)
	}
}

func TestPreviousRound_Floor(t *testing.T) {
	rec := &persistRecorder{}
	tr := New(testEncounter(2), Options{Persist: rec.persist, DisableDebouncing: true})
	defer tr.Dispose()

	tr.PreviousRound()
	if tr.CurrentRound() != 1 {
		t.Fatalf("expected round 1, got %d", tr.CurrentRound())
	}
	for i := 0; i < 5; i++ {
		tr.PreviousRound()
	}
	if tr.CurrentRound() != 1 {
		t.Fatalf("expected floor at 1, got %d", tr.CurrentRound())
	}
	if calls, _ := rec.snapshot(); calls != 1 {
		t.Fatalf("expected exactly one persist (the first decrement), got %d", calls)
	}
}

func TestNextRound_ExpiresEffectsInBatch(t *testing.T) {
	var expired [][]string
	tr := New(testEncounter(3), Options{
		InitialEffects: []encounter.Effect{
			{PublicID: "bless", Name: "Bless", Duration: 3, StartRound: 1},
			{PublicID: "haste", Name: "Haste", Duration: 10, StartRound: 1},
			{PublicID: "bane", Name: "Bane", Duration: 3, StartRound: 1},
		},
		OnEffectsExpired:  func(ids []string) { expired = append(expired, ids) },
		DisableDebouncing: true,
	})
	defer tr.Dispose()

	tr.NextRound()
	if len(expired) != 1 {
		t.Fatalf("expected one expiry batch, got %d", len(expired))
	}
	if len(expired[0]) != 2 || expired[0][0] != "bless" || expired[0][1] != "bane" {
		t.Fatalf("unexpected expired batch: %v", expired[0])
	}
	remaining := tr.Effects()
	if len(remaining) != 1 || remaining[0].PublicID != "haste" {
		t.Fatalf("expected only haste to survive, got %+v", remaining)
	}

	// No further expiries, no further callbacks.
	tr.NextRound()
	if len(expired) != 1 {
		t.Fatalf("expected no new expiry batch, got %d", len(expired))
	}
}

func TestNextRound_AppendsHistoryEntry(t *testing.T) {
	tr := New(testEncounter(1), Options{})
	defer tr.Dispose()

	tr.NextRound()
	entries := tr.HistoryEntries()
	if len(entries) != 1 {
		t.Fatalf("expected one history entry, got %d", len(entries))
	}
	if entries[0].Round != 2 || len(entries[0].Events) != 1 || entries[0].Events[0].Text != "Round started" {
		t.Fatalf("unexpected history entry: %+v", entries[0])
	}
}

func TestHistoryBoundKeepsMostRecentRounds(t *testing.T) {
	tr := New(testEncounter(1), Options{MaxHistoryRounds: 3})
	defer tr.Dispose()

	for i := 0; i < 8; i++ {
		tr.NextRound()
	}
	entries := tr.HistoryEntries()
	if len(entries) != 3 {
		t.Fatalf("expected history capped at 3, got %d", len(entries))
	}
	for i, want := range []int{7, 8, 9} {
		if entries[i].Round != want {
			t.Fatalf("expected rounds [7 8 9], got %+v", entries)
		}
	}
}

func TestDebounceCoalescing(t *testing.T) {
	rec := &persistRecorder{}
	tr := New(testEncounter(1), Options{Persist: rec.persist, DebounceWindow: 30 * time.Millisecond})
	defer tr.Dispose()

	tr.NextRound()
	tr.NextRound()
	tr.NextRound()
	if calls, _ := rec.snapshot(); calls != 0 {
		t.Fatalf("expected persistence deferred, got %d calls", calls)
	}

	time.Sleep(100 * time.Millisecond)
	calls, last := rec.snapshot()
	if calls != 1 {
		t.Fatalf("expected three rapid advances to coalesce into one persist, got %d", calls)
	}
	if last.CurrentRound != 4 {
		t.Fatalf("expected final round 4 persisted, got %d", last.CurrentRound)
	}
}

func TestFlushFiresPendingPersist(t *testing.T) {
	rec := &persistRecorder{}
	tr := New(testEncounter(1), Options{Persist: rec.persist, DebounceWindow: time.Minute})
	defer tr.Dispose()

	tr.NextRound()
	tr.Flush()
	calls, last := rec.snapshot()
	if calls != 1 || last.CurrentRound != 2 {
		t.Fatalf("expected flush to persist round 2, got %d calls, last %+v", calls, last)
	}

	// Nothing pending: flush is a no-op.
	tr.Flush()
	if calls, _ := rec.snapshot(); calls != 1 {
		t.Fatalf("expected no extra persist, got %d", calls)
	}
}

func TestDisposeCancelsPendingPersist(t *testing.T) {
	rec := &persistRecorder{}
	tr := New(testEncounter(1), Options{Persist: rec.persist, DebounceWindow: 10 * time.Millisecond})

	tr.NextRound()
	tr.Dispose()
	time.Sleep(50 * time.Millisecond)
	if calls, _ := rec.snapshot(); calls != 0 {
		t.Fatalf("expected disposed tracker not to persist, got %d calls", calls)
	}
}

func TestPersistFailureRecordedAndSwallowed(t *testing.T) {
	rec := &persistRecorder{err: errPersist}
	tr := New(testEncounter(1), Options{Persist: rec.persist, DisableDebouncing: true})
	defer tr.Dispose()

	tr.NextRound()
	if tr.Err() != ErrMsgPersistFailed {
		t.Fatalf("expected persistence error recorded, got %q", tr.Err())
	}
	// The internal state change is not rolled back.
	if tr.CurrentRound() != 2 {
		t.Fatalf("expected round committed despite persist failure, got %d", tr.CurrentRound())
	}
	if len(tr.HistoryEntries()) != 1 {
		t.Fatalf("expected history entry kept despite persist failure")
	}
}

var errPersist = errTest("boom")

type errTest string

func (e errTest) Error() string { return string(e) }

func TestAddEffectStampsCurrentRound(t *testing.T) {
	tr := New(testEncounter(4), Options{})
	defer tr.Dispose()

	e := tr.AddEffect(encounter.Effect{Name: "Shield of Faith", ParticipantID: "cleric", Duration: 3})
	if e.StartRound != 4 {
		t.Fatalf("expected start round 4, got %d", e.StartRound)
	}
	if e.PublicID == "" {
		t.Fatalf("expected generated effect id")
	}
	if !tr.RemoveEffect(e.PublicID) {
		t.Fatalf("expected effect removable by id")
	}
	if tr.RemoveEffect(e.PublicID) {
		t.Fatalf("expected second removal to report false")
	}
}

func TestActivateTrigger(t *testing.T) {
	var gotID string
	var gotSnapshot encounter.Trigger
	tr := New(testEncounter(3), Options{
		InitialTriggers: []encounter.Trigger{
			{PublicID: "reinforcements", Name: "Reinforcements arrive", TriggerRound: 3, IsActive: true},
		},
		OnTriggerActivated: func(id string, snap encounter.Trigger) {
			gotID = id
			gotSnapshot = snap
		},
	})
	defer tr.Dispose()

	due := DueTriggers(tr.Triggers(), tr.CurrentRound())
	if len(due) != 1 || due[0].PublicID != "reinforcements" {
		t.Fatalf("expected trigger due at round 3, got %+v", due)
	}

	if !tr.ActivateTrigger("reinforcements") {
		t.Fatalf("expected activation to succeed")
	}
	if gotID != "reinforcements" {
		t.Fatalf("expected activation callback, got id %q", gotID)
	}
	if !gotSnapshot.IsActive {
		t.Fatalf("expected pre-mutation snapshot to still be active")
	}

	after := tr.Triggers()[0]
	if after.IsActive {
		t.Fatalf("expected trigger deactivated")
	}
	if after.TriggeredRound == nil || *after.TriggeredRound != 3 {
		t.Fatalf("expected triggered round 3, got %v", after.TriggeredRound)
	}
	if len(DueTriggers(tr.Triggers(), 3)) != 0 || len(UpcomingTriggers(tr.Triggers(), 1)) != 0 {
		t.Fatalf("expected activated trigger gone from due and upcoming lists")
	}

	// Second activation attempt is a no-op.
	if tr.ActivateTrigger("reinforcements") {
		t.Fatalf("expected second activation to report false")
	}
}
