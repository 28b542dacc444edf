package tracker

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/encounter"
)

// Error strings surfaced through the tracker's error state. They are
// recorded, never returned or panicked, so callers can display them.
const (
	ErrMsgInvalidEncounter = "Invalid encounter data"
	ErrMsgInvalidCombat    = "Invalid combat state"
	ErrMsgRoundTooLow      = "Round must be at least 1"
	ErrMsgPersistFailed    = "Failed to update encounter"
)

// CombatPatch is the partial combat-state update handed to the
// persistence callback.
type CombatPatch struct {
	CurrentRound int `json:"current_round"`
}

// Options configure a Tracker. All callbacks are optional; a nil
// callback is simply never invoked.
type Options struct {
	// Persist receives debounced round updates. A non-nil return is
	// recorded on the tracker's error state and swallowed.
	Persist func(CombatPatch) error
	// OnEffectsExpired receives the ids of effects removed by a round
	// advance, as one batch. Only called when the batch is non-empty.
	OnEffectsExpired func(ids []string)
	// OnTriggerActivated receives the trigger id and a snapshot of the
	// trigger taken before it was deactivated.
	OnTriggerActivated func(id string, snapshot encounter.Trigger)

	InitialEffects  []encounter.Effect
	InitialTriggers []encounter.Trigger
	// MaxHistoryRounds bounds the history log (default 10).
	MaxHistoryRounds int
	// MaxRounds is an optional combat length cap. It only affects
	// phase, overtime and remaining-time figures.
	MaxRounds int
	// DisableDebouncing makes persistence calls synchronous and
	// unconditional. Debouncing is on by default.
	DisableDebouncing bool
	// DebounceWindow is how long round changes coalesce before one
	// persistence call fires (default 300ms).
	DebounceWindow time.Duration
}

// Tracker owns the round counter, timed effects, scheduled triggers and
// the combat history for one live encounter. All exported methods are
// safe for concurrent use; the debounce timer is the only thing that
// runs off the caller's goroutine.
type Tracker struct {
	mu sync.Mutex

	round     int
	effects   []encounter.Effect
	triggers  []encounter.Trigger
	history   *History
	errMsg    string
	sourceErr bool

	startedAt *time.Time
	maxRounds int

	persist     func(CombatPatch) error
	onExpired   func([]string)
	onActivated func(string, encounter.Trigger)

	debounceWindow  time.Duration
	disableDebounce bool
	timer           *time.Timer
	pendingRound    int
	disposed        bool
}

// New builds a tracker bound to the given encounter record. A nil
// encounter or a missing combat state leaves the tracker at round 1
// with a sticky source error; round operations refuse to run until a
// valid source is supplied via Bind.
func New(enc *encounter.Encounter, opts Options) *Tracker {
	maxHistory := opts.MaxHistoryRounds
	if maxHistory <= 0 {
		maxHistory = 10
	}
	window := opts.DebounceWindow
	if window <= 0 {
		window = 300 * time.Millisecond
	}
	t := &Tracker{
		round:           1,
		effects:         append([]encounter.Effect(nil), opts.InitialEffects...),
		triggers:        append([]encounter.Trigger(nil), opts.InitialTriggers...),
		history:         NewHistory(maxHistory),
		maxRounds:       opts.MaxRounds,
		persist:         opts.Persist,
		onExpired:       opts.OnEffectsExpired,
		onActivated:     opts.OnTriggerActivated,
		debounceWindow:  window,
		disableDebounce: opts.DisableDebouncing,
	}
	t.bindLocked(enc)
	return t
}

// Bind points the tracker at a new encounter record, clearing a source
// error when the record is valid.
func (t *Tracker) Bind(enc *encounter.Encounter) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.bindLocked(enc)
}

func (t *Tracker) bindLocked(enc *encounter.Encounter) {
	switch {
	case enc == nil:
		t.round = 1
		t.errMsg = ErrMsgInvalidEncounter
		t.sourceErr = true
	case enc.CombatState == nil:
		t.round = 1
		t.errMsg = ErrMsgInvalidCombat
		t.sourceErr = true
	default:
		t.round = clampRound(enc.CombatState.CurrentRound)
		t.startedAt = enc.CombatState.StartedAt
		t.errMsg = ""
		t.sourceErr = false
	}
}

func clampRound(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// CurrentRound returns the round counter.
func (t *Tracker) CurrentRound() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.round
}

// Err returns the current error message, empty when the tracker is
// healthy.
func (t *Tracker) Err() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMsg
}

// SetRound validates and commits an absolute round value. Values below 1
// are rejected: prior state is preserved, the error state is set and no
// persistence call is scheduled. Setting the current value again is
// accepted and still schedules persistence.
func (t *Tracker) SetRound(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sourceErr {
		return
	}
	if n < 1 {
		t.errMsg = ErrMsgRoundTooLow
		return
	}
	t.round = n
	t.errMsg = ""
	t.schedulePersistLocked(n)
}

// NextRound advances combat by one round. Effects expired at the new
// round are removed and their ids reported as one batch, a round-start
// history entry is appended, then the new round is committed and
// persistence scheduled.
func (t *Tracker) NextRound() {
	t.mu.Lock()
	if t.sourceErr {
		t.mu.Unlock()
		return
	}
	newRound := t.round + 1
	expired := expiredIDs(t.effects, newRound)
	if len(expired) > 0 {
		kept := make([]encounter.Effect, 0, len(t.effects))
		for _, e := range t.effects {
			if !IsExpired(e, newRound) {
				kept = append(kept, e)
			}
		}
		t.effects = kept
	}
	t.history.Append(newRound, HistoryEvent{Text: "Round started"})
	t.round = newRound
	t.errMsg = ""
	t.schedulePersistLocked(newRound)
	notify := t.onExpired
	t.mu.Unlock()

	if len(expired) > 0 && notify != nil {
		notify(expired)
	}
}

// PreviousRound steps the counter back one round. At the floor of 1 it
// is a no-op and schedules no persistence. No history entry is created.
func (t *Tracker) PreviousRound() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sourceErr || t.round <= 1 {
		return
	}
	t.round--
	t.errMsg = ""
	t.schedulePersistLocked(t.round)
}

// AddEffect registers a timed effect starting at the current round. A
// missing public id is filled in; the stored copy is returned.
func (t *Tracker) AddEffect(e encounter.Effect) encounter.Effect {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e.PublicID == "" {
		e.PublicID = uuid.New().String()
	}
	e.StartRound = t.round
	t.effects = append(t.effects, e)
	return e
}

// RemoveEffect drops an effect by id, reporting whether it was held.
func (t *Tracker) RemoveEffect(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.effects {
		if t.effects[i].PublicID == id {
			t.effects = append(t.effects[:i], t.effects[i+1:]...)
			return true
		}
	}
	return false
}

// AddTrigger registers a round-scheduled trigger. Triggers are created
// active; a missing public id is filled in.
func (t *Tracker) AddTrigger(tr encounter.Trigger) encounter.Trigger {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tr.PublicID == "" {
		tr.PublicID = uuid.New().String()
	}
	tr.IsActive = true
	tr.TriggeredRound = nil
	t.triggers = append(t.triggers, tr)
	return tr
}

// ActivateTrigger deactivates a trigger exactly once, stamping the round
// it fired on and notifying with a pre-mutation snapshot. Already
// inactive or unknown triggers are a no-op and report false.
func (t *Tracker) ActivateTrigger(id string) bool {
	t.mu.Lock()
	var snapshot encounter.Trigger
	found := false
	for i := range t.triggers {
		if t.triggers[i].PublicID == id && t.triggers[i].IsActive {
			snapshot = t.triggers[i]
			round := t.round
			t.triggers[i].IsActive = false
			t.triggers[i].TriggeredRound = &round
			found = true
			break
		}
	}
	notify := t.onActivated
	t.mu.Unlock()

	if found && notify != nil {
		notify(id, snapshot)
	}
	return found
}

// LogEvent appends a custom event to the current round's history entry,
// stamped with the current time.
func (t *Tracker) LogEvent(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.history.Append(t.round, HistoryEvent{Text: text, Timestamp: &now})
}

// Effects returns a copy of the held effects.
func (t *Tracker) Effects() []encounter.Effect {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]encounter.Effect(nil), t.effects...)
}

// Triggers returns a copy of the held triggers.
func (t *Tracker) Triggers() []encounter.Trigger {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]encounter.Trigger(nil), t.triggers...)
}

// HistoryEntries returns a copy of the stored history log.
func (t *Tracker) HistoryEntries() []HistoryEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.history.Entries()
}

// SearchHistory runs a non-destructive substring search over the log.
func (t *Tracker) SearchHistory(query string) []HistoryEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.history.Search(query)
}

// ClearHistory empties the history log.
func (t *Tracker) ClearHistory() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history.Clear()
}

// Phase classifies combat progress against the configured round cap.
func (t *Tracker) Phase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return CombatPhase(t.round, t.maxRounds)
}

// Overtime reports whether the round counter has passed the cap.
func (t *Tracker) Overtime() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return IsOvertime(t.round, t.maxRounds)
}

// Duration derives timing figures against the current wall clock.
func (t *Tracker) Duration(now time.Time) DurationStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return durationStats(t.startedAt, t.round, t.maxRounds, now)
}

// Snapshot is a read-only projection of the tracker state used for the
// live feed and for exports.
type Snapshot struct {
	CurrentRound     int                 `json:"current_round"`
	Error            string              `json:"error,omitempty"`
	Phase            Phase               `json:"phase"`
	Overtime         bool                `json:"overtime"`
	Effects          []encounter.Effect  `json:"effects"`
	Triggers         []encounter.Trigger `json:"triggers"`
	DueTriggers      []encounter.Trigger `json:"due_triggers"`
	UpcomingTriggers []encounter.Trigger `json:"upcoming_triggers"`
	History          []HistoryEntry      `json:"history"`
	Duration         DurationStats       `json:"duration"`
}

// Snapshot captures the current state as one consistent projection.
func (t *Tracker) Snapshot(now time.Time) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Snapshot{
		CurrentRound:     t.round,
		Error:            t.errMsg,
		Phase:            CombatPhase(t.round, t.maxRounds),
		Overtime:         IsOvertime(t.round, t.maxRounds),
		Effects:          append([]encounter.Effect(nil), t.effects...),
		Triggers:         append([]encounter.Trigger(nil), t.triggers...),
		DueTriggers:      DueTriggers(t.triggers, t.round),
		UpcomingTriggers: UpcomingTriggers(t.triggers, t.round),
		History:          t.history.Entries(),
		Duration:         durationStats(t.startedAt, t.round, t.maxRounds, now),
	}
}

// schedulePersistLocked coalesces round updates into a single deferred
// persistence call; each new change cancels and replaces the pending
// timer so the latest round wins. With debouncing disabled the call is
// made synchronously.
func (t *Tracker) schedulePersistLocked(round int) {
	if t.persist == nil || t.disposed {
		return
	}
	if t.disableDebounce {
		t.callPersistLocked(round)
		return
	}
	t.pendingRound = round
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.debounceWindow, t.firePending)
}

func (t *Tracker) firePending() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.disposed || t.timer == nil {
		return
	}
	t.timer = nil
	t.callPersistLocked(t.pendingRound)
}

// callPersistLocked invokes the persistence callback. Failures are
// recorded on the error state and swallowed; the state change that
// prompted the call is not rolled back.
func (t *Tracker) callPersistLocked(round int) {
	if err := t.persist(CombatPatch{CurrentRound: round}); err != nil {
		t.errMsg = ErrMsgPersistFailed
	}
}

// Flush fires any pending debounced persistence call immediately.
func (t *Tracker) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer == nil || t.disposed {
		return
	}
	t.timer.Stop()
	t.timer = nil
	t.callPersistLocked(t.pendingRound)
}

// Dispose cancels any pending debounce timer without firing it. The
// tracker must not be used afterwards.
func (t *Tracker) Dispose() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.disposed = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
