package service

import (
	"errors"
	"sync"
	"time"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/constants"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/encounter"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/logging"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/storage"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/tracker"
)

var (
	ErrEncounterNotFound = errors.New("encounter not found")
	ErrCombatNotActive   = errors.New("combat is not active for this encounter")
)

// TrackerConfig carries the tracker options shared by every live
// session.
type TrackerConfig struct {
	MaxHistoryRounds int
	DebounceWindow   time.Duration
	MaxRounds        int
}

type session struct {
	tracker  *tracker.Tracker
	lastUsed time.Time
}

// Sessions is the registry of live round trackers, one per encounter
// with active combat. Trackers are hydrated from the repository on
// first use and flushed back when released or swept.
type Sessions struct {
	mu   sync.Mutex
	repo storage.Repository
	cfg  TrackerConfig
	live map[uint]*session
}

func NewSessions(repo storage.Repository, cfg TrackerConfig) *Sessions {
	return &Sessions{repo: repo, cfg: cfg, live: make(map[uint]*session)}
}

// Get returns the live tracker for an encounter, hydrating one from
// stored state on first use. Combat must be active.
func (s *Sessions) Get(encounterID uint) (*tracker.Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.live[encounterID]; ok {
		sess.lastUsed = time.Now()
		return sess.tracker, nil
	}

	enc, err := s.repo.GetEncounterByID(encounterID)
	if err != nil {
		return nil, ErrEncounterNotFound
	}
	if enc.CombatState == nil || !enc.CombatState.IsActive {
		return nil, ErrCombatNotActive
	}

	tr := s.hydrate(enc)
	s.live[encounterID] = &session{tracker: tr, lastUsed: time.Now()}
	logging.Info("tracker session hydrated", logging.Fields{constants.LogFieldEncounterID: encounterID, constants.LogFieldRound: enc.CombatState.CurrentRound})
	return tr, nil
}

// hydrate builds a tracker bound to the stored encounter, wiring its
// callbacks to the repository.
func (s *Sessions) hydrate(enc *encounter.Encounter) *tracker.Tracker {
	encounterID := enc.ID
	var tr *tracker.Tracker
	tr = tracker.New(enc, tracker.Options{
		InitialEffects:   enc.Effects,
		InitialTriggers:  enc.Triggers,
		MaxHistoryRounds: s.cfg.MaxHistoryRounds,
		DebounceWindow:   s.cfg.DebounceWindow,
		MaxRounds:        s.cfg.MaxRounds,
		Persist: func(patch tracker.CombatPatch) error {
			return s.repo.UpdateCombatRound(encounterID, patch.CurrentRound)
		},
		OnEffectsExpired: func(ids []string) {
			for _, id := range ids {
				if err := s.repo.DeleteEffect(encounterID, id); err != nil {
					logging.Error("failed to delete expired effect", err, logging.Fields{constants.LogFieldEncounterID: encounterID, constants.LogFieldEffectIDs: id})
				}
			}
			logging.Info("effects expired", logging.Fields{constants.LogFieldEncounterID: encounterID, constants.LogFieldEffectIDs: ids})
		},
		OnTriggerActivated: func(id string, snapshot encounter.Trigger) {
			// The tracker has already stamped the activation round by
			// the time this fires.
			if err := s.repo.DeactivateTrigger(encounterID, id, tr.CurrentRound()); err != nil {
				logging.Error("failed to persist trigger activation", err, logging.Fields{constants.LogFieldEncounterID: encounterID, constants.LogFieldTriggerID: id})
			}
		},
	})
	return tr
}

// Release flushes and drops the live session for an encounter, if any.
func (s *Sessions) Release(encounterID uint) {
	s.mu.Lock()
	sess, ok := s.live[encounterID]
	if ok {
		delete(s.live, encounterID)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	sess.tracker.Flush()
	sess.tracker.Dispose()
}

// SweepIdle flushes and drops sessions untouched for longer than ttl.
// It returns how many sessions were dropped.
func (s *Sessions) SweepIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	s.mu.Lock()
	expired := make([]*session, 0)
	for id, sess := range s.live {
		if sess.lastUsed.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.live, id)
			logging.Info("idle tracker session swept", logging.Fields{constants.LogFieldEncounterID: id})
		}
	}
	s.mu.Unlock()
	for _, sess := range expired {
		sess.tracker.Flush()
		sess.tracker.Dispose()
	}
	return len(expired)
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}
