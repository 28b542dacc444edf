package service

import (
	"fmt"
	"time"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/dedupe"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/encounter"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/tracker"
)

// ExportEncounterInfo summarizes the encounter record inside an export.
type ExportEncounterInfo struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	ParticipantCount int    `json:"participant_count"`
}

// ExportSnapshot is the read-only projection produced by Export. It is
// not a persisted format.
type ExportSnapshot struct {
	CurrentRound   int                  `json:"current_round"`
	Effects        []encounter.Effect   `json:"effects"`
	Triggers       []encounter.Trigger  `json:"triggers"`
	History        []tracker.HistoryEntry `json:"history"`
	Duration       tracker.DurationStats  `json:"duration"`
	SessionSummary string               `json:"session_summary"`
	Encounter      ExportEncounterInfo  `json:"encounter"`
	ExportedAt     string               `json:"exported_at"`
}

// Export builds an export snapshot for an encounter with a live (or
// hydratable) tracker session. Concurrent exports of the same encounter
// collapse into a single snapshot build.
func (s *Sessions) Export(encounterID uint) (*ExportSnapshot, error) {
	v, err, _ := dedupe.ExportGroup.Do(fmt.Sprintf("export:%d", encounterID), func() (interface{}, error) {
		tr, err := s.Get(encounterID)
		if err != nil {
			return nil, err
		}
		enc, err := s.repo.GetEncounterByID(encounterID)
		if err != nil {
			return nil, ErrEncounterNotFound
		}
		now := time.Now()
		snap := tr.Snapshot(now)
		return &ExportSnapshot{
			CurrentRound: snap.CurrentRound,
			Effects:      snap.Effects,
			Triggers:     snap.Triggers,
			History:      snap.History,
			Duration:     snap.Duration,
			SessionSummary: fmt.Sprintf("Round %d (%s phase) after %s; %d active effects, %d pending triggers",
				snap.CurrentRound, snap.Phase, snap.Duration.TotalFormatted, len(snap.Effects), len(snap.UpcomingTriggers)+len(snap.DueTriggers)),
			Encounter: ExportEncounterInfo{
				Name:             enc.Name,
				Description:      enc.Description,
				ParticipantCount: len(enc.Participants),
			},
			ExportedAt: now.UTC().Format(time.RFC3339),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*ExportSnapshot), nil
}
