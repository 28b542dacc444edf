package tracker

import (
	"sort"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/encounter"
)

// DueTriggers returns the active triggers scheduled for exactly the
// given round, in their held order.
func DueTriggers(triggers []encounter.Trigger, round int) []encounter.Trigger {
	due := make([]encounter.Trigger, 0)
	for _, t := range triggers {
		if t.IsActive && t.TriggerRound == round {
			due = append(due, t)
		}
	}
	return due
}

// UpcomingTriggers returns the active triggers scheduled after the given
// round, ordered by trigger round ascending. Ties keep insertion order.
func UpcomingTriggers(triggers []encounter.Trigger, round int) []encounter.Trigger {
	upcoming := make([]encounter.Trigger, 0)
	for _, t := range triggers {
		if t.IsActive && t.TriggerRound > round {
			upcoming = append(upcoming, t)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].TriggerRound < upcoming[j].TriggerRound
	})
	return upcoming
}

// Phase is a display-oriented classification of combat progress.
type Phase string

const (
	PhaseOngoing  Phase = "ongoing"
	PhaseEarly    Phase = "early"
	PhaseMiddle   Phase = "middle"
	PhaseLate     Phase = "late"
	PhaseOvertime Phase = "overtime"
)

// CombatPhase classifies the current round against an optional round
// cap. Without a cap every round is "ongoing".
func CombatPhase(round, maxRounds int) Phase {
	if maxRounds <= 0 {
		return PhaseOngoing
	}
	progress := float64(round) / float64(maxRounds)
	switch {
	case progress <= 0.33:
		return PhaseEarly
	case progress <= 0.66:
		return PhaseMiddle
	case progress <= 1.0:
		return PhaseLate
	default:
		return PhaseOvertime
	}
}

// IsOvertime reports whether the round counter has passed the cap. It is
// always false when no cap is configured.
func IsOvertime(round, maxRounds int) bool {
	return maxRounds > 0 && round > maxRounds
}
