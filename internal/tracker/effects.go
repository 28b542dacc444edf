package tracker

import "github.com/dougis/dnd-tracker-next-js-sub004/internal/encounter"

// Remaining returns how many rounds an effect has left at the given
// round. An effect that has not started yet keeps its full duration; a
// non-positive duration means the effect is already spent.
func Remaining(e encounter.Effect, round int) int {
	if e.Duration <= 0 {
		return 0
	}
	if round < e.StartRound {
		return e.Duration
	}
	left := e.Duration - (round - e.StartRound)
	if left < 0 {
		return 0
	}
	return left
}

// IsExpiring reports whether the effect is on its final round.
func IsExpiring(e encounter.Effect, round int) bool {
	return Remaining(e, round) == 1
}

// IsExpired reports whether the effect has run out at the given round.
func IsExpired(e encounter.Effect, round int) bool {
	return Remaining(e, round) <= 0
}

// GroupByParticipant partitions effects by participant, preserving both
// the order participants first appear and the order of each
// participant's effects.
func GroupByParticipant(effects []encounter.Effect) ([]string, map[string][]encounter.Effect) {
	order := make([]string, 0, len(effects))
	grouped := make(map[string][]encounter.Effect, len(effects))
	for _, e := range effects {
		if _, ok := grouped[e.ParticipantID]; !ok {
			order = append(order, e.ParticipantID)
		}
		grouped[e.ParticipantID] = append(grouped[e.ParticipantID], e)
	}
	return order, grouped
}

// expiredIDs returns the ids of all effects expired at the given round,
// in their held order.
func expiredIDs(effects []encounter.Effect, round int) []string {
	ids := make([]string, 0)
	for _, e := range effects {
		if IsExpired(e, round) {
			ids = append(ids, e.PublicID)
		}
	}
	return ids
}
