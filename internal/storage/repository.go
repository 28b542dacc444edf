package storage

import (
	"time"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/encounter"
)

type Repository interface {
	CreateEncounter(e *encounter.Encounter) error
	ListEncounters() ([]encounter.Encounter, error)
	GetEncounterByID(id uint) (*encounter.Encounter, error)
	UpdateEncounter(e *encounter.Encounter) error

	// UpdateCombatRound persists a round counter change without touching
	// the rest of the encounter. It is the target of the tracker's
	// debounced persistence callback.
	UpdateCombatRound(encounterID uint, round int) error
	// StartCombat creates or reactivates the combat state at round 1
	// with the given start timestamp.
	StartCombat(encounterID uint, startedAt time.Time) (*encounter.CombatState, error)
	// EndCombat deactivates the combat state, recording the final round.
	EndCombat(encounterID uint, finalRound int) error

	SaveEffect(e *encounter.Effect) error
	DeleteEffect(encounterID uint, publicID string) error
	SaveTrigger(t *encounter.Trigger) error
	DeactivateTrigger(encounterID uint, publicID string, round int) error
}
