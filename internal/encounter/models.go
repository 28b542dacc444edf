package encounter

import (
	"time"

	"gorm.io/gorm"
)

type Encounter struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:64"`
	Description string `json:"description" gorm:"size:256"`
	Status      Status `json:"status"`
	// Participants are the creatures taking part in the encounter. They
	// are persisted in their own table and preloaded on reads.
	Participants []Participant `json:"participants"`
	// CombatState is nil until combat has been started at least once.
	// The round tracker treats a missing combat state as a distinct
	// error condition from a missing encounter.
	CombatState *CombatState `json:"combat_state"`
	Effects     []Effect     `json:"effects"`
	Triggers    []Trigger    `json:"triggers"`
}

// CombatState holds the mutable round counter and combat timing for an
// encounter. It is the only part of the model the round tracker writes
// back through its persistence callback.
type CombatState struct {
	gorm.Model
	EncounterID  uint       `json:"-"`
	CurrentRound int        `json:"current_round"`
	StartedAt    *time.Time `json:"started_at"`
	IsActive     bool       `json:"is_active"`
}

func (CombatState) TableName() string { return "combat_states" }

type Participant struct {
	gorm.Model
	EncounterID uint   `json:"-"`
	PublicID    string `json:"id" gorm:"index"`
	Name        string `json:"name" gorm:"size:64"`
	Initiative  int    `json:"initiative"`
}

func (Participant) TableName() string { return "encounter_participants" }

// Effect is a timed status applied to a participant. It expires after
// Duration rounds counted from StartRound; an effect with a non-positive
// duration is treated as already expired.
type Effect struct {
	gorm.Model
	EncounterID   uint   `json:"-"`
	PublicID      string `json:"id" gorm:"index"`
	Name          string `json:"name" gorm:"size:64"`
	ParticipantID string `json:"participant_id"`
	Duration      int    `json:"duration"`
	StartRound    int    `json:"start_round"`
	Description   string `json:"description" gorm:"size:256"`
}

func (Effect) TableName() string { return "encounter_effects" }

// Trigger is a one-shot reminder tied to a specific future round. It is
// created active and transitions to inactive exactly once, stamping
// TriggeredRound with the round at activation time.
type Trigger struct {
	gorm.Model
	EncounterID    uint   `json:"-"`
	PublicID       string `json:"id" gorm:"index"`
	Name           string `json:"name" gorm:"size:64"`
	TriggerRound   int    `json:"trigger_round"`
	Description    string `json:"description" gorm:"size:256"`
	IsActive       bool   `json:"is_active"`
	TriggeredRound *int   `json:"triggered_round,omitempty"`
}

func (Trigger) TableName() string { return "encounter_triggers" }

// Status is a string alias representing an encounter's lifecycle state.
// Using a dedicated type instead of plain string makes code safer and
// self-documenting.
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)
