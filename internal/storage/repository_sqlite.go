package storage

import (
	"errors"
	"time"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/encounter"

	"gorm.io/gorm"
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateEncounter(e *encounter.Encounter) error {
	return r.db.Create(e).Error
}

func (r *sqliteRepository) ListEncounters() ([]encounter.Encounter, error) {
	var encounters []encounter.Encounter
	err := r.db.
		Preload("Participants").
		Preload("CombatState").
		Order("created_at DESC").
		Find(&encounters).Error
	if err != nil {
		return nil, err
	}
	return encounters, nil
}

func (r *sqliteRepository) GetEncounterByID(id uint) (*encounter.Encounter, error) {
	var e encounter.Encounter
	err := r.db.
		Preload("Participants").
		Preload("CombatState").
		Preload("Effects").
		Preload("Triggers").
		First(&e, id).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *sqliteRepository) UpdateEncounter(e *encounter.Encounter) error {
	return r.db.Session(&gorm.Session{FullSaveAssociations: true}).Save(e).Error
}

func (r *sqliteRepository) UpdateCombatRound(encounterID uint, round int) error {
	return r.db.Model(&encounter.CombatState{}).
		Where("encounter_id = ?", encounterID).
		Update("current_round", round).Error
}

func (r *sqliteRepository) StartCombat(encounterID uint, startedAt time.Time) (*encounter.CombatState, error) {
	var cs encounter.CombatState
	err := r.db.Where("encounter_id = ?", encounterID).First(&cs).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		cs = encounter.CombatState{EncounterID: encounterID, CurrentRound: 1, StartedAt: &startedAt, IsActive: true}
		if err := r.db.Create(&cs).Error; err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		cs.CurrentRound = 1
		cs.StartedAt = &startedAt
		cs.IsActive = true
		if err := r.db.Save(&cs).Error; err != nil {
			return nil, err
		}
	}
	if err := r.db.Model(&encounter.Encounter{}).
		Where("id = ?", encounterID).
		Update("status", encounter.StatusActive).Error; err != nil {
		return nil, err
	}
	return &cs, nil
}

func (r *sqliteRepository) EndCombat(encounterID uint, finalRound int) error {
	err := r.db.Model(&encounter.CombatState{}).
		Where("encounter_id = ?", encounterID).
		Updates(map[string]interface{}{"is_active": false, "current_round": finalRound}).Error
	if err != nil {
		return err
	}
	return r.db.Model(&encounter.Encounter{}).
		Where("id = ?", encounterID).
		Update("status", encounter.StatusCompleted).Error
}

func (r *sqliteRepository) SaveEffect(e *encounter.Effect) error {
	return r.db.Save(e).Error
}

func (r *sqliteRepository) DeleteEffect(encounterID uint, publicID string) error {
	return r.db.
		Where("encounter_id = ? AND public_id = ?", encounterID, publicID).
		Delete(&encounter.Effect{}).Error
}

func (r *sqliteRepository) SaveTrigger(t *encounter.Trigger) error {
	return r.db.Save(t).Error
}

func (r *sqliteRepository) DeactivateTrigger(encounterID uint, publicID string, round int) error {
	return r.db.Model(&encounter.Trigger{}).
		Where("encounter_id = ? AND public_id = ?", encounterID, publicID).
		Updates(map[string]interface{}{"is_active": false, "triggered_round": round}).Error
}
