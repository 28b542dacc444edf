package api

import (
	"net/http"
	"unicode/utf8"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/constants"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/encounter"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ParticipantPayload struct {
	Name       string `json:"name"`
	Initiative int    `json:"initiative"`
}

type CreateEncounterPayload struct {
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Participants []ParticipantPayload `json:"participants"`
}

// CreateEncounter persists a new encounter in the planned state.
func (h *TrackerHandler) CreateEncounter(c *gin.Context) {
	var req CreateEncounterPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}

	// Validate lengths
	if utf8.RuneCountInString(req.Name) > 64 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrEncounterNameExceeds})
		return
	}
	if utf8.RuneCountInString(req.Description) > 256 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrDescriptionExceeds})
		return
	}

	participants := make([]encounter.Participant, 0, len(req.Participants))
	for _, p := range req.Participants {
		participants = append(participants, encounter.Participant{
			PublicID:   uuid.New().String(),
			Name:       p.Name,
			Initiative: p.Initiative,
		})
	}

	newEncounter := encounter.Encounter{
		Name:         req.Name,
		Description:  req.Description,
		Status:       encounter.StatusPlanned,
		Participants: participants,
	}
	if err := h.repo.CreateEncounter(&newEncounter); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedCreateEncounter})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"encounter_id": newEncounter.ID,
	})
}

// ListEncounters returns all stored encounters, newest first.
func (h *TrackerHandler) ListEncounters(c *gin.Context) {
	encounters, err := h.repo.ListEncounters()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedFetchEncounters})
		return
	}
	c.JSON(http.StatusOK, encounters)
}

// GetEncounter returns a single encounter with participants, combat
// state, effects and triggers preloaded.
func (h *TrackerHandler) GetEncounter(c *gin.Context) {
	id, ok := encounterIDParam(c)
	if !ok {
		return
	}
	e, err := h.repo.GetEncounterByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrEncounterNotFound})
		return
	}
	c.JSON(http.StatusOK, e)
}
