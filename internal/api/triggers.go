package api

import (
	"net/http"
	"time"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/constants"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/encounter"

	"github.com/gin-gonic/gin"
)

type AddTriggerPayload struct {
	Name         string `json:"name"`
	TriggerRound int    `json:"trigger_round"`
	Description  string `json:"description"`
}

// AddTrigger schedules a one-shot trigger for a future round and
// persists it.
func (h *TrackerHandler) AddTrigger(c *gin.Context) {
	var req AddTriggerPayload
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.TriggerRound < 1 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidRequest})
		return
	}
	id, ok := encounterIDParam(c)
	if !ok {
		return
	}
	tr, err := h.sessions.Get(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	added := tr.AddTrigger(encounter.Trigger{
		Name:         req.Name,
		TriggerRound: req.TriggerRound,
		Description:  req.Description,
	})
	stored := added
	stored.EncounterID = id
	if err := h.repo.SaveTrigger(&stored); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedUpdateEncounter})
		return
	}

	h.live.Broadcast(id, tr.Snapshot(time.Now()))
	c.JSON(http.StatusCreated, added)
}

// ActivateTrigger fires a due trigger exactly once. An already inactive
// or unknown trigger reports not found.
func (h *TrackerHandler) ActivateTrigger(c *gin.Context) {
	id, ok := encounterIDParam(c)
	if !ok {
		return
	}
	tr, err := h.sessions.Get(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	triggerID := c.Param("triggerID")
	name := triggerID
	for _, trigger := range tr.Triggers() {
		if trigger.PublicID == triggerID {
			name = trigger.Name
			break
		}
	}
	if !tr.ActivateTrigger(triggerID) {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrTriggerNotFound})
		return
	}
	tr.LogEvent("Trigger fired: " + name)
	h.live.Broadcast(id, tr.Snapshot(time.Now()))
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Trigger activated"})
}
