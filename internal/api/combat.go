package api

import (
	"net/http"
	"time"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/constants"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/logging"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/tracker"

	"github.com/gin-gonic/gin"
)

// StartCombat activates combat for an encounter at round 1 and hydrates
// a live tracker session for it.
func (h *TrackerHandler) StartCombat(c *gin.Context) {
	id, ok := encounterIDParam(c)
	if !ok {
		return
	}
	e, err := h.repo.GetEncounterByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrEncounterNotFound})
		return
	}
	if e.CombatState != nil && e.CombatState.IsActive {
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrCombatAlreadyActive})
		return
	}

	if _, err := h.repo.StartCombat(id, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedUpdateEncounter})
		return
	}
	// Drop any stale session so the next lookup hydrates fresh state.
	h.sessions.Release(id)

	tr, err := h.sessions.Get(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	logging.Info("combat started", logging.Fields{constants.LogFieldEncounterID: id})
	h.respondWithSnapshot(c, id, tr.Snapshot(time.Now()))
}

// EndCombat flushes the live session and deactivates combat, recording
// the final round.
func (h *TrackerHandler) EndCombat(c *gin.Context) {
	id, ok := encounterIDParam(c)
	if !ok {
		return
	}
	tr, err := h.sessions.Get(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	finalRound := tr.CurrentRound()
	h.sessions.Release(id)
	if err := h.repo.EndCombat(id, finalRound); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedUpdateEncounter})
		return
	}
	logging.Info("combat ended", logging.Fields{constants.LogFieldEncounterID: id, constants.LogFieldRound: finalRound})
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Combat ended", "final_round": finalRound})
}

type SetRoundPayload struct {
	Round *int `json:"round"`
}

// SetRound commits an absolute round value. Non-integer payloads are
// rejected here; sub-1 values are rejected by the tracker and surface
// through its error state.
func (h *TrackerHandler) SetRound(c *gin.Context) {
	var req SetRoundPayload
	if err := c.ShouldBindJSON(&req); err != nil || req.Round == nil {
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

	tr.SetRound(*req.Round)
	if msg := tr.Err(); msg == tracker.ErrMsgRoundTooLow {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: msg})
		return
	}
	h.respondWithSnapshot(c, id, tr.Snapshot(time.Now()))
}

// NextRound advances combat by one round.
func (h *TrackerHandler) NextRound(c *gin.Context) {
	id, ok := encounterIDParam(c)
	if !ok {
		return
	}
	tr, err := h.sessions.Get(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	tr.NextRound()
	h.respondWithSnapshot(c, id, tr.Snapshot(time.Now()))
}

// PreviousRound steps combat back one round, never below 1.
func (h *TrackerHandler) PreviousRound(c *gin.Context) {
	id, ok := encounterIDParam(c)
	if !ok {
		return
	}
	tr, err := h.sessions.Get(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	tr.PreviousRound()
	h.respondWithSnapshot(c, id, tr.Snapshot(time.Now()))
}

// respondWithSnapshot writes the snapshot to the caller and fans it out
// to live subscribers.
func (h *TrackerHandler) respondWithSnapshot(c *gin.Context, encounterID uint, snap tracker.Snapshot) {
	h.live.Broadcast(encounterID, snap)
	c.JSON(http.StatusOK, snap)
}
