package api

import (
	"net/http"
	"time"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/constants"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/encounter"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/tracker"

	"github.com/gin-gonic/gin"
)

type AddEffectPayload struct {
	Name          string `json:"name"`
	ParticipantID string `json:"participant_id"`
	Duration      int    `json:"duration"`
	Description   string `json:"description"`
}

// AddEffect registers a timed effect starting at the current round and
// persists it.
func (h *TrackerHandler) AddEffect(c *gin.Context) {
	var req AddEffectPayload
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
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

	added := tr.AddEffect(encounter.Effect{
		Name:          req.Name,
		ParticipantID: req.ParticipantID,
		Duration:      req.Duration,
		Description:   req.Description,
	})
	stored := added
	stored.EncounterID = id
	if err := h.repo.SaveEffect(&stored); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedUpdateEncounter})
		return
	}
	tr.LogEvent(req.Name + " applied")

	h.live.Broadcast(id, tr.Snapshot(time.Now()))
	c.JSON(http.StatusCreated, added)
}

// RemoveEffect drops an effect by id from the live session and storage.
func (h *TrackerHandler) RemoveEffect(c *gin.Context) {
	id, ok := encounterIDParam(c)
	if !ok {
		return
	}
	tr, err := h.sessions.Get(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	effectID := c.Param("effectID")
	if !tr.RemoveEffect(effectID) {
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrEffectNotFound})
		return
	}
	if err := h.repo.DeleteEffect(id, effectID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedUpdateEncounter})
		return
	}
	h.live.Broadcast(id, tr.Snapshot(time.Now()))
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "Effect removed"})
}

// effectView decorates an effect with its lifecycle status at a round.
type effectView struct {
	encounter.Effect
	Remaining  int  `json:"remaining"`
	IsExpiring bool `json:"is_expiring"`
}

// ListEffects returns the held effects grouped by participant, each
// annotated with remaining rounds and expiring status.
func (h *TrackerHandler) ListEffects(c *gin.Context) {
	id, ok := encounterIDParam(c)
	if !ok {
		return
	}
	tr, err := h.sessions.Get(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	round := tr.CurrentRound()
	order, grouped := tracker.GroupByParticipant(tr.Effects())
	out := make([]gin.H, 0, len(order))
	for _, participantID := range order {
		views := make([]effectView, 0, len(grouped[participantID]))
		for _, e := range grouped[participantID] {
			views = append(views, effectView{
				Effect:     e,
				Remaining:  tracker.Remaining(e, round),
				IsExpiring: tracker.IsExpiring(e, round),
			})
		}
		out = append(out, gin.H{"participant_id": participantID, "effects": views})
	}
	c.JSON(http.StatusOK, out)
}
