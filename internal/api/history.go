package api

import (
	"net/http"
	"strconv"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/constants"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/tracker"

	"github.com/gin-gonic/gin"
)

// GetHistory returns the combat history, optionally filtered with the
// ?q= substring search and capped to the most recent ?visible=N rounds.
// Both are read projections; the stored log is untouched.
func (h *TrackerHandler) GetHistory(c *gin.Context) {
	id, ok := encounterIDParam(c)
	if !ok {
		return
	}
	tr, err := h.sessions.Get(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	entries := tr.SearchHistory(c.Query("q"))
	if s := c.Query("visible"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			entries = tracker.Visible(entries, n)
		}
	}
	c.JSON(http.StatusOK, entries)
}

type LogEventPayload struct {
	Text string `json:"text"`
}

// LogEvent appends a custom event to the current round's history.
func (h *TrackerHandler) LogEvent(c *gin.Context) {
	var req LogEventPayload
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
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
	tr.LogEvent(req.Text)
	c.JSON(http.StatusCreated, gin.H{constants.JSONKeyMessage: "Event logged"})
}

// ClearHistory empties the combat history log.
func (h *TrackerHandler) ClearHistory(c *gin.Context) {
	id, ok := encounterIDParam(c)
	if !ok {
		return
	}
	tr, err := h.sessions.Get(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	tr.ClearHistory()
	c.JSON(http.StatusOK, gin.H{constants.JSONKeyMessage: "History cleared"})
}

// ExportEncounter returns a read-only snapshot of the full tracker and
// encounter state.
func (h *TrackerHandler) ExportEncounter(c *gin.Context) {
	id, ok := encounterIDParam(c)
	if !ok {
		return
	}
	snap, err := h.sessions.Export(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}
