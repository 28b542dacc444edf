package api

import (
	"net/http"
	"strconv"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/constants"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/service"

	"github.com/gin-gonic/gin"
)

// encounterIDParam parses the numeric encounter id route parameter,
// writing the error response itself when the value is malformed.
func encounterIDParam(c *gin.Context) (uint, bool) {
	raw := c.Param("encounterID")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{constants.JSONKeyError: constants.ErrInvalidEncounterID})
		return 0, false
	}
	return uint(id), true
}

// writeSessionError maps session-registry errors to HTTP responses.
func writeSessionError(c *gin.Context, err error) {
	switch err {
	case service.ErrEncounterNotFound:
		c.JSON(http.StatusNotFound, gin.H{constants.JSONKeyError: constants.ErrEncounterNotFound})
	case service.ErrCombatNotActive:
		c.JSON(http.StatusConflict, gin.H{constants.JSONKeyError: constants.ErrCombatNotActive})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{constants.JSONKeyError: constants.ErrFailedUpdateEncounter})
	}
}
