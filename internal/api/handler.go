package api

import (
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/service"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/storage"
)

// TrackerHandler groups all encounter-tracking HTTP handlers.
type TrackerHandler struct {
	repo     storage.Repository
	sessions *service.Sessions
	live     *liveHub
}

// NewTrackerHandler creates a handler backed by the given repository and
// live-session registry.
func NewTrackerHandler(repo storage.Repository, sessions *service.Sessions) *TrackerHandler {
	return &TrackerHandler{repo: repo, sessions: sessions, live: newLiveHub()}
}
