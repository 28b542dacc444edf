package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/constants"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/logging"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/tracker"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The tracker API is same-origin behind the app server; clients
	// connect from the encounter view it serves.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveClient wraps a websocket connection with a write mutex so
// broadcasts and the initial snapshot never interleave frames.
type liveClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *liveClient) send(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(payload)
}

// liveHub owns the websocket subscribers per encounter and fans tracker
// snapshots out to them after every mutation.
type liveHub struct {
	mu          sync.Mutex
	subscribers map[uint]map[*liveClient]struct{}
}

func newLiveHub() *liveHub {
	return &liveHub{subscribers: make(map[uint]map[*liveClient]struct{})}
}

func (h *liveHub) subscribe(encounterID uint, client *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[encounterID] == nil {
		h.subscribers[encounterID] = make(map[*liveClient]struct{})
	}
	h.subscribers[encounterID][client] = struct{}{}
}

func (h *liveHub) unsubscribe(encounterID uint, client *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.subscribers[encounterID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.subscribers, encounterID)
		}
	}
}

// Broadcast sends the snapshot to every subscriber of the encounter,
// dropping connections that fail to write.
func (h *liveHub) Broadcast(encounterID uint, snap tracker.Snapshot) {
	h.mu.Lock()
	clients := make([]*liveClient, 0, len(h.subscribers[encounterID]))
	for client := range h.subscribers[encounterID] {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		if err := client.send(snap); err != nil {
			h.unsubscribe(encounterID, client)
			_ = client.conn.Close()
		}
	}
}

// Live upgrades the request to a websocket and streams tracker
// snapshots for the encounter until the client disconnects.
func (h *TrackerHandler) Live(c *gin.Context) {
	id, ok := encounterIDParam(c)
	if !ok {
		return
	}
	tr, err := h.sessions.Get(id)
	if err != nil {
		writeSessionError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", err, logging.Fields{constants.LogFieldEncounterID: id})
		return
	}
	client := &liveClient{conn: conn}
	h.live.subscribe(id, client)
	logging.Info("live subscriber joined", logging.Fields{constants.LogFieldEncounterID: id})

	// Initial state so clients render without waiting for a mutation.
	if err := client.send(tr.Snapshot(time.Now())); err != nil {
		h.live.unsubscribe(id, client)
		_ = conn.Close()
		return
	}

	// Drain reads until the peer goes away; the feed is one-way.
	go func() {
		defer func() {
			h.live.unsubscribe(id, client)
			_ = conn.Close()
			logging.Info("live subscriber left", logging.Fields{constants.LogFieldEncounterID: id})
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
