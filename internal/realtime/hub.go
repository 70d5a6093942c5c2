package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat.
	PingInterval = 30
	PongWait     = 60

	// GlobalRoom receives the events of every survey.
	GlobalRoom int64 = 0
)

// Hub maintains survey_id -> set of connections and broadcasts messages.
// Uses Redis pub/sub for horizontal scaling when configured.
type Hub struct {
	// surveyID -> map[clientID]*Client
	rooms  map[int64]map[string]*Client
	subs   map[int64]func() // cancel Redis subscription per room
	mu     sync.RWMutex
	logger *zap.Logger
	pub    Publisher
	sub    Subscriber
}

// Publisher publishes room events to other instances.
type Publisher interface {
	PublishSurveyEvent(surveyID int64, event string, payload []byte) error
}

// Subscriber subscribes to room channels and invokes handler for incoming events.
type Subscriber interface {
	SubscribeSurvey(surveyID int64, handler func(event string, payload []byte)) (cancel func(), err error)
}

// NewHub creates a new WebSocket hub. pub and sub may be nil for a single instance.
func NewHub(logger *zap.Logger, pub Publisher, sub Subscriber) *Hub {
	return &Hub{
		rooms:  make(map[int64]map[string]*Client),
		subs:   make(map[int64]func()),
		logger: logger,
		pub:    pub,
		sub:    sub,
	}
}

// Register adds a client to its room. Starts the Redis subscription for the room if first client.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.rooms[c.SurveyID] == nil {
		h.rooms[c.SurveyID] = make(map[string]*Client)
		if h.sub != nil {
			room := c.SurveyID
			cancel, err := h.sub.SubscribeSurvey(room, func(event string, payload []byte) {
				h.Broadcast(room, event, json.RawMessage(payload))
			})
			if err != nil {
				h.logger.Warn("room subscription failed", zap.Int64("survey_id", room), zap.Error(err))
			} else {
				h.subs[room] = cancel
			}
		}
	}
	h.rooms[c.SurveyID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client joined room", zap.String("client_id", c.ID), zap.Int64("survey_id", c.SurveyID))
}

// Unregister removes a client from its room. Cancels the Redis subscription when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.rooms[c.SurveyID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.rooms, c.SurveyID)
			if cancel, ok := h.subs[c.SurveyID]; ok {
				cancel()
				delete(h.subs, c.SurveyID)
			}
		}
	}
	h.mu.Unlock()
	h.logger.Debug("client left room", zap.String("client_id", c.ID), zap.Int64("survey_id", c.SurveyID))
}

// Broadcast sends a message to all local clients of a room.
func (h *Hub) Broadcast(surveyID int64, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		var err error
		if data, err = json.Marshal(payload); err != nil {
			h.logger.Warn("marshal event", zap.String("event", event), zap.Error(err))
			return
		}
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.rooms[surveyID] {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// Publish delivers an event to the survey's room and the global room on every instance.
// With Redis the subscriber callback performs the broadcast, so local clients get it once.
func (h *Hub) Publish(surveyID int64, event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Warn("marshal event", zap.String("event", event), zap.Error(err))
		return
	}
	rooms := []int64{surveyID}
	if surveyID != GlobalRoom {
		rooms = append(rooms, GlobalRoom)
	}
	for _, room := range rooms {
		if h.pub == nil {
			h.Broadcast(room, event, json.RawMessage(data))
			continue
		}
		if err := h.pub.PublishSurveyEvent(room, event, data); err != nil {
			h.logger.Warn("publish event failed, delivering locally", zap.Int64("survey_id", room), zap.Error(err))
			h.Broadcast(room, event, json.RawMessage(data))
		}
	}
}

// AudienceCount returns the number of connected clients in a room.
func (h *Hub) AudienceCount(surveyID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[surveyID])
}
