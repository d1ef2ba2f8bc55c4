// file: internal/realtime/events.go
// version: 2.0.0
// guid: 9e8d7f6a-5c4b-3a21-0f9e-8d7c6b5a4392

package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jdfalk/newsdeck/internal/metrics"
)

// EventType defines the type of real-time event
type EventType string

const (
	EventFeedUpdated    EventType = "feed.updated"
	EventWeatherUpdated EventType = "weather.updated"
	EventSportsUpdated  EventType = "sports.updated"
	EventTaskStatus     EventType = "task.status"
	EventSystemStatus   EventType = "system.status"
)

// Topics clients may subscribe to.
const (
	TopicFeed    = "feed"
	TopicWeather = "weather"
	TopicSports  = "sports"
	TopicTasks   = "tasks"
)

// Event represents a real-time event to send to clients
type Event struct {
	Type      EventType `json:"type"`
	Topic     string    `json:"topic,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Client represents a connected SSE client
type Client struct {
	ID      string
	Channel chan *Event
	topics  map[string]bool
	mu      sync.RWMutex
}

// NewClient creates a new SSE client
func NewClient(id string) *Client {
	return &Client{
		ID:      id,
		Channel: make(chan *Event, 100),
		topics:  make(map[string]bool),
	}
}

// Subscribe limits the client to the given topic (in addition to any others).
func (c *Client) Subscribe(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics[topic] = true
}

// Unsubscribe removes a topic subscription.
func (c *Client) Unsubscribe(topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.topics, topic)
}

// Wants reports whether an event on topic should be delivered. Clients with
// no subscriptions receive everything; topic-less events go to everyone.
func (c *Client) Wants(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return topic == "" || len(c.topics) == 0 || c.topics[topic]
}

// EventHub manages SSE connections and event distribution
type EventHub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewEventHub creates a new event hub
func NewEventHub() *EventHub {
	return &EventHub{
		clients: make(map[string]*Client),
	}
}

// RegisterClient registers a new client
func (h *EventHub) RegisterClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	count := len(h.clients)
	h.mu.Unlock()
	metrics.SetSSEClients(count)
	log.Printf("[DEBUG] SSE client %s registered, total clients: %d", client.ID, count)
}

// UnregisterClient removes a client
func (h *EventHub) UnregisterClient(clientID string) {
	h.mu.Lock()
	client, exists := h.clients[clientID]
	if exists {
		close(client.Channel)
		delete(h.clients, clientID)
	}
	count := len(h.clients)
	h.mu.Unlock()
	if exists {
		metrics.SetSSEClients(count)
		log.Printf("[DEBUG] SSE client %s unregistered, remaining clients: %d", clientID, count)
	}
}

// Broadcast sends an event to every interested client without blocking.
func (h *EventHub) Broadcast(event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if !client.Wants(event.Topic) {
			continue
		}
		select {
		case client.Channel <- event:
		default:
			log.Printf("[WARN] SSE client %s channel full, dropping %s event", client.ID, event.Type)
		}
	}
}

// Publish broadcasts data on a topic.
func (h *EventHub) Publish(eventType EventType, topic string, data any) {
	if h == nil {
		return
	}
	h.Broadcast(&Event{Type: eventType, Topic: topic, Timestamp: time.Now(), Data: data})
}

// SendSystemStatus sends a system status event to every client
func (h *EventHub) SendSystemStatus(data map[string]any) {
	h.Publish(EventSystemStatus, "", data)
}

// GetClientCount returns the number of connected clients
func (h *EventHub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleSSE streams events to the caller. ?topic=feed,weather narrows the stream.
func (h *EventHub) HandleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache, no-transform")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	clientID := uuid.NewString()
	client := NewClient(clientID)
	for _, topic := range strings.Split(c.Query("topic"), ",") {
		if topic = strings.TrimSpace(topic); topic != "" {
			client.Subscribe(topic)
		}
	}

	h.RegisterClient(client)
	defer h.UnregisterClient(clientID)

	writeEvent(c, &Event{
		Type:      "connection.established",
		Timestamp: time.Now(),
		Data:      map[string]any{"client_id": clientID},
	})

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, ok := <-client.Channel:
			if !ok {
				return
			}
			if !writeEvent(c, event) {
				return
			}
		case <-ticker.C:
			if !writeEvent(c, &Event{Type: "heartbeat", Timestamp: time.Now()}) {
				return
			}
		}
	}
}

func writeEvent(c *gin.Context, event *Event) bool {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[ERROR] Error marshaling event: %v", err)
		return true
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
		log.Printf("[WARN] Error writing SSE event: %v", err)
		return false
	}
	c.Writer.Flush()
	return true
}
