package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SSEEvent represents an SSE event structure
type SSEEvent struct {
	ID        string    `json:"id"`
	Event     string    `json:"event"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID          string
	ConnectedAt time.Time
	events      chan SSEEvent
	done        chan struct{}
}

// SSEServerConfig holds configuration for the SSE server
type SSEServerConfig struct {
	KeepaliveInterval time.Duration
	BufferSize        int
	ClientBufferSize  int
}

// DefaultSSEServerConfig returns the default configuration for SSE server
func DefaultSSEServerConfig() *SSEServerConfig {
	return &SSEServerConfig{
		KeepaliveInterval: 30 * time.Second,
		BufferSize:        100,
		ClientBufferSize:  16,
	}
}

// EventServer fans published document events out to connected SSE clients.
type EventServer struct {
	logger       *zap.Logger
	config       *SSEServerConfig
	clients      map[string]*SSEClient
	clientsMutex sync.RWMutex
	broadcast    chan SSEEvent
	done         chan struct{}
	closeOnce    sync.Once
}

// NewEventServer creates an event server and starts its broadcast loop.
func NewEventServer(logger *zap.Logger, config *SSEServerConfig) *EventServer {
	if config == nil {
		config = DefaultSSEServerConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &EventServer{
		logger:    logger,
		config:    config,
		clients:   make(map[string]*SSEClient),
		broadcast: make(chan SSEEvent, config.BufferSize),
		done:      make(chan struct{}),
	}

	go s.broadcastLoop()

	return s
}

func newEvent(event string, data any) SSEEvent {
	return SSEEvent{
		ID:        uuid.NewString(),
		Event:     event,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// Publish queues an event for all connected clients. It never blocks: when the
// buffer is full the event is dropped.
func (s *EventServer) Publish(event string, data any) {
	ev := newEvent(event, data)
	select {
	case <-s.done:
	case s.broadcast <- ev:
	default:
		s.logger.Warn("broadcast channel full, dropping event", zap.String("eventID", ev.ID), zap.String("event", event))
	}
}

// broadcastLoop handles broadcasting events to all connected clients
func (s *EventServer) broadcastLoop() {
	for {
		select {
		case <-s.done:
			return
		case event := <-s.broadcast:
			s.clientsMutex.RLock()
			for id, client := range s.clients {
				select {
				case client.events <- event:
				default:
					s.logger.Warn("client buffer full, dropping event", zap.String("clientID", id), zap.String("eventID", event.ID))
				}
			}
			s.clientsMutex.RUnlock()
		}
	}
}

// Close stops the broadcast loop and disconnects every client.
func (s *EventServer) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.clientsMutex.Lock()
		defer s.clientsMutex.Unlock()
		for id, client := range s.clients {
			close(client.done)
			delete(s.clients, id)
		}
	})
}

func (s *EventServer) addClient() *SSEClient {
	client := &SSEClient{
		ID:          uuid.NewString(),
		ConnectedAt: time.Now(),
		events:      make(chan SSEEvent, s.config.ClientBufferSize),
		done:        make(chan struct{}),
	}

	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()
	select {
	case <-s.done:
		close(client.done)
		return client
	default:
	}
	s.clients[client.ID] = client
	s.logger.Info("SSE client connected", zap.String("clientID", client.ID))
	return client
}

func (s *EventServer) removeClient(clientID string) {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()

	if client, exists := s.clients[clientID]; exists {
		close(client.done)
		delete(s.clients, clientID)
		s.logger.Info("SSE client disconnected", zap.String("clientID", clientID))
	}
}

// writeEvent writes event as a single SSE frame.
func writeEvent(w http.ResponseWriter, flusher http.Flusher, event SSEEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Event, eventJSON); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// HandleSSE streams events to the client until it disconnects.
func (s *EventServer) HandleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	client := s.addClient()
	defer s.removeClient(client.ID)

	connectEvent := newEvent("connected", map[string]string{"clientID": client.ID})
	if err := writeEvent(w, flusher, connectEvent); err != nil {
		s.logger.Error("failed to send connection event", zap.String("clientID", client.ID), zap.Error(err))
		return
	}

	ticker := time.NewTicker(s.config.KeepaliveInterval)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-client.done:
			return
		case event := <-client.events:
			if err := writeEvent(w, flusher, event); err != nil {
				s.logger.Error("failed to send event to client", zap.String("clientID", client.ID), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := writeEvent(w, flusher, newEvent("keepalive", map[string]any{"timestamp": time.Now()})); err != nil {
				return
			}
		}
	}
}

// ConnectedClients returns information about connected clients
func (s *EventServer) ConnectedClients() []map[string]any {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	clients := make([]map[string]any, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, map[string]any{
			"id":          client.ID,
			"connectedAt": client.ConnectedAt,
		})
	}
	return clients
}

// Stats returns server statistics
func (s *EventServer) Stats() map[string]any {
	s.clientsMutex.RLock()
	defer s.clientsMutex.RUnlock()

	return map[string]any{
		"connectedClients": len(s.clients),
		"bufferedEvents":   len(s.broadcast),
		"serverVersion":    Version,
	}
}

// HandleStats writes Stats as JSON.
func (s *EventServer) HandleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	stats := s.Stats()
	stats["clients"] = s.ConnectedClients()
	if err := json.NewEncoder(w).Encode(stats); err != nil {
		s.logger.Error("failed to encode stats", zap.Error(err))
	}
}
