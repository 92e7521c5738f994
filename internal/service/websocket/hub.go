// Package websocket fans flushed record batches out to live viewers.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"rockparser/internal/dto"
	"rockparser/internal/logger"
	"rockparser/internal/model"
)

const (
	// BroadcastQueueSize bounds the batches waiting for the hub loop.
	BroadcastQueueSize = 16
	// PongWait is how long a viewer may stay silent before it is dropped.
	// Pings go out well within it.
	PongWait  = 60 * time.Second
	writeWait = 10 * time.Second
)

var ErrQueueFull = errors.New("live feed queue full")

type HubService struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *logger.Logger

	runID  string
	source string

	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewHubService(runID, source string, logger *logger.Logger) *HubService {
	return &HubService{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, BroadcastQueueSize),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		logger:     logger,
		runID:      runID,
		source:     source,
		pongWait:   PongWait,
		pingPeriod: PongWait * 9 / 10,
	}
}

// SetKeepAlive changes the viewer timeout. Call it before Run.
func (h *HubService) SetKeepAlive(pongWait time.Duration) {
	h.pongWait = pongWait
	h.pingPeriod = pongWait * 9 / 10
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client.
func (h *HubService) Run(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer connected. Total: %d", count)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Info("Viewer disconnected. Total: %d", count)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Error("Error sending message: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()

		case <-ticker.C:
			h.mutex.Lock()
			deadline := time.Now().Add(writeWait)
			for client := range h.clients {
				if err := client.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					h.logger.Warning("Ping failed, dropping viewer: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *HubService) Register(client *websocket.Conn) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *HubService) Unregister(client *websocket.Conn) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast queues message for every viewer without blocking.
func (h *HubService) Broadcast(message []byte) error {
	select {
	case h.broadcast <- message:
		return nil
	default:
		return ErrQueueFull
	}
}

// WriteRecords publishes a flushed batch to viewers.
func (h *HubService) WriteRecords(records []model.Record) error {
	message, err := json.Marshal(dto.RecordBatch{
		RunID:   h.runID,
		Source:  h.source,
		Records: records,
	})
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}
	return h.Broadcast(message)
}

func (h *HubService) GetClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
