package hub

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/taskhive-dev/taskhive/internal/types"
)

const writeWait = 10 * time.Second

// Conn is the slice of *websocket.Conn the hub needs. Tests substitute
// an in-memory implementation.
type Conn interface {
	WriteJSON(v interface{}) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Connection is one authenticated realtime client. A connection may sit
// in any number of team rooms over its lifetime.
type Connection struct {
	ID     string
	UserID uint
	conn   Conn
}

func NewConnection(userID uint, conn Conn) *Connection {
	return &Connection{
		ID:     uuid.NewString(),
		UserID: userID,
		conn:   conn,
	}
}

func (c *Connection) Send(payload interface{}) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteJSON(payload)
}

// Hub is the process-wide room registry: team ID to the set of
// connections currently joined to that team's channel.
type Hub struct {
	rooms map[uint]map[*Connection]bool
	mu    sync.RWMutex
}

func New() *Hub {
	return &Hub{
		rooms: make(map[uint]map[*Connection]bool),
	}
}

func (h *Hub) Join(teamID uint, c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rooms[teamID] == nil {
		h.rooms[teamID] = make(map[*Connection]bool)
	}

	h.rooms[teamID][c] = true
}

func (h *Hub) Leave(teamID uint, c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(teamID, c)
}

// Disconnect removes the connection from every room it joined.
func (h *Hub) Disconnect(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for teamID := range h.rooms {
		h.removeLocked(teamID, c)
	}
}

func (h *Hub) removeLocked(teamID uint, c *Connection) {
	if clients, exists := h.rooms[teamID]; exists {
		delete(clients, c)

		if len(clients) == 0 {
			delete(h.rooms, teamID)
		}
	}
}

func (h *Hub) RoomSize(teamID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.rooms[teamID])
}

// Broadcast delivers payload to every connection in the team's room.
// Delivery is best-effort: a connection that fails the write is pruned
// and closed.
func (h *Hub) Broadcast(teamID uint, payload interface{}) {
	h.mu.RLock()
	clients, exists := h.rooms[teamID]

	if !exists || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	clientsCopy := make([]*Connection, 0, len(clients))
	for c := range clients {
		clientsCopy = append(clientsCopy, c)
	}
	h.mu.RUnlock()

	for _, c := range clientsCopy {
		if err := c.Send(payload); err != nil {
			log.Printf("Failed to broadcast to connection %s: %v", c.ID, err)

			h.mu.Lock()
			h.removeLocked(teamID, c)
			h.mu.Unlock()

			c.conn.Close()
		}
	}
}

// NotifyTaskCreated emits into the room of the task's team. Tasks with
// no team emit nothing; there is no personal channel.
func (h *Hub) NotifyTaskCreated(task types.TaskResponse) {
	if task.TeamID == nil {
		return
	}

	h.Broadcast(*task.TeamID, map[string]interface{}{
		"type": "task:created",
		"task": task,
	})
}

func (h *Hub) NotifyTaskUpdated(task types.TaskResponse) {
	if task.TeamID == nil {
		return
	}

	h.Broadcast(*task.TeamID, map[string]interface{}{
		"type": "task:updated",
		"task": task,
	})
}

// NotifyTaskDeleted takes the id and team captured before the delete,
// since the row is gone by the time the event goes out.
func (h *Hub) NotifyTaskDeleted(taskID uint, teamID *uint) {
	if teamID == nil {
		return
	}

	h.Broadcast(*teamID, map[string]interface{}{
		"type": "task:deleted",
		"task": map[string]interface{}{
			"id":      taskID,
			"team_id": *teamID,
		},
	})
}

// Global hub instance
var globalHub *Hub

// Initialize creates the global hub
func Initialize() {
	globalHub = New()
}

func Default() *Hub {
	if globalHub == nil {
		Initialize()
	}
	return globalHub
}

func NotifyTaskCreated(task types.TaskResponse) {
	Default().NotifyTaskCreated(task)
}

func NotifyTaskUpdated(task types.TaskResponse) {
	Default().NotifyTaskUpdated(task)
}

func NotifyTaskDeleted(taskID uint, teamID *uint) {
	Default().NotifyTaskDeleted(taskID, teamID)
}
