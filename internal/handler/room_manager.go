package handler

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from the peer. Draft sessions carry audio
	// fragments, so the limit is generous.
	maxMessageSize = 1 << 20

	sendBufferSize = 256
)

// Client is one websocket connection joined to a room group.
type Client struct {
	UserID int64
	RoomID int64
	Conn   *websocket.Conn
	send   chan []byte
}

// Send queues a payload for delivery; drops it when the client is draining.
func (c *Client) Send(message []byte) bool {
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// RoomManager tracks which clients belong to which room group and broadcasts
// to whole groups.
type RoomManager struct {
	mu     sync.RWMutex
	rooms  map[int64]map[*Client]struct{}
	logger *zap.Logger
}

// NewRoomManager creates an empty manager.
func NewRoomManager(logger *zap.Logger) *RoomManager {
	return &RoomManager{
		rooms:  make(map[int64]map[*Client]struct{}),
		logger: logger.Named("RoomManager"),
	}
}

// Join adds a client to its room group.
func (m *RoomManager) Join(client *Client) {
	m.mu.Lock()
	group, ok := m.rooms[client.RoomID]
	if !ok {
		group = make(map[*Client]struct{})
		m.rooms[client.RoomID] = group
	}
	group[client] = struct{}{}
	m.mu.Unlock()
	m.logger.Debug("Client joined room", zap.Int64("roomID", client.RoomID), zap.Int64("userID", client.UserID))
}

// Leave removes a client from its room group and reports whether the group is
// now empty.
func (m *RoomManager) Leave(client *Client) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	group, ok := m.rooms[client.RoomID]
	if !ok {
		return true
	}
	if _, member := group[client]; member {
		delete(group, client)
		close(client.send)
	}
	if len(group) == 0 {
		delete(m.rooms, client.RoomID)
		return true
	}
	return false
}

// Broadcast queues a payload for every member of a room group.
func (m *RoomManager) Broadcast(roomID int64, message []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for client := range m.rooms[roomID] {
		if !client.Send(message) {
			m.logger.Warn("Dropping message for slow client",
				zap.Int64("roomID", roomID), zap.Int64("userID", client.UserID))
		}
	}
}

// CloseRoom queues a close frame for every member and lets their write pumps
// finish the shutdown.
func (m *RoomManager) CloseRoom(roomID int64) {
	m.mu.RLock()
	clients := make([]*Client, 0)
	for client := range m.rooms[roomID] {
		clients = append(clients, client)
	}
	m.mu.RUnlock()

	for _, client := range clients {
		_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = client.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session complete"))
		_ = client.Conn.Close()
	}
}

// writePump drains the send channel into the connection and keeps it alive
// with pings. One writePump per connection; it owns all writes.
func (c *Client) writePump(logger *zap.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Debug("Write failed, closing pump", zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
