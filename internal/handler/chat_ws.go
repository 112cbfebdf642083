package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"storylion-server/internal/middleware"
	"storylion-server/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Gateway enforces origin policy.
		return true
	},
}

const (
	senderUser = "user"
	senderAI   = "ai"

	frameTypeTurnEnd     = "turn_end"
	frameTypeSessionDone = "session_done"
	frameTypeError       = "error"
)

// serveChatWS upgrades the connection and joins the client to its room group.
// Ownership is checked before any message flows; a foreign room gets an error
// frame and an immediate close.
func (h *Handler) serveChatWS(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}
	roomID, ok := parseIDParam(c, "roomID")
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Websocket upgrade failed", zap.Error(err), zap.Int64("userID", userID))
		return
	}

	if _, err := h.chat.GetRoom(c.Request.Context(), roomID, userID); err != nil {
		h.logger.Warn("Rejected chat room join",
			zap.Int64("roomID", roomID), zap.Int64("userID", userID), zap.Error(err))
		payload, _ := json.Marshal(outboundChatFrame{Type: frameTypeError, Message: "채팅방에 접근할 수 없습니다"})
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.TextMessage, payload)
		_ = conn.Close()
		return
	}

	client := &Client{
		UserID: userID,
		RoomID: roomID,
		Conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
	h.rooms.Join(client)

	go client.writePump(h.logger)
	h.chatReadPump(client)
}

// chatReadPump consumes user messages until the connection drops, driving the
// room's dialogue state machine. Runs on the connection's goroutine.
func (h *Handler) chatReadPump(client *Client) {
	logger := h.logger.With(zap.Int64("roomID", client.RoomID), zap.Int64("userID", client.UserID))
	defer func() {
		if empty := h.rooms.Leave(client); empty {
			if err := h.chat.EndSession(context.Background(), client.RoomID); err != nil {
				logger.Warn("Failed to end chat session", zap.Error(err))
			}
		}
		_ = client.Conn.Close()
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Unexpected close", zap.Error(err))
			}
			return
		}

		var frame chatFrame
		if err := json.Unmarshal(raw, &frame); err != nil || frame.Message == "" {
			h.sendChatError(client, "메시지 형식이 올바르지 않습니다")
			continue
		}

		h.broadcastChat(client.RoomID, outboundChatFrame{Sender: senderUser, Message: frame.Message})

		result, err := h.chat.HandleMessage(context.Background(), client.RoomID, frame.Message)
		if err != nil {
			logger.Error("Chat turn failed", zap.Error(err))
			h.sendChatError(client, "답변 생성에 실패했어요. 다시 말해 줄래?")
			continue
		}

		for _, reply := range result.Replies {
			h.broadcastChat(client.RoomID, outboundChatFrame{Sender: senderAI, Message: reply})
		}
		if result.TurnEnd {
			h.broadcastChat(client.RoomID, outboundChatFrame{Sender: senderAI, Type: frameTypeTurnEnd})
		}
		if result.Close {
			done := outboundChatFrame{Sender: senderAI, Type: frameTypeSessionDone}
			if result.ExtendedStory != nil {
				done.StoryID = result.ExtendedStory.ID
			}
			h.broadcastChat(client.RoomID, done)
			h.rooms.CloseRoom(client.RoomID)
			return
		}
	}
}

func (h *Handler) broadcastChat(roomID int64, frame outboundChatFrame) {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("Failed to marshal chat frame", zap.Error(err))
		return
	}
	h.rooms.Broadcast(roomID, payload)
}

// sendChatError delivers an error frame to one client only; the session stays
// open.
func (h *Handler) sendChatError(client *Client, message string) {
	payload, _ := json.Marshal(outboundChatFrame{Type: frameTypeError, Message: message})
	client.Send(payload)
}
