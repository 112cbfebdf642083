package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"storylion-server/internal/middleware"
	"storylion-server/internal/models"
	"storylion-server/internal/session"
	"storylion-server/internal/textutil"
)

const (
	draftLanguage   = "ko"
	draftOpsTimeout = 30 * time.Second
)

const (
	draftCmdPause         = "pause"
	draftCmdResume        = "resume"
	draftCmdStop          = "stop"
	draftCmdSwitchToText  = "switch_to_text"
	draftCmdSwitchToVoice = "switch_to_voice"
	draftCmdSaveText      = "save_text"
)

// draftCommand is one inbound control frame on the dictation socket.
type draftCommand struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// draftEvent is one outbound frame on the dictation socket.
type draftEvent struct {
	Type    string `json:"type"` // "transcript", "draft", "mode", "error", "saved"
	Text    string `json:"text,omitempty"`
	Draft   string `json:"draft,omitempty"`
	Mode    string `json:"mode,omitempty"`
	Message string `json:"message,omitempty"`
}

// draftSession holds the per-connection dictation state.
type draftSession struct {
	userID int64
	conn   *websocket.Conn
	paused bool
	voice  bool
}

// serveDraftWS runs the dictation session. Binary frames carry audio
// fragments; text frames carry control commands. The accumulated draft lives
// in the user's draft scope, so the REST pipeline sees it too.
func (h *Handler) serveDraftWS(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		handleServiceError(c, models.ErrUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Websocket upgrade failed", zap.Error(err), zap.Int64("userID", userID))
		return
	}
	defer conn.Close()

	sess := &draftSession{userID: userID, conn: conn, voice: true}
	logger := h.logger.With(zap.Int64("userID", userID))

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Unexpected close on draft session", zap.Error(err))
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			h.handleDraftAudio(sess, raw, logger)
		case websocket.TextMessage:
			var cmd draftCommand
			if err := json.Unmarshal(raw, &cmd); err != nil {
				h.sendDraftEvent(sess, draftEvent{Type: "error", Message: "명령 형식이 올바르지 않습니다"})
				continue
			}
			if done := h.handleDraftCommand(sess, cmd, logger); done {
				return
			}
		}
	}
}

// handleDraftAudio transcribes one audio fragment and appends it to the
// draft. Fragments arriving while paused or in text mode are dropped.
func (h *Handler) handleDraftAudio(sess *draftSession, audio []byte, logger *zap.Logger) {
	if sess.paused || !sess.voice {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), draftOpsTimeout)
	defer cancel()

	fragment, err := h.stt.Transcribe(ctx, bytes.NewReader(audio), draftLanguage)
	if err != nil {
		logger.Warn("Transcription failed", zap.Error(err))
		h.sendDraftEvent(sess, draftEvent{Type: "error", Message: "음성 인식에 실패했어요. 다시 말해 줄래?"})
		return
	}
	fragment = textutil.NormalizeSentence(fragment)
	if fragment == "" {
		return
	}

	scope := session.DraftKey(sess.userID)
	fields, err := h.sessions.Get(ctx, scope)
	if err != nil {
		logger.Error("Failed to load draft scope", zap.Error(err))
		h.sendDraftEvent(sess, draftEvent{Type: "error", Message: "초안 저장에 실패했어요"})
		return
	}
	draft := textutil.AppendSentence(fields["text"], fragment)
	if err := h.sessions.Set(ctx, scope, map[string]string{"text": draft}); err != nil {
		logger.Error("Failed to store draft scope", zap.Error(err))
		h.sendDraftEvent(sess, draftEvent{Type: "error", Message: "초안 저장에 실패했어요"})
		return
	}

	h.sendDraftEvent(sess, draftEvent{Type: "transcript", Text: fragment, Draft: draft})
}

// handleDraftCommand dispatches one control command. Returns true when the
// session should close.
func (h *Handler) handleDraftCommand(sess *draftSession, cmd draftCommand, logger *zap.Logger) bool {
	switch cmd.Type {
	case draftCmdPause:
		sess.paused = true
		h.sendDraftEvent(sess, draftEvent{Type: "mode", Mode: "paused"})
	case draftCmdResume:
		sess.paused = false
		h.sendDraftEvent(sess, draftEvent{Type: "mode", Mode: "listening"})
	case draftCmdSwitchToText:
		// Hand the accumulated draft to the client for manual editing.
		sess.voice = false
		draft, err := h.loadDraft(sess.userID)
		if err != nil {
			logger.Error("Failed to load draft scope", zap.Error(err))
			h.sendDraftEvent(sess, draftEvent{Type: "error", Message: "초안을 불러오지 못했어요"})
			return false
		}
		h.sendDraftEvent(sess, draftEvent{Type: "mode", Mode: "text", Draft: draft})
	case draftCmdSwitchToVoice:
		// The command carries the manually edited text; it replaces the
		// accumulated draft before voice capture resumes.
		if edited := textutil.NormalizeSentence(cmd.Text); edited != "" {
			if err := h.storeDraft(sess.userID, edited); err != nil {
				logger.Error("Failed to store edited draft", zap.Error(err))
				h.sendDraftEvent(sess, draftEvent{Type: "error", Message: "초안 저장에 실패했어요"})
				return false
			}
		}
		sess.voice = true
		h.sendDraftEvent(sess, draftEvent{Type: "mode", Mode: "voice"})
	case draftCmdSaveText:
		ctx, cancel := context.WithTimeout(context.Background(), draftOpsTimeout)
		defer cancel()
		stored, err := h.pipeline.SaveDraft(ctx, sess.userID, cmd.Text)
		if err != nil {
			logger.Warn("Draft save failed", zap.Error(err))
			h.sendDraftEvent(sess, draftEvent{Type: "error", Message: "초안 저장에 실패했어요"})
			return false
		}
		h.sendDraftEvent(sess, draftEvent{Type: "saved", Draft: stored})
	case draftCmdStop:
		// Acknowledges completion with the final draft; closing the
		// connection stays with the client.
		draft, err := h.loadDraft(sess.userID)
		if err != nil {
			logger.Error("Failed to load draft scope", zap.Error(err))
			h.sendDraftEvent(sess, draftEvent{Type: "error", Message: "초안을 불러오지 못했어요"})
			return false
		}
		h.sendDraftEvent(sess, draftEvent{Type: "mode", Mode: "stopped", Draft: draft})
	default:
		h.sendDraftEvent(sess, draftEvent{Type: "error", Message: "알 수 없는 명령입니다"})
	}
	return false
}

func (h *Handler) loadDraft(userID int64) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), draftOpsTimeout)
	defer cancel()
	fields, err := h.sessions.Get(ctx, session.DraftKey(userID))
	if err != nil {
		return "", err
	}
	return fields["text"], nil
}

func (h *Handler) storeDraft(userID int64, text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), draftOpsTimeout)
	defer cancel()
	return h.sessions.Set(ctx, session.DraftKey(userID), map[string]string{"text": text})
}

func (h *Handler) sendDraftEvent(sess *draftSession, event draftEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	_ = sess.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := sess.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		h.logger.Debug("Draft event write failed", zap.Error(err))
	}
}
