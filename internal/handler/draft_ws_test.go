package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storylion-server/internal/middleware"
	"storylion-server/internal/service"
	"storylion-server/internal/service/mocks"
	"storylion-server/internal/session"
)

type draftWSFixture struct {
	sessions session.Store
	stt      *mocks.MockTranscriber
	conn     *websocket.Conn
}

// newDraftWSFixture starts a real websocket session against serveDraftWS with
// the user pre-authenticated.
func newDraftWSFixture(t *testing.T) *draftWSFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	sessions := session.NewRedisStore(client, zap.NewNop())

	stt := new(mocks.MockTranscriber)
	h := &Handler{
		pipeline: service.NewPipelineService(sessions, nil, nil, nil, nil, zap.NewNop()),
		sessions: sessions,
		stt:      stt,
		logger:   zap.NewNop(),
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws/draft", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, int64(1))
		h.serveDraftWS(c)
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/draft"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &draftWSFixture{sessions: sessions, stt: stt, conn: conn}
}

func (f *draftWSFixture) sendCommand(t *testing.T, cmd draftCommand) draftEvent {
	t.Helper()
	require.NoError(t, f.conn.WriteJSON(cmd))
	return f.readEvent(t)
}

func (f *draftWSFixture) readEvent(t *testing.T) draftEvent {
	t.Helper()
	_, raw, err := f.conn.ReadMessage()
	require.NoError(t, err)
	var event draftEvent
	require.NoError(t, json.Unmarshal(raw, &event))
	return event
}

func (f *draftWSFixture) draftScope(t *testing.T) string {
	t.Helper()
	fields, err := f.sessions.Get(context.Background(), session.DraftKey(1))
	require.NoError(t, err)
	return fields["text"]
}

func (f *draftWSFixture) seedDraft(t *testing.T, text string) {
	t.Helper()
	err := f.sessions.Set(context.Background(), session.DraftKey(1), map[string]string{"text": text})
	require.NoError(t, err)
}

func TestDraftSwitchToVoiceOverwritesDraftWithEditedText(t *testing.T) {
	f := newDraftWSFixture(t)
	f.seedDraft(t, "옛날 옛적에 토끼가 살았어요.")

	event := f.sendCommand(t, draftCommand{Type: draftCmdSwitchToVoice, Text: "사자와 생쥐 이야기"})
	assert.Equal(t, "mode", event.Type)
	assert.Equal(t, "voice", event.Mode)

	assert.Equal(t, "사자와 생쥐 이야기.", f.draftScope(t), "edited text replaces the accumulated draft")
}

func TestDraftSwitchToTextReturnsAccumulatedDraft(t *testing.T) {
	f := newDraftWSFixture(t)
	f.seedDraft(t, "옛날 옛적에 토끼가 살았어요.")

	event := f.sendCommand(t, draftCommand{Type: draftCmdSwitchToText})
	assert.Equal(t, "mode", event.Type)
	assert.Equal(t, "text", event.Mode)
	assert.Equal(t, "옛날 옛적에 토끼가 살았어요.", event.Draft)
}

func TestDraftStopAcknowledgesWithoutClosing(t *testing.T) {
	f := newDraftWSFixture(t)
	f.seedDraft(t, "토끼는 숲으로 떠났어요.")

	event := f.sendCommand(t, draftCommand{Type: draftCmdStop})
	assert.Equal(t, "mode", event.Type)
	assert.Equal(t, "stopped", event.Mode)
	assert.Equal(t, "토끼는 숲으로 떠났어요.", event.Draft)

	// The session stays open for further commands.
	event = f.sendCommand(t, draftCommand{Type: draftCmdResume})
	assert.Equal(t, "listening", event.Mode)
}

func TestDraftAudioAppendsTranscript(t *testing.T) {
	f := newDraftWSFixture(t)
	f.seedDraft(t, "옛날 옛적에 토끼가 살았어요.")
	f.stt.On("Transcribe", mock.Anything, mock.Anything, "ko").Return("바닷가에 갔어요", nil)

	require.NoError(t, f.conn.WriteMessage(websocket.BinaryMessage, []byte("wav-bytes")))
	event := f.readEvent(t)

	assert.Equal(t, "transcript", event.Type)
	assert.Equal(t, "바닷가에 갔어요.", event.Text)
	assert.Equal(t, "옛날 옛적에 토끼가 살았어요. 바닷가에 갔어요.", event.Draft)
	assert.Equal(t, event.Draft, f.draftScope(t))
}

func TestDraftAudioDroppedWhilePaused(t *testing.T) {
	f := newDraftWSFixture(t)
	f.seedDraft(t, "옛날 옛적에 토끼가 살았어요.")

	event := f.sendCommand(t, draftCommand{Type: draftCmdPause})
	assert.Equal(t, "paused", event.Mode)

	require.NoError(t, f.conn.WriteMessage(websocket.BinaryMessage, []byte("wav-bytes")))

	// The next frame answers the resume command, proving the paused fragment
	// produced nothing.
	event = f.sendCommand(t, draftCommand{Type: draftCmdResume})
	assert.Equal(t, "listening", event.Mode)
	assert.Equal(t, "옛날 옛적에 토끼가 살았어요.", f.draftScope(t))
	f.stt.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything, mock.Anything)
}
