package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storylion-server/internal/interfaces"
	"storylion-server/internal/middleware"
	"storylion-server/internal/service"
	"storylion-server/internal/session"
)

// Handler wires the HTTP and websocket surface to the services.
type Handler struct {
	pipeline service.PipelineService
	stories  service.StoryService
	library  service.LibraryService
	voices   service.VoiceService
	accounts service.AccountService
	chat     service.ChatService
	morals   interfaces.MoralRepository
	sessions session.Store
	stt      interfaces.Transcriber
	rooms    *RoomManager
	verifier middleware.TokenVerifier
	logger   *zap.Logger
}

// NewHandler creates the API handler.
func NewHandler(
	pipeline service.PipelineService,
	stories service.StoryService,
	library service.LibraryService,
	voices service.VoiceService,
	accounts service.AccountService,
	chat service.ChatService,
	morals interfaces.MoralRepository,
	sessions session.Store,
	stt interfaces.Transcriber,
	rooms *RoomManager,
	verifier middleware.TokenVerifier,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		pipeline: pipeline,
		stories:  stories,
		library:  library,
		voices:   voices,
		accounts: accounts,
		chat:     chat,
		morals:   morals,
		sessions: sessions,
		stt:      stt,
		rooms:    rooms,
		verifier: verifier,
		logger:   logger.Named("Handler"),
	}
}

// RegisterRoutes attaches all routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := router.Group("/", middleware.AuthMiddleware(h.verifier, h.logger))
	{
		story := auth.Group("/story")
		{
			story.POST("/option", h.saveOptions)
			story.POST("/draft", h.saveDraft)
			story.POST("/morals", h.saveMorals)
			story.POST("/generate", h.generateStory)
			story.POST("/reset", h.resetPipeline)

			story.GET("/morals/list", h.listMorals)
			story.GET("/list", h.listStories)
			story.GET("/:id", h.getStory)
			story.GET("/:id/pages", h.getStoryPages)
			story.GET("/:id/script", h.getStoryScript)
			story.POST("/classic/upload", h.uploadClassic)

			story.POST("/:id/illustrations", h.requestIllustrations)
			story.GET("/illustrations/jobs/:jobID", h.getIllustrationJob)
		}

		library := auth.Group("/mylibrary")
		{
			library.GET("", h.listLibrary)
			library.DELETE("/:id", h.deleteLibrary)
			library.POST("/history", h.recordRead)
			library.GET("/history", h.listHistory)
		}

		voice := auth.Group("/voice")
		{
			voice.POST("/clone", h.cloneVoice)
			voice.GET("/list", h.listVoices)
			voice.GET("/narration/:storyID/:voiceID", h.narrateStory)
		}

		ai := auth.Group("/ai")
		{
			ai.POST("/extension/room", h.createChatRoom)
		}

		account := auth.Group("/account")
		{
			account.GET("/me", h.getMe)
			account.DELETE("", h.deleteAccount)
		}

		auth.GET("/ws/chat/:roomID", h.serveChatWS)
		auth.GET("/ws/draft", h.serveDraftWS)
	}
}
