package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"

	"storylion-server/internal/chatstate"
	"storylion-server/internal/interfaces"
	"storylion-server/internal/models"
)

const (
	// initialQuestionThreshold is the number of AI questions in the initial
	// phase before the ending checkpoint fires.
	initialQuestionThreshold = 10

	// extendedCheckpointEvery fires the checkpoint on every n-th round of the
	// extended phase.
	extendedCheckpointEvery = 3

	// storyContextTokenLimit bounds the story content embedded in chat prompts.
	storyContextTokenLimit = 1500

	tokenEncoding = "cl100k_base"
)

// TurnResult is what the websocket handler broadcasts after one user message.
type TurnResult struct {
	// Replies are AI messages to broadcast to the room, in order.
	Replies []string
	// TurnEnd signals a completed generation turn (the client re-enables input).
	TurnEnd bool
	// Close tells the handler to close the room's connections; set only after
	// the ending extension has been committed.
	Close bool
	// ExtendedStory is the new story created by the ending extension, nil
	// otherwise.
	ExtendedStory *models.Story
}

// ChatService runs the guided ending dialogue for a room.
type ChatService interface {
	// CreateRoom returns the room binding the story and user, creating it on
	// first use.
	CreateRoom(ctx context.Context, storyID, userID int64) (*models.ChatRoom, error)
	// GetRoom loads a room and checks ownership.
	GetRoom(ctx context.Context, roomID, userID int64) (*models.ChatRoom, error)
	// HandleMessage advances the room's state machine by one user message.
	HandleMessage(ctx context.Context, roomID int64, text string) (*TurnResult, error)
	// EndSession wipes the room's ephemeral message log and conversation state.
	EndSession(ctx context.Context, roomID int64) error
}

// Compile-time check to ensure chatServiceImpl implements ChatService
var _ ChatService = (*chatServiceImpl)(nil)

type chatServiceImpl struct {
	chatRepo    interfaces.ChatRepository
	storyRepo   interfaces.StoryRepository
	libraryRepo interfaces.LibraryRepository
	textGen     interfaces.TextGenerator
	states      chatstate.Store
	logger      *zap.Logger

	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
}

// NewChatService creates the guided chat state machine.
func NewChatService(
	chatRepo interfaces.ChatRepository,
	storyRepo interfaces.StoryRepository,
	libraryRepo interfaces.LibraryRepository,
	textGen interfaces.TextGenerator,
	states chatstate.Store,
	logger *zap.Logger,
) ChatService {
	return &chatServiceImpl{
		chatRepo:    chatRepo,
		storyRepo:   storyRepo,
		libraryRepo: libraryRepo,
		textGen:     textGen,
		states:      states,
		logger:      logger.Named("ChatService"),
	}
}

func (s *chatServiceImpl) CreateRoom(ctx context.Context, storyID, userID int64) (*models.ChatRoom, error) {
	if _, err := s.storyRepo.GetStory(ctx, storyID); err != nil {
		return nil, err
	}
	return s.chatRepo.GetOrCreateRoom(ctx, storyID, userID)
}

func (s *chatServiceImpl) GetRoom(ctx context.Context, roomID, userID int64) (*models.ChatRoom, error) {
	room, err := s.chatRepo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.UserID != userID {
		return nil, models.ErrForbidden
	}
	return room, nil
}

func (s *chatServiceImpl) HandleMessage(ctx context.Context, roomID int64, text string) (*TurnResult, error) {
	room, err := s.chatRepo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	state := s.states.Get(roomID)

	if state.Mode == chatstate.ModeEnding {
		return s.handleCheckpointAnswer(ctx, room, state, text)
	}
	if state.Mode == chatstate.ModeDone {
		// Terminal; the connection should already be closed.
		return &TurnResult{Close: true}, nil
	}

	userMsg := &models.Message{
		RoomID:  roomID,
		StoryID: room.StoryID,
		Sender:  models.SenderUser,
		Text:    text,
	}
	if err := s.chatRepo.SaveMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	switch state.Phase {
	case chatstate.PhaseInitial:
		count, err := s.chatRepo.CountAIQuestions(ctx, roomID)
		if err != nil {
			return nil, fmt.Errorf("failed to count questions: %w", err)
		}
		if count >= initialQuestionThreshold {
			return s.emitCheckpoint(ctx, room, chatstate.State{
				Mode: chatstate.ModeEnding, Phase: chatstate.PhaseInitial, RoundCount: 0,
			})
		}
		return s.generateReply(ctx, room, count)

	case chatstate.PhaseExtended:
		state.RoundCount++
		s.states.Set(roomID, state)
		if state.RoundCount%extendedCheckpointEvery == 0 {
			return s.emitCheckpoint(ctx, room, chatstate.State{
				Mode: chatstate.ModeEnding, Phase: chatstate.PhaseExtended, RoundCount: state.RoundCount,
			})
		}
		count, err := s.chatRepo.CountAIQuestions(ctx, roomID)
		if err != nil {
			return nil, fmt.Errorf("failed to count questions: %w", err)
		}
		return s.generateReply(ctx, room, count)

	default:
		return nil, fmt.Errorf("unexpected conversation phase %q for room %d", state.Phase, roomID)
	}
}

// emitCheckpoint switches the room into ending mode and sends the fixed
// permission prompt without calling the generator.
func (s *chatServiceImpl) emitCheckpoint(ctx context.Context, room *models.ChatRoom, next chatstate.State) (*TurnResult, error) {
	aiMsg := &models.Message{
		RoomID:  room.ID,
		StoryID: room.StoryID,
		Sender:  models.SenderAI,
		Text:    CheckpointPrompt,
	}
	if err := s.chatRepo.SaveMessage(ctx, aiMsg); err != nil {
		return nil, fmt.Errorf("failed to save checkpoint message: %w", err)
	}
	s.states.Set(room.ID, next)
	return &TurnResult{Replies: []string{CheckpointPrompt}, TurnEnd: true}, nil
}

// handleCheckpointAnswer processes the true/false reply to the checkpoint.
// Anything else re-prompts without a state change.
func (s *chatServiceImpl) handleCheckpointAnswer(ctx context.Context, room *models.ChatRoom, state chatstate.State, text string) (*TurnResult, error) {
	switch strings.TrimSpace(strings.ToLower(text)) {
	case "true":
		return s.runEndingExtension(ctx, room)
	case "false":
		s.states.Set(room.ID, chatstate.State{
			Mode: chatstate.ModeNormal, Phase: chatstate.PhaseExtended, RoundCount: 0,
		})
		aiMsg := &models.Message{
			RoomID:  room.ID,
			StoryID: room.StoryID,
			Sender:  models.SenderAI,
			Text:    EncouragementMessage,
		}
		if err := s.chatRepo.SaveMessage(ctx, aiMsg); err != nil {
			return nil, fmt.Errorf("failed to save encouragement message: %w", err)
		}
		return &TurnResult{Replies: []string{EncouragementMessage}, TurnEnd: true}, nil
	default:
		return &TurnResult{Replies: []string{CheckpointRePrompt}, TurnEnd: true}, nil
	}
}

// runEndingExtension assembles the room transcript into a closing-scene
// prompt, persists the generated ending as a new extended story, and closes
// the dialogue.
func (s *chatServiceImpl) runEndingExtension(ctx context.Context, room *models.ChatRoom) (*TurnResult, error) {
	story, err := s.storyRepo.GetStory(ctx, room.StoryID)
	if err != nil {
		return nil, err
	}
	messages, err := s.chatRepo.ListMessages(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transcript: %w", err)
	}

	prompt := buildEndingPrompt(s.truncateTokens(story.Content, storyContextTokenLimit), formatTranscript(messages))
	ending, err := s.textGen.GenerateText(ctx, endingSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}
	ending = strings.TrimSpace(ending)

	aiMsg := &models.Message{
		RoomID:  room.ID,
		StoryID: room.StoryID,
		Sender:  models.SenderAI,
		Text:    ending,
		Prompt:  prompt,
	}
	if err := s.chatRepo.SaveMessage(ctx, aiMsg); err != nil {
		return nil, fmt.Errorf("failed to save ending message: %w", err)
	}

	// The extended story is paginated one line per page over the combined
	// content.
	fullContent := story.Content + "\n" + ending
	var pages []string
	for _, line := range strings.Split(fullContent, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			pages = append(pages, line)
		}
	}

	extended := &models.Story{
		UserID:   room.UserID,
		Title:    story.Title + " - 확장편",
		Author:   story.Author,
		Content:  fullContent,
		Runtime:  story.Runtime,
		AgeGroup: story.AgeGroup,
		Category: models.CategoryExtended,
	}
	if err := s.storyRepo.CreateStory(ctx, extended); err != nil {
		return nil, fmt.Errorf("failed to persist extended story: %w", err)
	}
	if err := s.storyRepo.CreatePages(ctx, extended.ID, pages); err != nil {
		return nil, fmt.Errorf("failed to persist extended pages: %w", err)
	}
	extended.PageCount = len(pages)

	history, err := json.Marshal(messages)
	if err != nil {
		history = nil
	}
	ext := &models.StoryExtension{
		StoryID:         story.ID,
		UserID:          room.UserID,
		ExtendedContent: ending,
		DialogueHistory: history,
	}
	if err := s.storyRepo.CreateExtension(ctx, ext); err != nil {
		return nil, fmt.Errorf("failed to record extension: %w", err)
	}
	if _, err := s.libraryRepo.UpsertLibrary(ctx, room.UserID, extended.ID); err != nil {
		return nil, fmt.Errorf("failed to create library entry: %w", err)
	}

	s.states.Set(room.ID, chatstate.State{
		Mode: chatstate.ModeDone, Phase: chatstate.PhaseDone, RoundCount: 0,
	})
	s.logger.Info("Ending extension completed",
		zap.Int64("roomID", room.ID), zap.Int64("baseStoryID", story.ID), zap.Int64("extendedStoryID", extended.ID))

	return &TurnResult{
		Replies:       []string{ending, ExtensionDoneMessage},
		TurnEnd:       true,
		Close:         true,
		ExtendedStory: extended,
	}, nil
}

// generateReply runs one normal-turn completion.
func (s *chatServiceImpl) generateReply(ctx context.Context, room *models.ChatRoom, askedCount int) (*TurnResult, error) {
	story, err := s.storyRepo.GetStory(ctx, room.StoryID)
	if err != nil {
		return nil, err
	}
	messages, err := s.chatRepo.ListMessages(ctx, room.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	latest := ""
	if len(messages) > 0 {
		latest = messages[len(messages)-1].Text
	}
	prompt := buildChatPrompt(
		s.truncateTokens(story.Content, storyContextTokenLimit),
		formatTranscript(messages),
		latest,
		askedCount,
	)

	reply, err := s.textGen.GenerateText(ctx, chatSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}
	reply = strings.TrimSpace(reply)

	aiMsg := &models.Message{
		RoomID:  room.ID,
		StoryID: room.StoryID,
		Sender:  models.SenderAI,
		Text:    reply,
		Prompt:  prompt,
	}
	if err := s.chatRepo.SaveMessage(ctx, aiMsg); err != nil {
		return nil, fmt.Errorf("failed to save AI message: %w", err)
	}
	return &TurnResult{Replies: []string{reply}, TurnEnd: true}, nil
}

func (s *chatServiceImpl) EndSession(ctx context.Context, roomID int64) error {
	s.states.Delete(roomID)
	if err := s.chatRepo.DeleteMessages(ctx, roomID); err != nil {
		return fmt.Errorf("failed to delete room messages: %w", err)
	}
	return nil
}

// truncateTokens cuts text to at most limit tokens of the chat encoding. The
// encoding is loaded lazily; when it is unavailable the cut falls back to a
// rune-count estimate so the prompt stays bounded either way.
func (s *chatServiceImpl) truncateTokens(text string, limit int) string {
	s.encoderOnce.Do(func() {
		encoder, err := tiktoken.GetEncoding(tokenEncoding)
		if err != nil {
			s.logger.Warn("Token encoding unavailable, using rune-based truncation", zap.Error(err))
			return
		}
		s.encoder = encoder
	})
	if s.encoder == nil {
		runes := []rune(text)
		if len(runes) <= limit*4 {
			return text
		}
		return string(runes[:limit*4])
	}
	tokens := s.encoder.Encode(text, nil, nil)
	if len(tokens) <= limit {
		return text
	}
	return s.encoder.Decode(tokens[:limit])
}

// formatTranscript renders a room's log oldest-first, one line per message.
func formatTranscript(messages []models.Message) string {
	var b strings.Builder
	for _, m := range messages {
		label := "아이"
		if m.Sender == models.SenderAI {
			label = "AI"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, m.Text)
	}
	return b.String()
}
