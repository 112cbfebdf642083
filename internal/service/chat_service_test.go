package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storylion-server/internal/chatstate"
	"storylion-server/internal/models"
	"storylion-server/internal/service/mocks"
)

type chatFixture struct {
	svc       ChatService
	states    chatstate.Store
	chatRepo  *mocks.MockChatRepository
	storyRepo *mocks.MockStoryRepository
	libRepo   *mocks.MockLibraryRepository
	textGen   *mocks.MockTextGenerator
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{
		states:    chatstate.NewMemoryStore(),
		chatRepo:  &mocks.MockChatRepository{},
		storyRepo: &mocks.MockStoryRepository{},
		libRepo:   &mocks.MockLibraryRepository{},
		textGen:   &mocks.MockTextGenerator{},
	}
	f.svc = NewChatService(f.chatRepo, f.storyRepo, f.libRepo, f.textGen, f.states, zap.NewNop())
	return f
}

var testRoom = &models.ChatRoom{ID: 10, StoryID: 42, UserID: 1}

var testStory = &models.Story{
	ID:       42,
	UserID:   1,
	Title:    "토끼의 모험",
	Author:   "AI",
	Content:  "옛날 옛적에 토끼가 살았어요. 토끼는 숲으로 떠났어요.",
	Category: models.CategoryCustom,
}

func TestHandleMessageNormalTurn(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.chatRepo.On("GetRoom", mock.Anything, int64(10)).Return(testRoom, nil)
	f.chatRepo.On("SaveMessage", mock.Anything, mock.AnythingOfType("*models.Message")).Return(nil)
	f.chatRepo.On("CountAIQuestions", mock.Anything, int64(10)).Return(3, nil)
	f.storyRepo.On("GetStory", mock.Anything, int64(42)).Return(testStory, nil)
	f.chatRepo.On("ListMessages", mock.Anything, int64(10)).Return([]models.Message{
		{Sender: models.SenderUser, Text: "토끼는 배가 고팠어요"},
	}, nil)
	f.textGen.On("GenerateText", mock.Anything, chatSystemPrompt, mock.Anything).
		Return("토끼는 그 다음에 무엇을 했을까?", nil)

	result, err := f.svc.HandleMessage(ctx, 10, "토끼는 배가 고팠어요")
	require.NoError(t, err)
	assert.Equal(t, []string{"토끼는 그 다음에 무엇을 했을까?"}, result.Replies)
	assert.True(t, result.TurnEnd)
	assert.False(t, result.Close)

	// The AI message carries its originating prompt for audit.
	saved := f.chatRepo.Calls[len(f.chatRepo.Calls)-1].Arguments.Get(1).(*models.Message)
	assert.Equal(t, models.SenderAI, saved.Sender)
	assert.NotEmpty(t, saved.Prompt)

	state := f.states.Get(10)
	assert.Equal(t, chatstate.ModeNormal, state.Mode)
}

func TestHandleMessageChecksThreshold(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.chatRepo.On("GetRoom", mock.Anything, int64(10)).Return(testRoom, nil)
	f.chatRepo.On("SaveMessage", mock.Anything, mock.AnythingOfType("*models.Message")).Return(nil)
	f.chatRepo.On("CountAIQuestions", mock.Anything, int64(10)).Return(10, nil)

	result, err := f.svc.HandleMessage(ctx, 10, "그리고 나서...")
	require.NoError(t, err)
	assert.Equal(t, []string{CheckpointPrompt}, result.Replies)

	state := f.states.Get(10)
	assert.Equal(t, chatstate.ModeEnding, state.Mode)
	assert.Equal(t, chatstate.PhaseInitial, state.Phase)

	// The generator is never consulted on a checkpoint turn.
	f.textGen.AssertNotCalled(t, "GenerateText", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckpointFiresEveryThirdExtendedRound(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.chatRepo.On("GetRoom", mock.Anything, int64(10)).Return(testRoom, nil)
	f.chatRepo.On("SaveMessage", mock.Anything, mock.AnythingOfType("*models.Message")).Return(nil)
	f.chatRepo.On("CountAIQuestions", mock.Anything, int64(10)).Return(10, nil)
	f.storyRepo.On("GetStory", mock.Anything, int64(42)).Return(testStory, nil)
	f.chatRepo.On("ListMessages", mock.Anything, int64(10)).Return([]models.Message{}, nil)
	f.textGen.On("GenerateText", mock.Anything, chatSystemPrompt, mock.Anything).Return("좋아, 계속해 볼까?", nil)

	f.states.Set(10, chatstate.State{Mode: chatstate.ModeNormal, Phase: chatstate.PhaseExtended, RoundCount: 0})

	// Rounds 1 and 2 generate normally; round 3 emits the checkpoint.
	for round := 1; round <= 2; round++ {
		result, err := f.svc.HandleMessage(ctx, 10, "더 이야기할래")
		require.NoError(t, err)
		assert.NotEqual(t, []string{CheckpointPrompt}, result.Replies, "round %d must not checkpoint", round)
	}
	result, err := f.svc.HandleMessage(ctx, 10, "더 이야기할래")
	require.NoError(t, err)
	assert.Equal(t, []string{CheckpointPrompt}, result.Replies)

	state := f.states.Get(10)
	assert.Equal(t, chatstate.ModeEnding, state.Mode)
	assert.Equal(t, chatstate.PhaseExtended, state.Phase)
	assert.Equal(t, 3, state.RoundCount)
}

func TestCheckpointDeclineResumesExtended(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.chatRepo.On("GetRoom", mock.Anything, int64(10)).Return(testRoom, nil)
	f.chatRepo.On("SaveMessage", mock.Anything, mock.AnythingOfType("*models.Message")).Return(nil)

	f.states.Set(10, chatstate.State{Mode: chatstate.ModeEnding, Phase: chatstate.PhaseInitial, RoundCount: 0})

	result, err := f.svc.HandleMessage(ctx, 10, "false")
	require.NoError(t, err)
	assert.Equal(t, []string{EncouragementMessage}, result.Replies)
	assert.False(t, result.Close)

	state := f.states.Get(10)
	assert.Equal(t, chatstate.ModeNormal, state.Mode)
	assert.Equal(t, chatstate.PhaseExtended, state.Phase)
	assert.Equal(t, 0, state.RoundCount)
}

func TestCheckpointRePromptsOnOtherInput(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.chatRepo.On("GetRoom", mock.Anything, int64(10)).Return(testRoom, nil)

	before := chatstate.State{Mode: chatstate.ModeEnding, Phase: chatstate.PhaseExtended, RoundCount: 6}
	f.states.Set(10, before)

	result, err := f.svc.HandleMessage(ctx, 10, "응 좋아!")
	require.NoError(t, err)
	assert.Equal(t, []string{CheckpointRePrompt}, result.Replies)
	assert.Equal(t, before, f.states.Get(10), "re-prompt must not change state")
}

func TestCheckpointAcceptRunsEndingExtension(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.chatRepo.On("GetRoom", mock.Anything, int64(10)).Return(testRoom, nil)
	f.storyRepo.On("GetStory", mock.Anything, int64(42)).Return(testStory, nil)
	f.chatRepo.On("ListMessages", mock.Anything, int64(10)).Return([]models.Message{
		{Sender: models.SenderAI, Text: "토끼는 어디로 갔을까?"},
		{Sender: models.SenderUser, Text: "바다로 갔어요"},
	}, nil)
	f.textGen.On("GenerateText", mock.Anything, endingSystemPrompt, mock.Anything).
		Return("토끼는 바다에 도착했어요.\n그곳에서 친구들을 만났어요.\n모두 행복하게 살았답니다.", nil)
	f.chatRepo.On("SaveMessage", mock.Anything, mock.AnythingOfType("*models.Message")).Return(nil)
	f.storyRepo.On("CreateStory", mock.Anything, mock.AnythingOfType("*models.Story")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Story).ID = 77
		}).Return(nil)
	var savedPages []string
	f.storyRepo.On("CreatePages", mock.Anything, int64(77), mock.Anything).
		Run(func(args mock.Arguments) {
			savedPages = args.Get(2).([]string)
		}).Return(nil)
	f.storyRepo.On("CreateExtension", mock.Anything, mock.AnythingOfType("*models.StoryExtension")).Return(nil)
	f.libRepo.On("UpsertLibrary", mock.Anything, int64(1), int64(77)).
		Return(&models.Library{ID: 3, UserID: 1, StoryID: 77}, nil)

	f.states.Set(10, chatstate.State{Mode: chatstate.ModeEnding, Phase: chatstate.PhaseInitial, RoundCount: 0})

	result, err := f.svc.HandleMessage(ctx, 10, "true")
	require.NoError(t, err)
	assert.True(t, result.Close)
	require.NotNil(t, result.ExtendedStory)
	assert.Equal(t, models.CategoryExtended, result.ExtendedStory.Category)
	assert.Equal(t, testStory.Title+" - 확장편", result.ExtendedStory.Title)
	assert.Contains(t, result.ExtendedStory.Content, testStory.Content)
	assert.Contains(t, result.ExtendedStory.Content, "모두 행복하게 살았답니다.")

	// One page per line of the combined content.
	assert.Equal(t, []string{
		testStory.Content,
		"토끼는 바다에 도착했어요.",
		"그곳에서 친구들을 만났어요.",
		"모두 행복하게 살았답니다.",
	}, savedPages)

	state := f.states.Get(10)
	assert.Equal(t, chatstate.ModeDone, state.Mode)
	assert.Equal(t, chatstate.PhaseDone, state.Phase)
	f.storyRepo.AssertExpectations(t)
}

func TestEndSessionWipesRoom(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	f.chatRepo.On("DeleteMessages", mock.Anything, int64(10)).Return(nil)
	f.states.Set(10, chatstate.State{Mode: chatstate.ModeNormal, Phase: chatstate.PhaseExtended, RoundCount: 2})

	require.NoError(t, f.svc.EndSession(ctx, 10))
	f.chatRepo.AssertExpectations(t)

	// State resets to the initial default on next access.
	state := f.states.Get(10)
	assert.Equal(t, chatstate.ModeNormal, state.Mode)
	assert.Equal(t, chatstate.PhaseInitial, state.Phase)
	assert.Equal(t, 0, state.RoundCount)
}
