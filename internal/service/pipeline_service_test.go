package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storylion-server/internal/models"
	"storylion-server/internal/service/mocks"
	"storylion-server/internal/session"
)

type pipelineFixture struct {
	svc       PipelineService
	sessions  session.Store
	redis     *miniredis.Miniredis
	storyRepo *mocks.MockStoryRepository
	moralRepo *mocks.MockMoralRepository
	libRepo   *mocks.MockLibraryRepository
	textGen   *mocks.MockTextGenerator
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := session.NewRedisStore(client, zap.NewNop())

	f := &pipelineFixture{
		sessions:  sessions,
		redis:     mr,
		storyRepo: &mocks.MockStoryRepository{},
		moralRepo: &mocks.MockMoralRepository{},
		libRepo:   &mocks.MockLibraryRepository{},
		textGen:   &mocks.MockTextGenerator{},
	}
	f.svc = NewPipelineService(sessions, f.storyRepo, f.moralRepo, f.libRepo, f.textGen, zap.NewNop())
	return f
}

func TestSaveOptions(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects unknown runtime", func(t *testing.T) {
		f := newPipelineFixture(t)
		err := f.svc.SaveOptions(ctx, 1, "5-6분", "4-6세")
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("rejects unknown age group", func(t *testing.T) {
		f := newPipelineFixture(t)
		err := f.svc.SaveOptions(ctx, 1, "3-7분", "10-12세")
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("rejects empty fields", func(t *testing.T) {
		f := newPipelineFixture(t)
		err := f.svc.SaveOptions(ctx, 1, "", "")
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("stores valid options", func(t *testing.T) {
		f := newPipelineFixture(t)
		require.NoError(t, f.svc.SaveOptions(ctx, 1, "3-7분", "4-6세"))

		fields, err := f.sessions.Get(ctx, session.OptionKey(1))
		require.NoError(t, err)
		assert.Equal(t, "3-7분", fields["runtime"])
		assert.Equal(t, "4-6세", fields["age_group"])
	})
}

func TestSaveDraft(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes before storing", func(t *testing.T) {
		f := newPipelineFixture(t)
		stored, err := f.svc.SaveDraft(ctx, 1, "오늘  강아지랑   놀았다")
		require.NoError(t, err)
		assert.Equal(t, "오늘 강아지랑 놀았다.", stored)

		fields, err := f.sessions.Get(ctx, session.DraftKey(1))
		require.NoError(t, err)
		assert.Equal(t, "오늘 강아지랑 놀았다.", fields["text"])
	})

	t.Run("rejects blank draft", func(t *testing.T) {
		f := newPipelineFixture(t)
		_, err := f.svc.SaveDraft(ctx, 1, "   ")
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestSaveMorals(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty selection", func(t *testing.T) {
		f := newPipelineFixture(t)
		err := f.svc.SaveMorals(ctx, 1, nil, nil)
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("rejects four combined items", func(t *testing.T) {
		f := newPipelineFixture(t)
		err := f.svc.SaveMorals(ctx, 1, []int64{1, 2}, []string{"용서", "나눔"})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("resolves customs at selection time", func(t *testing.T) {
		f := newPipelineFixture(t)
		f.moralRepo.On("GetByIDs", mock.Anything, []int64{1}).
			Return([]models.MoralTheme{{ID: 1, Key: "honesty", Name: "정직"}}, nil)
		f.moralRepo.On("GetOrCreateByName", mock.Anything, "용서").
			Return(&models.MoralTheme{ID: 7, Key: "용서", Name: "용서"}, nil)

		require.NoError(t, f.svc.SaveMorals(ctx, 1, []int64{1}, []string{"용서"}))

		fields, err := f.sessions.Get(ctx, session.MoralsKey(1))
		require.NoError(t, err)
		assert.Equal(t, "1,7", fields["ids"])
		f.moralRepo.AssertExpectations(t)
	})

	t.Run("rejects unknown moral id", func(t *testing.T) {
		f := newPipelineFixture(t)
		f.moralRepo.On("GetByIDs", mock.Anything, []int64{99}).
			Return([]models.MoralTheme{}, nil)
		err := f.svc.SaveMorals(ctx, 1, []int64{99}, nil)
		assert.ErrorIs(t, err, models.ErrMoralNotFound)
	})
}

func fillAllScopes(t *testing.T, f *pipelineFixture, userID int64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.sessions.Set(ctx, session.OptionKey(userID), map[string]string{
		"runtime": "3-7분", "age_group": "4-6세",
	}))
	require.NoError(t, f.sessions.Set(ctx, session.DraftKey(userID), map[string]string{
		"text": "오늘 강아지랑 놀았다.",
	}))
	require.NoError(t, f.sessions.Set(ctx, session.MoralsKey(userID), map[string]string{
		"ids": "1,7",
	}))
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates story and clears scopes", func(t *testing.T) {
		f := newPipelineFixture(t)
		fillAllScopes(t, f, 1)

		f.moralRepo.On("GetByIDs", mock.Anything, []int64{1, 7}).
			Return([]models.MoralTheme{
				{ID: 1, Key: "honesty", Name: "정직"},
				{ID: 7, Key: "용서", Name: "용서"},
			}, nil)
		f.textGen.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).
			Return("제목: 강아지와 나\n해피는 작은 강아지였어요. 오늘은 날씨가 좋았어요. 둘은 공원에서 놀았어요. 집으로 돌아와 꿈나라로 갔어요.", nil)
		f.storyRepo.On("CreateStory", mock.Anything, mock.AnythingOfType("*models.Story")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*models.Story).ID = 42
			}).Return(nil)
		f.storyRepo.On("CreatePages", mock.Anything, int64(42), mock.Anything).Return(nil)
		f.storyRepo.On("AttachMorals", mock.Anything, int64(42), []int64{1, 7}).Return(nil)
		f.libRepo.On("UpsertLibrary", mock.Anything, int64(1), int64(42)).
			Return(&models.Library{ID: 5, UserID: 1, StoryID: 42}, nil)

		story, err := f.svc.Generate(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "강아지와 나", story.Title)
		assert.Equal(t, models.CategoryCustom, story.Category)
		assert.Equal(t, 2, story.PageCount)

		for _, key := range []string{session.OptionKey(1), session.DraftKey(1), session.MoralsKey(1)} {
			fields, err := f.sessions.Get(ctx, key)
			require.NoError(t, err)
			assert.Empty(t, fields, "scope %s should be cleared", key)
		}
		f.storyRepo.AssertExpectations(t)
	})

	t.Run("rejects when morals scope missing", func(t *testing.T) {
		f := newPipelineFixture(t)
		require.NoError(t, f.sessions.Set(ctx, session.OptionKey(1), map[string]string{
			"runtime": "3-7분", "age_group": "4-6세",
		}))
		require.NoError(t, f.sessions.Set(ctx, session.DraftKey(1), map[string]string{
			"text": "오늘 강아지랑 놀았다.",
		}))

		_, err := f.svc.Generate(ctx, 1)
		assert.ErrorIs(t, err, models.ErrPipelineNotReady)
		assert.Contains(t, err.Error(), NotReadyMessage)

		// Completed stages survive the rejection.
		fields, err := f.sessions.Get(ctx, session.DraftKey(1))
		require.NoError(t, err)
		assert.Equal(t, "오늘 강아지랑 놀았다.", fields["text"])
	})

	t.Run("upstream failure preserves scopes", func(t *testing.T) {
		f := newPipelineFixture(t)
		fillAllScopes(t, f, 1)

		f.moralRepo.On("GetByIDs", mock.Anything, []int64{1, 7}).
			Return([]models.MoralTheme{{ID: 1, Name: "정직"}, {ID: 7, Name: "용서"}}, nil)
		f.textGen.On("GenerateText", mock.Anything, mock.Anything, mock.Anything).
			Return("", errors.New("model unavailable"))

		_, err := f.svc.Generate(ctx, 1)
		assert.ErrorIs(t, err, models.ErrGenerationFailed)

		for _, key := range []string{session.OptionKey(1), session.DraftKey(1), session.MoralsKey(1)} {
			fields, err := f.sessions.Get(ctx, key)
			require.NoError(t, err)
			assert.NotEmpty(t, fields, "scope %s must survive the failure", key)
		}
		f.storyRepo.AssertNotCalled(t, "CreateStory", mock.Anything, mock.Anything)
	})
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	f := newPipelineFixture(t)
	fillAllScopes(t, f, 1)

	require.NoError(t, f.svc.Reset(ctx, 1))
	for _, key := range []string{session.OptionKey(1), session.DraftKey(1), session.MoralsKey(1)} {
		fields, err := f.sessions.Get(ctx, key)
		require.NoError(t, err)
		assert.Empty(t, fields)
	}
}

func TestParseTitleAndBody(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTitle string
		wantBody  string
	}{
		{
			name:      "explicit marker",
			input:     "제목: 토끼의 모험\n옛날 옛적에 토끼가 살았어요.",
			wantTitle: "토끼의 모험",
			wantBody:  "옛날 옛적에 토끼가 살았어요.",
		},
		{
			name:      "first line fallback",
			input:     "토끼의 모험\n옛날 옛적에 토끼가 살았어요.",
			wantTitle: "토끼의 모험",
			wantBody:  "옛날 옛적에 토끼가 살았어요.",
		},
		{
			name:      "single line uses placeholder",
			input:     "옛날 옛적에 토끼가 살았어요.",
			wantTitle: models.DefaultStoryTitle,
			wantBody:  "옛날 옛적에 토끼가 살았어요.",
		},
		{
			name:      "marker with empty title",
			input:     "제목:\n본문입니다.",
			wantTitle: models.DefaultStoryTitle,
			wantBody:  "본문입니다.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, body := parseTitleAndBody(tt.input)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantBody, body)
		})
	}
}
