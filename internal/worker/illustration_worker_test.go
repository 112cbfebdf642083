package worker

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storylion-server/internal/messaging"
	"storylion-server/internal/models"
	"storylion-server/internal/service/mocks"
)

func delivery(t *testing.T, payload messaging.IllustrationTaskPayload) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return amqp.Delivery{Body: body}
}

func newWorkerFixture() (*Handler, *mocks.MockStoryRepository, *mocks.MockIllustrationRepository, *mocks.MockImageGenerator, *mocks.MockObjectStorage) {
	storyRepo := &mocks.MockStoryRepository{}
	illustRepo := &mocks.MockIllustrationRepository{}
	imageClient := &mocks.MockImageGenerator{}
	storage := &mocks.MockObjectStorage{}
	h := NewHandler(zap.NewNop(), storyRepo, illustRepo, imageClient, storage)
	return h, storyRepo, illustRepo, imageClient, storage
}

var workerStory = &models.Story{
	ID:       42,
	UserID:   1,
	Title:    "토끼의 모험",
	AgeGroup: "4-6세",
	Category: models.CategoryCustom,
}

var workerPages = []models.StoryPage{
	{ID: 100, StoryID: 42, PageNumber: 1, Text: "옛날 옛적에 토끼가 살았어요."},
	{ID: 101, StoryID: 42, PageNumber: 2, Text: "토끼는 숲으로 떠났어요."},
	{ID: 102, StoryID: 42, PageNumber: 3, Text: "모두 행복하게 살았답니다."},
}

func TestHandleDeliverySuccess(t *testing.T) {
	h, storyRepo, illustRepo, imageClient, storage := newWorkerFixture()
	ctx := context.Background()

	b64 := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))

	illustRepo.On("MarkJobRunning", mock.Anything, int64(7)).Return(nil)
	storyRepo.On("GetStory", mock.Anything, int64(42)).Return(workerStory, nil)
	storyRepo.On("ListPages", mock.Anything, int64(42)).Return(workerPages, nil)
	imageClient.On("GenerateImage", mock.Anything, mock.Anything, "").Return(b64, nil).Twice()
	storage.On("Save", mock.Anything, "illustrations/42/page_1.png", []byte("fake-png-bytes"), "image/png").
		Return("illustrations/42/page_1.png", nil)
	storage.On("Save", mock.Anything, "illustrations/42/page_3.png", []byte("fake-png-bytes"), "image/png").
		Return("illustrations/42/page_3.png", nil)
	illustRepo.On("CreateIllustration", mock.Anything, mock.AnythingOfType("*models.Illustration")).Return(nil).Twice()
	illustRepo.On("UpdateJobProgress", mock.Anything, int64(7), 1).Return(nil)
	illustRepo.On("UpdateJobProgress", mock.Anything, int64(7), 2).Return(nil)
	illustRepo.On("FinishJob", mock.Anything, int64(7), models.JobStatusSuccess, "").Return(nil)

	ack := h.HandleDelivery(ctx, delivery(t, messaging.IllustrationTaskPayload{JobID: 7, StoryID: 42, UserID: 1}))
	assert.True(t, ack)
	illustRepo.AssertExpectations(t)
	storage.AssertExpectations(t)
}

func TestHandleDeliveryImageFailureMarksJobFailed(t *testing.T) {
	h, storyRepo, illustRepo, imageClient, _ := newWorkerFixture()
	ctx := context.Background()

	illustRepo.On("MarkJobRunning", mock.Anything, int64(7)).Return(nil)
	storyRepo.On("GetStory", mock.Anything, int64(42)).Return(workerStory, nil)
	storyRepo.On("ListPages", mock.Anything, int64(42)).Return(workerPages, nil)
	imageClient.On("GenerateImage", mock.Anything, mock.Anything, "").
		Return("", errors.New("rate limited"))
	illustRepo.On("FinishJob", mock.Anything, int64(7), models.JobStatusFailed, mock.Anything).Return(nil)

	ack := h.HandleDelivery(ctx, delivery(t, messaging.IllustrationTaskPayload{JobID: 7, StoryID: 42, UserID: 1}))
	assert.True(t, ack, "failed jobs are acked, not redelivered")
	illustRepo.AssertExpectations(t)
}

func TestHandleDeliveryBadPayloadIsAcked(t *testing.T) {
	h, _, illustRepo, _, _ := newWorkerFixture()

	ack := h.HandleDelivery(context.Background(), amqp.Delivery{Body: []byte("not json")})
	assert.True(t, ack)
	illustRepo.AssertNotCalled(t, "MarkJobRunning", mock.Anything, mock.Anything)
}
