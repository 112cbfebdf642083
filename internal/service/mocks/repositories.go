package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"storylion-server/internal/interfaces"
	"storylion-server/internal/models"
)

// MockStoryRepository is a mock type for the StoryRepository type
type MockStoryRepository struct {
	mock.Mock
}

var _ interfaces.StoryRepository = (*MockStoryRepository)(nil)

func (_m *MockStoryRepository) CreateStory(ctx context.Context, story *models.Story) error {
	ret := _m.Called(ctx, story)
	return ret.Error(0)
}

func (_m *MockStoryRepository) CreatePages(ctx context.Context, storyID int64, pageTexts []string) error {
	ret := _m.Called(ctx, storyID, pageTexts)
	return ret.Error(0)
}

func (_m *MockStoryRepository) AttachMorals(ctx context.Context, storyID int64, moralIDs []int64) error {
	ret := _m.Called(ctx, storyID, moralIDs)
	return ret.Error(0)
}

func (_m *MockStoryRepository) GetStory(ctx context.Context, id int64) (*models.Story, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Story
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Story)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) ListStories(ctx context.Context, category string) ([]models.Story, error) {
	ret := _m.Called(ctx, category)

	var r0 []models.Story
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Story)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) ListPages(ctx context.Context, storyID int64) ([]models.StoryPage, error) {
	ret := _m.Called(ctx, storyID)

	var r0 []models.StoryPage
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.StoryPage)
	}
	return r0, ret.Error(1)
}

func (_m *MockStoryRepository) CreateExtension(ctx context.Context, ext *models.StoryExtension) error {
	ret := _m.Called(ctx, ext)
	return ret.Error(0)
}

// MockMoralRepository is a mock type for the MoralRepository type
type MockMoralRepository struct {
	mock.Mock
}

var _ interfaces.MoralRepository = (*MockMoralRepository)(nil)

func (_m *MockMoralRepository) List(ctx context.Context) ([]models.MoralTheme, error) {
	ret := _m.Called(ctx)

	var r0 []models.MoralTheme
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.MoralTheme)
	}
	return r0, ret.Error(1)
}

func (_m *MockMoralRepository) GetByIDs(ctx context.Context, ids []int64) ([]models.MoralTheme, error) {
	ret := _m.Called(ctx, ids)

	var r0 []models.MoralTheme
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.MoralTheme)
	}
	return r0, ret.Error(1)
}

func (_m *MockMoralRepository) GetOrCreateByName(ctx context.Context, name string) (*models.MoralTheme, error) {
	ret := _m.Called(ctx, name)

	var r0 *models.MoralTheme
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.MoralTheme)
	}
	return r0, ret.Error(1)
}

// MockChatRepository is a mock type for the ChatRepository type
type MockChatRepository struct {
	mock.Mock
}

var _ interfaces.ChatRepository = (*MockChatRepository)(nil)

func (_m *MockChatRepository) GetRoom(ctx context.Context, roomID int64) (*models.ChatRoom, error) {
	ret := _m.Called(ctx, roomID)

	var r0 *models.ChatRoom
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ChatRoom)
	}
	return r0, ret.Error(1)
}

func (_m *MockChatRepository) GetOrCreateRoom(ctx context.Context, storyID, userID int64) (*models.ChatRoom, error) {
	ret := _m.Called(ctx, storyID, userID)

	var r0 *models.ChatRoom
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ChatRoom)
	}
	return r0, ret.Error(1)
}

func (_m *MockChatRepository) SaveMessage(ctx context.Context, msg *models.Message) error {
	ret := _m.Called(ctx, msg)
	return ret.Error(0)
}

func (_m *MockChatRepository) ListMessages(ctx context.Context, roomID int64) ([]models.Message, error) {
	ret := _m.Called(ctx, roomID)

	var r0 []models.Message
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Message)
	}
	return r0, ret.Error(1)
}

func (_m *MockChatRepository) CountAIQuestions(ctx context.Context, roomID int64) (int, error) {
	ret := _m.Called(ctx, roomID)
	return ret.Int(0), ret.Error(1)
}

func (_m *MockChatRepository) DeleteMessages(ctx context.Context, roomID int64) error {
	ret := _m.Called(ctx, roomID)
	return ret.Error(0)
}

// MockLibraryRepository is a mock type for the LibraryRepository type
type MockLibraryRepository struct {
	mock.Mock
}

var _ interfaces.LibraryRepository = (*MockLibraryRepository)(nil)

func (_m *MockLibraryRepository) UpsertLibrary(ctx context.Context, userID, storyID int64) (*models.Library, error) {
	ret := _m.Called(ctx, userID, storyID)

	var r0 *models.Library
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Library)
	}
	return r0, ret.Error(1)
}

func (_m *MockLibraryRepository) ListLibrary(ctx context.Context, userID int64) ([]models.Library, error) {
	ret := _m.Called(ctx, userID)

	var r0 []models.Library
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Library)
	}
	return r0, ret.Error(1)
}

func (_m *MockLibraryRepository) DeleteLibrary(ctx context.Context, userID, libraryID int64) error {
	ret := _m.Called(ctx, userID, libraryID)
	return ret.Error(0)
}

func (_m *MockLibraryRepository) AddHistory(ctx context.Context, userID, storyID int64) (*models.History, error) {
	ret := _m.Called(ctx, userID, storyID)

	var r0 *models.History
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.History)
	}
	return r0, ret.Error(1)
}

func (_m *MockLibraryRepository) ListHistory(ctx context.Context, userID int64) ([]models.History, error) {
	ret := _m.Called(ctx, userID)

	var r0 []models.History
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.History)
	}
	return r0, ret.Error(1)
}

// MockVoiceRepository is a mock type for the VoiceRepository type
type MockVoiceRepository struct {
	mock.Mock
}

var _ interfaces.VoiceRepository = (*MockVoiceRepository)(nil)

func (_m *MockVoiceRepository) CreateVoice(ctx context.Context, voice *models.ClonedVoice) error {
	ret := _m.Called(ctx, voice)
	return ret.Error(0)
}

func (_m *MockVoiceRepository) GetVoice(ctx context.Context, id int64) (*models.ClonedVoice, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.ClonedVoice
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ClonedVoice)
	}
	return r0, ret.Error(1)
}

func (_m *MockVoiceRepository) ListVoices(ctx context.Context, userID int64) ([]models.ClonedVoice, error) {
	ret := _m.Called(ctx, userID)

	var r0 []models.ClonedVoice
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.ClonedVoice)
	}
	return r0, ret.Error(1)
}

// MockIllustrationRepository is a mock type for the IllustrationRepository type
type MockIllustrationRepository struct {
	mock.Mock
}

var _ interfaces.IllustrationRepository = (*MockIllustrationRepository)(nil)

func (_m *MockIllustrationRepository) CreateJob(ctx context.Context, job *models.IllustrationJob) error {
	ret := _m.Called(ctx, job)
	return ret.Error(0)
}

func (_m *MockIllustrationRepository) MarkJobRunning(ctx context.Context, jobID int64) error {
	ret := _m.Called(ctx, jobID)
	return ret.Error(0)
}

func (_m *MockIllustrationRepository) UpdateJobProgress(ctx context.Context, jobID int64, completedPages int) error {
	ret := _m.Called(ctx, jobID, completedPages)
	return ret.Error(0)
}

func (_m *MockIllustrationRepository) FinishJob(ctx context.Context, jobID int64, status, errorMessage string) error {
	ret := _m.Called(ctx, jobID, status, errorMessage)
	return ret.Error(0)
}

func (_m *MockIllustrationRepository) GetJob(ctx context.Context, jobID int64) (*models.IllustrationJob, error) {
	ret := _m.Called(ctx, jobID)

	var r0 *models.IllustrationJob
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.IllustrationJob)
	}
	return r0, ret.Error(1)
}

func (_m *MockIllustrationRepository) CreateIllustration(ctx context.Context, ill *models.Illustration) error {
	ret := _m.Called(ctx, ill)
	return ret.Error(0)
}

// MockUserRepository is a mock type for the UserRepository type
type MockUserRepository struct {
	mock.Mock
}

var _ interfaces.UserRepository = (*MockUserRepository)(nil)

func (_m *MockUserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.User
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.User)
	}
	return r0, ret.Error(1)
}

func (_m *MockUserRepository) DeleteUser(ctx context.Context, id int64) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}
