package interfaces

import (
	"context"

	"storylion-server/internal/models"
)

// StoryRepository persists stories and their pages.
type StoryRepository interface {
	// CreateStory inserts the story row and assigns story.ID.
	CreateStory(ctx context.Context, story *models.Story) error
	// CreatePages inserts pages for a story in the given order, numbering
	// them contiguously from 1, and updates the story's page_count.
	// Page creation is not transactional with the parent story row; a crash
	// mid-loop leaves partial pages, which is accepted because generation is
	// retryable.
	CreatePages(ctx context.Context, storyID int64, pageTexts []string) error
	// AttachMorals links resolved moral themes to a story.
	AttachMorals(ctx context.Context, storyID int64, moralIDs []int64) error
	GetStory(ctx context.Context, id int64) (*models.Story, error)
	ListStories(ctx context.Context, category string) ([]models.Story, error)
	ListPages(ctx context.Context, storyID int64) ([]models.StoryPage, error)
	// CreateExtension records the generated ending linked to the base story.
	CreateExtension(ctx context.Context, ext *models.StoryExtension) error
}

// MoralRepository is the moral theme registry.
type MoralRepository interface {
	List(ctx context.Context) ([]models.MoralTheme, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.MoralTheme, error)
	// GetOrCreateByName resolves a free-text moral to a registry row, creating
	// it under a slugified key when absent. Idempotent: calling twice with the
	// same name never produces a second row.
	GetOrCreateByName(ctx context.Context, name string) (*models.MoralTheme, error)
}

// ChatRepository persists chat rooms and their message logs.
type ChatRepository interface {
	GetRoom(ctx context.Context, roomID int64) (*models.ChatRoom, error)
	GetOrCreateRoom(ctx context.Context, storyID, userID int64) (*models.ChatRoom, error)
	SaveMessage(ctx context.Context, msg *models.Message) error
	// ListMessages returns a room's messages oldest-first.
	ListMessages(ctx context.Context, roomID int64) ([]models.Message, error)
	// CountAIQuestions counts AI-authored messages containing a question mark.
	CountAIQuestions(ctx context.Context, roomID int64) (int, error)
	// DeleteMessages wipes a room's log; chat history is ephemeral by design.
	DeleteMessages(ctx context.Context, roomID int64) error
}

// LibraryRepository persists library entries and reading history.
type LibraryRepository interface {
	UpsertLibrary(ctx context.Context, userID, storyID int64) (*models.Library, error)
	ListLibrary(ctx context.Context, userID int64) ([]models.Library, error)
	DeleteLibrary(ctx context.Context, userID, libraryID int64) error
	AddHistory(ctx context.Context, userID, storyID int64) (*models.History, error)
	ListHistory(ctx context.Context, userID int64) ([]models.History, error)
}

// UserRepository reads user records and owns the account deletion cascade.
type UserRepository interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	// DeleteUser removes the user and every owned record (stories, pages,
	// rooms, messages, library, history, voices) inside one transaction.
	DeleteUser(ctx context.Context, id int64) error
}

// VoiceRepository persists cloned voice records.
type VoiceRepository interface {
	CreateVoice(ctx context.Context, voice *models.ClonedVoice) error
	GetVoice(ctx context.Context, id int64) (*models.ClonedVoice, error)
	ListVoices(ctx context.Context, userID int64) ([]models.ClonedVoice, error)
}

// IllustrationRepository persists illustration rows and job progress.
type IllustrationRepository interface {
	CreateJob(ctx context.Context, job *models.IllustrationJob) error
	MarkJobRunning(ctx context.Context, jobID int64) error
	UpdateJobProgress(ctx context.Context, jobID int64, completedPages int) error
	FinishJob(ctx context.Context, jobID int64, status, errorMessage string) error
	GetJob(ctx context.Context, jobID int64) (*models.IllustrationJob, error)
	CreateIllustration(ctx context.Context, ill *models.Illustration) error
}
