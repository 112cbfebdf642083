package models

import "time"

// Story categories.
const (
	CategoryClassic  = "classic"  // 명작동화
	CategoryCustom   = "custom"   // 제작동화
	CategoryExtended = "extended" // 확장동화
)

// DefaultStoryTitle is used when the generated text carries no recognizable title.
const DefaultStoryTitle = "무제 동화"

// Story is the root aggregate for a children's story.
// Immutable after creation except for extension-append, which creates a new
// Story with CategoryExtended instead of mutating the base one.
type Story struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	ChildID   *int64    `json:"child_id,omitempty" db:"child_id"`
	VoiceID   *int64    `json:"voice_id,omitempty" db:"voice_id"`
	Title     string    `json:"title" db:"title"`
	Author    string    `json:"author" db:"author"`
	Content   string    `json:"content" db:"content"`
	PageCount int       `json:"page_count" db:"page_count"`
	Runtime   string    `json:"runtime,omitempty" db:"runtime"`
	AgeGroup  string    `json:"age_group,omitempty" db:"age_group"`
	Category  string    `json:"category" db:"category"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Morals is populated by repositories that join the M2M table.
	Morals []MoralTheme `json:"morals,omitempty" db:"-"`
}

// StoryPage holds one page's worth of text. PageNumber is 1-based and unique
// within its story; pages are created contiguously in reading order.
type StoryPage struct {
	ID         int64     `json:"id" db:"id"`
	StoryID    int64     `json:"story_id" db:"story_id"`
	PageNumber int       `json:"page_number" db:"page_number"`
	Text       string    `json:"text" db:"text"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// MoralTheme is a thematic tag. Key is unique; system-seeded rows carry fixed
// keys, user-created rows derive the key by slugifying the display name.
type MoralTheme struct {
	ID   int64  `json:"id" db:"id"`
	Key  string `json:"key" db:"key"`
	Name string `json:"name" db:"name"`
}

// Illustration is a generated image attached to a single story page.
type Illustration struct {
	ID          int64     `json:"id" db:"id"`
	StoryPageID int64     `json:"story_page_id" db:"story_page_id"`
	ImagePath   string    `json:"image_path" db:"image_path"`
	Prompt      string    `json:"prompt" db:"prompt"`
	Style       string    `json:"style,omitempty" db:"style"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Illustration job statuses.
const (
	JobStatusPending = "PENDING"
	JobStatusRunning = "RUNNING"
	JobStatusSuccess = "SUCCESS"
	JobStatusFailed  = "FAILED"
)

// IllustrationJob tracks an asynchronous illustration generation run.
type IllustrationJob struct {
	ID             int64      `json:"id" db:"id"`
	StoryID        int64      `json:"story_id" db:"story_id"`
	Status         string     `json:"status" db:"status"`
	TotalPages     int        `json:"total_pages" db:"total_pages"`
	CompletedPages int        `json:"completed_pages" db:"completed_pages"`
	ErrorMessage   string     `json:"error_message,omitempty" db:"error_message"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty" db:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}

// StoryExtension records the outcome of a guided-chat ending extension: the
// newly generated closing content linked back to the base story.
type StoryExtension struct {
	ID              int64     `json:"id" db:"id"`
	StoryID         int64     `json:"story_id" db:"story_id"`
	UserID          int64     `json:"user_id" db:"user_id"`
	ExtendedContent string    `json:"extended_content" db:"extended_content"`
	DialogueHistory []byte    `json:"-" db:"dialogue_history"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Library links a user to a story they keep, with the last time they opened it.
type Library struct {
	ID             int64      `json:"id" db:"id"`
	UserID         int64      `json:"user_id" db:"user_id"`
	StoryID        int64      `json:"story_id" db:"story_id"`
	LastViewedTime *time.Time `json:"last_viewed_time,omitempty" db:"last_viewed_time"`
}

// History is an append-only log of story reads.
type History struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	StoryID    int64     `json:"story_id" db:"story_id"`
	ViewedTime time.Time `json:"viewed_time" db:"viewed_time"`
}
