package messaging

// IllustrationTaskPayload is the queue message that asks the worker to render
// illustrations for a finished story.
type IllustrationTaskPayload struct {
	JobID   int64  `json:"job_id"`
	StoryID int64  `json:"story_id"`
	UserID  int64  `json:"user_id"`
	Style   string `json:"style,omitempty"`
}
