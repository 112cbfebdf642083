package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"storylion-server/internal/interfaces"
	"storylion-server/internal/models"
	"storylion-server/internal/session"
	"storylion-server/internal/textutil"
)

// Allowed option values for story generation.
var (
	AllowedRuntimes  = []string{"3-7분", "7-10분", "10-15분"}
	AllowedAgeGroups = []string{"0-3세", "4-6세", "7-9세"}
)

// Moral selection bounds: combined registry ids + custom strings.
const (
	minMorals = 1
	maxMorals = 3
)

// Session hash fields per scope.
const (
	fieldRuntime  = "runtime"
	fieldAgeGroup = "age_group"
	fieldText     = "text"
	fieldMoralIDs = "ids"
)

// PipelineService drives the Option → Draft → Morals → Generate flow over
// per-user ephemeral state.
type PipelineService interface {
	SaveOptions(ctx context.Context, userID int64, runtime, ageGroup string) error
	// SaveDraft normalizes and stores the draft, returning the stored form.
	SaveDraft(ctx context.Context, userID int64, text string) (string, error)
	SaveMorals(ctx context.Context, userID int64, selectedIDs []int64, customMorals []string) error
	// Generate joins the three scopes, calls the text model once, persists the
	// story aggregate and clears the scopes. A failure anywhere before the
	// final commit leaves all scopes untouched.
	Generate(ctx context.Context, userID int64) (*models.Story, error)
	// Reset abandons an in-flight flow by deleting all three scopes.
	Reset(ctx context.Context, userID int64) error
}

// Compile-time check to ensure pipelineServiceImpl implements PipelineService
var _ PipelineService = (*pipelineServiceImpl)(nil)

type pipelineServiceImpl struct {
	sessions    session.Store
	storyRepo   interfaces.StoryRepository
	moralRepo   interfaces.MoralRepository
	libraryRepo interfaces.LibraryRepository
	textGen     interfaces.TextGenerator
	logger      *zap.Logger
}

// NewPipelineService creates a new story assembly pipeline.
func NewPipelineService(
	sessions session.Store,
	storyRepo interfaces.StoryRepository,
	moralRepo interfaces.MoralRepository,
	libraryRepo interfaces.LibraryRepository,
	textGen interfaces.TextGenerator,
	logger *zap.Logger,
) PipelineService {
	return &pipelineServiceImpl{
		sessions:    sessions,
		storyRepo:   storyRepo,
		moralRepo:   moralRepo,
		libraryRepo: libraryRepo,
		textGen:     textGen,
		logger:      logger.Named("PipelineService"),
	}
}

func (s *pipelineServiceImpl) SaveOptions(ctx context.Context, userID int64, runtime, ageGroup string) error {
	if !contains(AllowedRuntimes, runtime) {
		return fmt.Errorf("%w: invalid runtime %q", models.ErrValidation, runtime)
	}
	if !contains(AllowedAgeGroups, ageGroup) {
		return fmt.Errorf("%w: invalid age_group %q", models.ErrValidation, ageGroup)
	}
	err := s.sessions.Set(ctx, session.OptionKey(userID), map[string]string{
		fieldRuntime:  runtime,
		fieldAgeGroup: ageGroup,
	})
	if err != nil {
		return fmt.Errorf("failed to store options: %w", err)
	}
	s.logger.Debug("Options saved", zap.Int64("userID", userID), zap.String("runtime", runtime), zap.String("ageGroup", ageGroup))
	return nil
}

func (s *pipelineServiceImpl) SaveDraft(ctx context.Context, userID int64, text string) (string, error) {
	normalized := textutil.NormalizeSentence(text)
	if normalized == "" {
		return "", fmt.Errorf("%w: draft text is empty", models.ErrValidation)
	}
	err := s.sessions.Set(ctx, session.DraftKey(userID), map[string]string{fieldText: normalized})
	if err != nil {
		return "", fmt.Errorf("failed to store draft: %w", err)
	}
	return normalized, nil
}

func (s *pipelineServiceImpl) SaveMorals(ctx context.Context, userID int64, selectedIDs []int64, customMorals []string) error {
	total := len(selectedIDs) + len(customMorals)
	if total < minMorals || total > maxMorals {
		return fmt.Errorf("%w: moral selection must contain 1 to 3 items, got %d", models.ErrValidation, total)
	}

	if len(selectedIDs) > 0 {
		found, err := s.moralRepo.GetByIDs(ctx, selectedIDs)
		if err != nil {
			return fmt.Errorf("failed to resolve selected morals: %w", err)
		}
		if len(found) != len(selectedIDs) {
			return fmt.Errorf("%w: unknown moral id in selection", models.ErrMoralNotFound)
		}
	}

	// Custom morals are resolved to registry rows here, at selection time
	// only. Generation later works purely off the stored ids, so entering the
	// same name twice can never produce two rows.
	resolved := append([]int64(nil), selectedIDs...)
	for _, name := range customMorals {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("%w: custom moral name is empty", models.ErrValidation)
		}
		moral, err := s.moralRepo.GetOrCreateByName(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to resolve custom moral %q: %w", name, err)
		}
		resolved = append(resolved, moral.ID)
	}

	err := s.sessions.Set(ctx, session.MoralsKey(userID), map[string]string{
		fieldMoralIDs: joinIDs(resolved),
	})
	if err != nil {
		return fmt.Errorf("failed to store morals: %w", err)
	}
	return nil
}

func (s *pipelineServiceImpl) Generate(ctx context.Context, userID int64) (*models.Story, error) {
	option, err := s.sessions.Get(ctx, session.OptionKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read option scope: %w", err)
	}
	draft, err := s.sessions.Get(ctx, session.DraftKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read draft scope: %w", err)
	}
	morals, err := s.sessions.Get(ctx, session.MoralsKey(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to read morals scope: %w", err)
	}

	runtime := option[fieldRuntime]
	ageGroup := option[fieldAgeGroup]
	draftText := draft[fieldText]
	moralIDs := parseIDs(morals[fieldMoralIDs])
	if runtime == "" || ageGroup == "" || draftText == "" || len(moralIDs) == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrPipelineNotReady, NotReadyMessage)
	}

	themes, err := s.moralRepo.GetByIDs(ctx, moralIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve moral themes: %w", err)
	}
	moralNames := make([]string, 0, len(themes))
	for _, m := range themes {
		moralNames = append(moralNames, m.Name)
	}

	prompt := buildGenerationPrompt(runtime, ageGroup, strings.Join(moralNames, ", "), draftText)
	generated, err := s.textGen.GenerateText(ctx, generationSystemPrompt, prompt)
	if err != nil {
		// Scopes are preserved so the user can retry without re-entering
		// earlier stages.
		s.logger.Error("Story generation failed", zap.Error(err), zap.Int64("userID", userID))
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}

	title, body := parseTitleAndBody(generated)
	pages := textutil.SplitIntoPages(body, textutil.DefaultSentencesPerPage)

	story := &models.Story{
		UserID:   userID,
		Title:    title,
		Author:   "AI",
		Content:  body,
		Runtime:  runtime,
		AgeGroup: ageGroup,
		Category: models.CategoryCustom,
	}
	if err := s.storyRepo.CreateStory(ctx, story); err != nil {
		return nil, fmt.Errorf("failed to persist story: %w", err)
	}
	if err := s.storyRepo.CreatePages(ctx, story.ID, pages); err != nil {
		return nil, fmt.Errorf("failed to persist pages: %w", err)
	}
	if err := s.storyRepo.AttachMorals(ctx, story.ID, moralIDs); err != nil {
		return nil, fmt.Errorf("failed to attach morals: %w", err)
	}
	if _, err := s.libraryRepo.UpsertLibrary(ctx, userID, story.ID); err != nil {
		return nil, fmt.Errorf("failed to create library entry: %w", err)
	}
	story.PageCount = len(pages)
	story.Morals = themes

	if err := s.Reset(ctx, userID); err != nil {
		// The story is already committed; a leftover scope only affects the
		// next flow's first write.
		s.logger.Warn("Failed to clear pipeline scopes after generation", zap.Error(err), zap.Int64("userID", userID))
	}

	s.logger.Info("Story generated",
		zap.Int64("userID", userID), zap.Int64("storyID", story.ID),
		zap.String("title", title), zap.Int("pages", len(pages)))
	return story, nil
}

func (s *pipelineServiceImpl) Reset(ctx context.Context, userID int64) error {
	err := s.sessions.Delete(ctx,
		session.OptionKey(userID), session.DraftKey(userID), session.MoralsKey(userID))
	if err != nil {
		return fmt.Errorf("failed to reset pipeline scopes: %w", err)
	}
	return nil
}

// parseTitleAndBody applies the title convention: an explicit "제목:" marker
// wins, otherwise the first line is the title, and a single-line response
// becomes the body under a placeholder title. Never fails.
func parseTitleAndBody(text string) (title, body string) {
	trimmed := strings.TrimSpace(text)
	lines := strings.SplitN(trimmed, "\n", 2)

	first := strings.TrimSpace(lines[0])
	if rest, ok := strings.CutPrefix(first, "제목:"); ok {
		title = strings.TrimSpace(rest)
		if len(lines) == 2 {
			body = strings.TrimSpace(lines[1])
		}
		if title == "" {
			title = models.DefaultStoryTitle
		}
		if body == "" {
			body = title
		}
		return title, body
	}

	if len(lines) == 2 {
		return first, strings.TrimSpace(lines[1])
	}
	return models.DefaultStoryTitle, trimmed
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func parseIDs(s string) []int64 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
