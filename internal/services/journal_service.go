package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AnshRaj112/journal-backend/internal/apperrors"
	"github.com/AnshRaj112/journal-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const maxTitleLength = 100

// Validation messages, one per rule. Update/create failures return every
// violated rule, not just the first.
const (
	msgTitleRequired   = "Please add a title"
	msgTitleTooLong    = "Title cannot be more than 100 characters"
	msgContentRequired = "Please add content"
	msgInvalidMood     = "Mood must be one of: happy, sad, neutral, excited, anxious, angry, other"
	msgOwnerImmutable  = "Cannot change the owner of a journal entry"
)

// JournalStore is the persistence surface the journal service needs.
// Implementations return apperrors.ErrNotFound when no entry matches an id.
type JournalStore interface {
	Find(ctx context.Context, query bson.M, sort bson.D) ([]models.JournalEntry, error)
	FindByID(ctx context.Context, id string) (*models.JournalEntry, error)
	Insert(ctx context.Context, entry *models.JournalEntry) error
	Update(ctx context.Context, id string, set bson.M) (*models.JournalEntry, error)
	Delete(ctx context.Context, id string) error
}

// CreateJournalInput holds the client-supplied fields for a new entry.
// The owner is passed separately; it never comes from the request body.
type CreateJournalInput struct {
	Title   string
	Content string
	Mood    string
	Tags    []string
}

// UpdateJournalInput holds a partial update. Nil fields are left unchanged.
// UserID is carried only so an owner-change attempt can be rejected.
type UpdateJournalInput struct {
	Title   *string
	Content *string
	Mood    *string
	Tags    *[]string
	UserID  *string
}

// JournalService authorizes and executes the five entry operations.
// Every operation is scoped to the calling user; the ownership check is
// repeated before each read and mutation so it cannot be bypassed by a
// direct id lookup.
type JournalService struct {
	store JournalStore
}

func NewJournalService(store JournalStore) *JournalService {
	return &JournalService{store: store}
}

// List returns every entry of the caller matching the filter, ordered per
// the filter's sort directive.
func (s *JournalService) List(ctx context.Context, filter JournalFilter) ([]models.JournalEntry, error) {
	query, sort := CompileJournalFilter(filter)
	return s.store.Find(ctx, query, sort)
}

// Get fetches one entry by id. Returns ErrNotFound when no entry exists and
// ErrForbidden when the entry belongs to another user.
func (s *JournalService) Get(ctx context.Context, userID, id string) (*models.JournalEntry, error) {
	entry, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, apperrors.ErrForbidden
	}
	return entry, nil
}

// Create validates the input and persists a new entry owned by userID.
// Mood defaults to neutral and tags to an empty list when absent. Both
// timestamps are set here, not by a store-side hook, so the write path
// stays auditable.
func (s *JournalService) Create(ctx context.Context, userID string, in CreateJournalInput) (*models.JournalEntry, error) {
	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)

	var violations []string
	if title == "" {
		violations = append(violations, msgTitleRequired)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		violations = append(violations, msgTitleTooLong)
	}
	if content == "" {
		violations = append(violations, msgContentRequired)
	}

	mood := models.MoodNeutral
	if in.Mood != "" {
		if !models.Mood(in.Mood).Valid() {
			violations = append(violations, msgInvalidMood)
		} else {
			mood = models.Mood(in.Mood)
		}
	}

	if len(violations) > 0 {
		return nil, apperrors.NewValidation(violations...)
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	now := time.Now()
	entry := &models.JournalEntry{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Content:   content,
		Mood:      mood,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    userID,
	}

	if err := s.store.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Update applies a partial update to the caller's entry. Supplied fields are
// re-validated as in Create; an attempt to change the owner fails validation
// before anything is persisted. updatedAt is always refreshed.
func (s *JournalService) Update(ctx context.Context, userID, id string, in UpdateJournalInput) (*models.JournalEntry, error) {
	entry, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, apperrors.ErrForbidden
	}

	var violations []string
	set := bson.M{}

	if in.UserID != nil && *in.UserID != entry.UserID {
		violations = append(violations, msgOwnerImmutable)
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			violations = append(violations, msgTitleRequired)
		}
		if utf8.RuneCountInString(title) > maxTitleLength {
			violations = append(violations, msgTitleTooLong)
		}
		set["title"] = title
	}
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			violations = append(violations, msgContentRequired)
		}
		set["content"] = content
	}
	if in.Mood != nil {
		if !models.Mood(*in.Mood).Valid() {
			violations = append(violations, msgInvalidMood)
		} else {
			set["mood"] = *in.Mood
		}
	}
	if in.Tags != nil {
		tags := *in.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
	}

	if len(violations) > 0 {
		return nil, apperrors.NewValidation(violations...)
	}

	set["updated_at"] = time.Now()

	// A concurrent delete between the fetch above and this write surfaces
	// as ErrNotFound from the store.
	return s.store.Update(ctx, id, set)
}

// Delete permanently removes the caller's entry.
func (s *JournalService) Delete(ctx context.Context, userID, id string) error {
	entry, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if entry.UserID != userID {
		return apperrors.ErrForbidden
	}
	return s.store.Delete(ctx, id)
}
