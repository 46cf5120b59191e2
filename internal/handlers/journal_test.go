package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/AnshRaj112/journal-backend/internal/apperrors"
	"github.com/AnshRaj112/journal-backend/internal/models"
	"github.com/AnshRaj112/journal-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memoryJournalStore is an in-memory JournalStore for handler tests. Find
// honors the owner scope, the compiled search $or and created_at ordering;
// the remaining filter dimensions are covered by the services tests.
type memoryJournalStore struct {
	mu      sync.Mutex
	entries map[string]models.JournalEntry
}

var _ services.JournalStore = (*memoryJournalStore)(nil)

func newMemoryJournalStore() *memoryJournalStore {
	return &memoryJournalStore{entries: make(map[string]models.JournalEntry)}
}

func (s *memoryJournalStore) Find(ctx context.Context, query bson.M, sortSpec bson.D) ([]models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.JournalEntry, 0)
	for _, e := range s.entries {
		if e.UserID != query["user_id"] {
			continue
		}
		if !matchesSearchClauses(query, e) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// matchesSearchClauses evaluates a compiled search $or (regexes over title,
// content and tag elements) the way the real store would.
func matchesSearchClauses(query bson.M, e models.JournalEntry) bool {
	clauses, ok := query["$or"].(bson.A)
	if !ok {
		return true
	}
	for _, clause := range clauses {
		for field, v := range clause.(bson.M) {
			pattern, ok := v.(primitive.Regex)
			if !ok {
				continue
			}
			re := regexp.MustCompile("(?" + pattern.Options + ")" + pattern.Pattern)
			switch field {
			case "title":
				if re.MatchString(e.Title) {
					return true
				}
			case "content":
				if re.MatchString(e.Content) {
					return true
				}
			case "tags":
				for _, tag := range e.Tags {
					if re.MatchString(tag) {
						return true
					}
				}
			}
		}
	}
	return false
}

func (s *memoryJournalStore) FindByID(ctx context.Context, id string) (*models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &e, nil
}

func (s *memoryJournalStore) Insert(ctx context.Context, entry *models.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[entry.ID.Hex()] = *entry
	return nil
}

func (s *memoryJournalStore) Update(ctx context.Context, id string, set bson.M) (*models.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	for k, v := range set {
		switch k {
		case "title":
			e.Title = v.(string)
		case "content":
			e.Content = v.(string)
		case "mood":
			e.Mood = models.Mood(v.(string))
		case "tags":
			e.Tags = v.([]string)
		case "updated_at":
			e.UpdatedAt = v.(time.Time)
		}
	}
	s.entries[id] = e
	return &e, nil
}

func (s *memoryJournalStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

// setupJournalTest wires the handlers to an in-memory store and a stub auth
// that trusts the Authorization header as a raw user id.
func setupJournalTest(t *testing.T) (*chi.Mux, *memoryJournalStore) {
	t.Helper()

	store := newMemoryJournalStore()

	origService := journalService
	origAuth := journalAuth
	journalService = services.NewJournalService(store)
	journalAuth = func(r *http.Request) (string, bool) {
		user := r.Header.Get("Authorization")
		return user, user != ""
	}
	t.Cleanup(func() {
		journalService = origService
		journalAuth = origAuth
	})

	r := chi.NewRouter()
	r.Get("/api/journal", GetJournalEntries)
	r.Post("/api/journal", CreateJournalEntry)
	r.Get("/api/journal/{id}", GetJournalEntry)
	r.Put("/api/journal/{id}", UpdateJournalEntry)
	r.Delete("/api/journal/{id}", DeleteJournalEntry)
	return r, store
}

type envelope struct {
	Success bool            `json:"success"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

func doJSON(t *testing.T, r http.Handler, method, path, user string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set("Authorization", user)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func decodeEntry(t *testing.T, raw json.RawMessage) models.JournalEntry {
	t.Helper()
	var e models.JournalEntry
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

func TestJournalRequiresAuth(t *testing.T) {
	r, _ := setupJournalTest(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/journal"},
		{http.MethodPost, "/api/journal"},
		{http.MethodGet, "/api/journal/abc"},
		{http.MethodPut, "/api/journal/abc"},
		{http.MethodDelete, "/api/journal/abc"},
	} {
		rec, env := doJSON(t, r, tc.method, tc.path, "", map[string]string{})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tc.method, tc.path)
		assert.False(t, env.Success)
	}
}

func TestJournalLifecycle(t *testing.T) {
	r, _ := setupJournalTest(t)

	// Create with only title and content.
	rec, env := doJSON(t, r, http.MethodPost, "/api/journal", "alice", map[string]interface{}{
		"title":   "A",
		"content": "B",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	require.True(t, env.Success)
	created := decodeEntry(t, env.Data)
	assert.Equal(t, models.MoodNeutral, created.Mood)
	assert.Equal(t, []string{}, created.Tags)
	originalUpdatedAt := created.UpdatedAt

	// List with no filters returns exactly that entry, with count.
	rec, env = doJSON(t, r, http.MethodGet, "/api/journal", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	var listed []models.JournalEntry
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	// Partial update: title changes, content survives, updatedAt moves.
	time.Sleep(5 * time.Millisecond)
	rec, env = doJSON(t, r, http.MethodPut, "/api/journal/"+created.ID.Hex(), "alice", map[string]interface{}{
		"title": "C",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeEntry(t, env.Data)
	assert.Equal(t, "C", updated.Title)
	assert.Equal(t, "B", updated.Content)
	assert.True(t, updated.UpdatedAt.After(originalUpdatedAt))

	rec, env = doJSON(t, r, http.MethodGet, "/api/journal/"+created.ID.Hex(), "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decodeEntry(t, env.Data)
	assert.Equal(t, "C", fetched.Title)
	assert.Equal(t, "B", fetched.Content)

	// Delete returns the empty payload, then the entry is gone.
	rec, env = doJSON(t, r, http.MethodDelete, "/api/journal/"+created.ID.Hex(), "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{}", string(env.Data))

	rec, _ = doJSON(t, r, http.MethodGet, "/api/journal/"+created.ID.Hex(), "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJournalOwnershipIsEnforced(t *testing.T) {
	r, _ := setupJournalTest(t)

	_, env := doJSON(t, r, http.MethodPost, "/api/journal", "bob", map[string]interface{}{
		"title":   "Private",
		"content": "Bob's secret",
	})
	entry := decodeEntry(t, env.Data)
	id := entry.ID.Hex()

	// Alice gets 403, never 404 and never the content.
	rec, env := doJSON(t, r, http.MethodGet, "/api/journal/"+id, "alice", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, env.Data)

	rec, _ = doJSON(t, r, http.MethodPut, "/api/journal/"+id, "alice", map[string]interface{}{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = doJSON(t, r, http.MethodDelete, "/api/journal/"+id, "alice", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Bob's entry is untouched.
	rec, env = doJSON(t, r, http.MethodGet, "/api/journal/"+id, "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Private", decodeEntry(t, env.Data).Title)

	// Alice's list never includes Bob's entries.
	_, env = doJSON(t, r, http.MethodGet, "/api/journal", "alice", nil)
	require.NotNil(t, env.Count)
	assert.Equal(t, 0, *env.Count)
}

func TestJournalSearchMatchesTagOnly(t *testing.T) {
	r, _ := setupJournalTest(t)

	_, env := doJSON(t, r, http.MethodPost, "/api/journal", "alice", map[string]interface{}{
		"title":   "Morning pages",
		"content": "Slept in, slow start.",
		"tags":    []string{"Gratitude"},
	})
	tagged := decodeEntry(t, env.Data)

	doJSON(t, r, http.MethodPost, "/api/journal", "alice", map[string]interface{}{
		"title":   "Workout log",
		"content": "5k run.",
	})

	// The term appears only in a tag, and only with different casing.
	rec, env := doJSON(t, r, http.MethodGet, "/api/journal?search=gratitude", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Count)
	require.Equal(t, 1, *env.Count)

	var listed []models.JournalEntry
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Equal(t, tagged.ID, listed[0].ID)

	_, env = doJSON(t, r, http.MethodGet, "/api/journal?search=nowhere", "alice", nil)
	require.NotNil(t, env.Count)
	assert.Equal(t, 0, *env.Count)
}

func TestJournalValidationErrorsAreListed(t *testing.T) {
	r, _ := setupJournalTest(t)

	rec, env := doJSON(t, r, http.MethodPost, "/api/journal", "alice", map[string]interface{}{
		"title":   "",
		"content": "",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var messages []string
	require.NoError(t, json.Unmarshal(env.Error, &messages), "validation failures carry a message list")
	assert.Len(t, messages, 2)
}

func TestJournalOwnerChangeRejected(t *testing.T) {
	r, _ := setupJournalTest(t)

	_, env := doJSON(t, r, http.MethodPost, "/api/journal", "alice", map[string]interface{}{
		"title":   "Mine",
		"content": "Still mine",
	})
	id := decodeEntry(t, env.Data).ID.Hex()

	rec, env := doJSON(t, r, http.MethodPut, "/api/journal/"+id, "alice", map[string]interface{}{
		"userId": "mallory",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "owner change is a validation failure, not forbidden")

	var messages []string
	require.NoError(t, json.Unmarshal(env.Error, &messages))
	assert.Contains(t, messages, "Cannot change the owner of a journal entry")
}

func TestJournalUnknownIDIsNotFound(t *testing.T) {
	r, _ := setupJournalTest(t)

	id := primitive.NewObjectID().Hex()
	rec, env := doJSON(t, r, http.MethodGet, "/api/journal/"+id, "alice", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, `"Journal entry not found"`, string(env.Error))
}

func TestJournalListEmpty(t *testing.T) {
	r, _ := setupJournalTest(t)

	rec, env := doJSON(t, r, http.MethodGet, "/api/journal", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, env.Count)
	assert.Equal(t, 0, *env.Count)
	assert.Equal(t, "[]", string(env.Data), "empty result serializes as a list, not null")
}

func TestJournalInvalidBody(t *testing.T) {
	r, _ := setupJournalTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/journal", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", "alice")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
