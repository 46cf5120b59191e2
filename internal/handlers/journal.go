package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/AnshRaj112/journal-backend/internal/apperrors"
	"github.com/AnshRaj112/journal-backend/internal/logging"
	"github.com/AnshRaj112/journal-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// journalService executes the entry operations. Package-level so tests can
// swap in a service over a fake store.
var journalService = services.NewJournalService(services.MongoJournalStore{})

// journalAuth resolves the request's bearer token to a user id. Swapped in tests.
var journalAuth = requireJournalAuth

// requireJournalAuth validates the session and returns the authenticated
// user's ID. Returns ("", false) if not authenticated.
func requireJournalAuth(r *http.Request) (string, bool) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return "", false
	}
	userID, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		return "", false
	}
	return userID.String(), true
}

// JournalResponse is the shared response envelope for all journal routes.
// Error is a string for most failures and a list of messages for
// validation failures.
type JournalResponse struct {
	Success bool        `json:"success"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

type CreateJournalRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Mood    string   `json:"mood"`
	Tags    []string `json:"tags"`
}

// UpdateJournalRequest is a partial update; nil fields are left unchanged.
// UserID is decoded only so an owner-change attempt can be rejected.
type UpdateJournalRequest struct {
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Mood    *string   `json:"mood"`
	Tags    *[]string `json:"tags"`
	UserID  *string   `json:"userId"`
}

func writeJournalJSON(w http.ResponseWriter, status int, body JournalResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeJournalUnauthorized(w http.ResponseWriter) {
	writeJournalJSON(w, http.StatusUnauthorized, JournalResponse{
		Success: false,
		Error:   "Not authenticated",
	})
}

// writeJournalError maps service errors onto the response envelope.
// forbiddenMsg names the attempted operation, matching the per-operation
// messages the client displays verbatim.
func writeJournalError(w http.ResponseWriter, err error, forbiddenMsg string) {
	var vErr *apperrors.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJournalJSON(w, http.StatusBadRequest, JournalResponse{
			Success: false,
			Error:   vErr.Messages,
		})
	case errors.Is(err, apperrors.ErrNotFound):
		writeJournalJSON(w, http.StatusNotFound, JournalResponse{
			Success: false,
			Error:   "Journal entry not found",
		})
	case errors.Is(err, apperrors.ErrForbidden):
		writeJournalJSON(w, http.StatusForbidden, JournalResponse{
			Success: false,
			Error:   forbiddenMsg,
		})
	default:
		logging.Log.Error("Journal operation failed", zap.Error(err))
		writeJournalJSON(w, http.StatusInternalServerError, JournalResponse{
			Success: false,
			Error:   "Server Error",
		})
	}
}

func journalContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 5*time.Second)
}

// GetJournalEntries returns all of the caller's entries matching the
// search/mood/date/tags criteria, with the result count alongside.
func GetJournalEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := journalAuth(r)
	if !ok {
		writeJournalUnauthorized(w)
		return
	}

	ctx, cancel := journalContext(r)
	defer cancel()

	filter := services.ParseJournalFilter(userID, r.URL.Query())
	entries, err := journalService.List(ctx, filter)
	if err != nil {
		writeJournalError(w, err, "")
		return
	}

	count := len(entries)
	writeJournalJSON(w, http.StatusOK, JournalResponse{
		Success: true,
		Count:   &count,
		Data:    entries,
	})
}

// GetJournalEntry returns a single entry owned by the caller.
func GetJournalEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := journalAuth(r)
	if !ok {
		writeJournalUnauthorized(w)
		return
	}

	ctx, cancel := journalContext(r)
	defer cancel()

	entry, err := journalService.Get(ctx, userID, chi.URLParam(r, "id"))
	if err != nil {
		writeJournalError(w, err, "Not authorized to access this journal entry")
		return
	}

	writeJournalJSON(w, http.StatusOK, JournalResponse{
		Success: true,
		Data:    entry,
	})
}

// CreateJournalEntry creates a new entry owned by the caller.
func CreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := journalAuth(r)
	if !ok {
		writeJournalUnauthorized(w)
		return
	}

	var req CreateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJournalJSON(w, http.StatusBadRequest, JournalResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	ctx, cancel := journalContext(r)
	defer cancel()

	entry, err := journalService.Create(ctx, userID, services.CreateJournalInput{
		Title:   req.Title,
		Content: req.Content,
		Mood:    req.Mood,
		Tags:    req.Tags,
	})
	if err != nil {
		writeJournalError(w, err, "")
		return
	}

	writeJournalJSON(w, http.StatusCreated, JournalResponse{
		Success: true,
		Data:    entry,
	})
}

// UpdateJournalEntry applies a partial update to the caller's entry.
func UpdateJournalEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := journalAuth(r)
	if !ok {
		writeJournalUnauthorized(w)
		return
	}

	var req UpdateJournalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJournalJSON(w, http.StatusBadRequest, JournalResponse{
			Success: false,
			Error:   "Invalid request body",
		})
		return
	}

	ctx, cancel := journalContext(r)
	defer cancel()

	entry, err := journalService.Update(ctx, userID, chi.URLParam(r, "id"), services.UpdateJournalInput{
		Title:   req.Title,
		Content: req.Content,
		Mood:    req.Mood,
		Tags:    req.Tags,
		UserID:  req.UserID,
	})
	if err != nil {
		writeJournalError(w, err, "Not authorized to update this journal entry")
		return
	}

	writeJournalJSON(w, http.StatusOK, JournalResponse{
		Success: true,
		Data:    entry,
	})
}

// DeleteJournalEntry permanently removes the caller's entry.
func DeleteJournalEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := journalAuth(r)
	if !ok {
		writeJournalUnauthorized(w)
		return
	}

	ctx, cancel := journalContext(r)
	defer cancel()

	if err := journalService.Delete(ctx, userID, chi.URLParam(r, "id")); err != nil {
		writeJournalError(w, err, "Not authorized to delete this journal entry")
		return
	}

	writeJournalJSON(w, http.StatusOK, JournalResponse{
		Success: true,
		Data:    map[string]interface{}{},
	})
}
