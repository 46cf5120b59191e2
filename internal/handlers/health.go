package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"time"
)

// HealthCheck reports service health for uptime monitors.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	env := os.Getenv("ENV")
	if env == "" {
		env = "development"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":      "ok",
		"message":     "API is healthy",
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"environment": env,
	})
}
