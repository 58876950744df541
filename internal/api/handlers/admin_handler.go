package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog/log"
)

// AdminHandler guards the catalog editor with a shared admin password.
type AdminHandler struct {
	password string
}

// NewAdminHandler creates a new AdminHandler. An empty password rejects
// every attempt.
func NewAdminHandler(password string) *AdminHandler {
	return &AdminHandler{password: password}
}

// VerifyPasswordRequest carries the password to check.
type VerifyPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// VerifyPassword handles POST /api/verify-password.
func (h *AdminHandler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req VerifyPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if h.password == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) != 1 {
		log.Warn().Str("remote_addr", r.RemoteAddr).Msg("Rejected admin password")
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

// Health reports liveness.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
