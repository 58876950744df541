package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/isdelr/circuitgen-be/internal/auth"
	"github.com/isdelr/circuitgen-be/internal/models"
	"github.com/isdelr/circuitgen-be/internal/services"
	"github.com/isdelr/circuitgen-be/internal/validation"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for user management.
type UserHandler struct {
	service services.UserServiceProvider
	tokens  *auth.TokenIssuer
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, tokens *auth.TokenIssuer) *UserHandler {
	return &UserHandler{service: service, tokens: tokens}
}

// RegisterRequest defines the structure for registration requests.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8"`
}

// maxPasswordBytes is bcrypt's input limit.
const maxPasswordBytes = 72

// LoginRequest holds login credentials. Username carries the email, as in
// the OAuth2 password form; JSON clients may send email instead.
type LoginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// TokenResponse is returned on successful registration and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Register handles new user registration.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Password) > maxPasswordBytes {
		writeValidationError(w, validation.New("password", "max", "password must be at most 72 bytes"))
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrConflict) {
			writeError(w, http.StatusConflict, "Email already registered")
			return
		}
		log.Error().Err(err).Str("email", req.Email).Msg("Failed to register user")
		writeServiceError(w, err, "")
		return
	}
	h.writeToken(w, http.StatusCreated, user)
}

// Login handles user authentication and token issuance.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeLogin(w, r)
	if !ok {
		return
	}
	email := req.Username
	if email == "" {
		email = req.Email
	}
	if strings.TrimSpace(email) == "" {
		writeValidationError(w, validation.New("username", "required", "username is required"))
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", email).Msg("Failed authentication attempt")
		}
		writeServiceError(w, err, "")
		return
	}
	h.writeToken(w, http.StatusOK, user)
}

func decodeLogin(w http.ResponseWriter, r *http.Request) (LoginRequest, bool) {
	var req LoginRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return req, decodeJSON(w, r, &req)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	var err error
	if mediaType == "multipart/form-data" {
		err = r.ParseMultipartForm(maxJSONBody)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid form body")
		return req, false
	}
	req.Username = r.PostFormValue("username")
	req.Password = r.PostFormValue("password")
	if err := validation.ValidateStruct(&req); err != nil {
		writeServiceError(w, err, "")
		return req, false
	}
	return req, true
}

func (h *UserHandler) writeToken(w http.ResponseWriter, status int, user models.User) {
	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to issue token")
		writeError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	writeJSON(w, status, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(h.tokens.TTL().Seconds()),
	})
}

// GetMe returns the authenticated user.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user from context")
		auth.Unauthorized(w, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

// DeleteMe permanently deletes the authenticated user's account. Their
// saved circuits stay reachable by id.
func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.Unauthorized(w, "Not authenticated")
		return
	}
	if err := h.service.DeleteUser(r.Context(), user.ID); err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to delete user")
		writeServiceError(w, err, "User not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
