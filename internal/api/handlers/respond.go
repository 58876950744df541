package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/isdelr/circuitgen-be/internal/ai"
	"github.com/isdelr/circuitgen-be/internal/services"
	"github.com/isdelr/circuitgen-be/internal/validation"
	"github.com/rs/zerolog/log"
)

// maxJSONBody bounds request bodies; saved diagrams are the largest payload.
const maxJSONBody = 2 << 20

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Detail string                  `json:"detail"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

// MessageResponse acknowledges an operation without returning a resource.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, ErrorResponse{Detail: detail})
}

func writeValidationError(w http.ResponseWriter, verr *validation.RequestValidationError) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: "Validation failed", Fields: verr.Fields})
}

// writeServiceError translates a service or gateway error into a response.
// notFound is the detail used for ErrNotFound. Anything that becomes a 5xx
// is logged with its full chain; clients only see a generic message.
func writeServiceError(w http.ResponseWriter, err error, notFound string) {
	var verr *validation.RequestValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr)
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, services.ErrConflict):
		writeError(w, http.StatusConflict, "Resource already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, http.StatusUnauthorized, "Incorrect email or password")
	case errors.Is(err, ai.ErrUpstreamUnavailable):
		writeError(w, http.StatusServiceUnavailable, "AI service temporarily unavailable, please retry shortly")
	case errors.Is(err, ai.ErrUpstreamFormat):
		writeError(w, http.StatusBadGateway, "AI returned invalid output, please retry")
	case errors.Is(err, ai.ErrUpstreamTransport):
		writeError(w, http.StatusBadGateway, "AI service request failed")
	case errors.Is(err, services.ErrStorage):
		log.Error().Err(err).Msg("Storage failure")
		writeError(w, http.StatusInternalServerError, "Database error")
	default:
		log.Error().Err(err).Msg("Unhandled error")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a JSON body into dst and validates it. It writes the
// error response itself and reports whether the handler may continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	// The body is read in full first: the stream decoder does not surface
	// the limit error from the underlying reader.
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if len(bytes.TrimSpace(data)) == 0 {
		writeError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validation.ValidateStruct(dst); err != nil {
		writeServiceError(w, err, "")
		return false
	}
	return true
}

// pathID parses the {id} URL parameter as a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeValidationError(w, validation.New("id", "int", "id must be a positive integer"))
		return 0, false
	}
	return id, true
}
