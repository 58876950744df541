package handlers

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/isdelr/circuitgen-be/internal/auth"
	"github.com/isdelr/circuitgen-be/internal/export"
	"github.com/isdelr/circuitgen-be/internal/models"
	"github.com/isdelr/circuitgen-be/internal/services"
	"github.com/isdelr/circuitgen-be/internal/validation"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// CircuitHandler handles HTTP requests for saved circuits.
type CircuitHandler struct {
	service services.CircuitServiceProvider
}

// NewCircuitHandler creates a new CircuitHandler.
func NewCircuitHandler(service services.CircuitServiceProvider) *CircuitHandler {
	return &CircuitHandler{service: service}
}

// SaveRequest is a generation result to persist.
type SaveRequest struct {
	Query       string          `json:"query" validate:"required,max=4000"`
	DiagramData json.RawMessage `json:"diagram_data"`
	Code        *string         `json:"code"`
	BOM         json.RawMessage `json:"bom"`
}

// SaveResponse returns the share id of a saved circuit.
type SaveResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func firstByte(raw []byte) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

func (req *SaveRequest) validate() error {
	if strings.TrimSpace(req.Query) == "" {
		return validation.New("query", "required", "query is required")
	}
	if firstByte(req.DiagramData) != '{' {
		return validation.New("diagram_data", "object", "diagram_data must be a JSON object")
	}
	if c := firstByte(req.BOM); c != 0 && c != '[' && c != '{' && !bytes.Equal(bytes.TrimSpace(req.BOM), []byte("null")) {
		return validation.New("bom", "list", "bom must be a list or an object")
	}
	return nil
}

// Save handles POST /api/save for the authenticated user.
func (h *CircuitHandler) Save(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.Unauthorized(w, "Not authenticated")
		return
	}

	var req SaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.validate(); err != nil {
		writeServiceError(w, err, "")
		return
	}

	input := services.SaveCircuitInput{
		Query:       strings.TrimSpace(req.Query),
		DiagramData: req.DiagramData,
		BOM:         req.BOM,
	}
	if req.Code != nil {
		input.Code = *req.Code
	}

	circuit, err := h.service.SaveCircuit(r.Context(), models.UserOwner(user.ID), input)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to save circuit")
		writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, SaveResponse{ID: circuit.ID, Message: "Saved successfully"})
}

// Recent handles GET /api/recent, listing the caller's newest circuits.
func (h *CircuitHandler) Recent(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		auth.Unauthorized(w, "Not authenticated")
		return
	}

	limit := services.DefaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > services.MaxRecentLimit {
			writeValidationError(w, validation.New("limit", "range",
				"limit must be an integer between 1 and "+strconv.Itoa(services.MaxRecentLimit)))
			return
		}
		limit = n
	}

	circuits, err := h.service.GetRecentCircuits(r.Context(), models.UserOwner(user.ID), limit)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to list recent circuits")
		writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, circuits)
}

// Get handles GET /api/circuit/{id}. Anyone holding the id may read it.
func (h *CircuitHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	circuit, err := h.service.GetCircuitByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Circuit not found")
		return
	}
	writeJSON(w, http.StatusOK, circuit)
}

// ExportBOM handles GET /api/circuit/{id}/bom.xlsx.
func (h *CircuitHandler) ExportBOM(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	circuit, err := h.service.GetCircuitByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Circuit not found")
		return
	}

	bom, err := export.ParseBOM(circuit.BOM)
	if err != nil {
		log.Warn().Err(err).Str("circuit_id", id).Msg("Stored BOM is not exportable")
		writeError(w, http.StatusUnprocessableEntity, "Saved BOM cannot be exported")
		return
	}

	var buf bytes.Buffer
	if err := export.WriteBOM(&buf, circuit.Query, bom); err != nil {
		log.Error().Err(err).Str("circuit_id", id).Msg("Failed to render BOM workbook")
		writeError(w, http.StatusInternalServerError, "Failed to export BOM")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="bom-`+circuit.ID+`.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Warn().Err(err).Str("circuit_id", id).Msg("Failed to stream BOM workbook")
	}
}
