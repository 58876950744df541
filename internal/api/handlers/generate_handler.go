package handlers

import (
	"net/http"
	"strings"

	"github.com/isdelr/circuitgen-be/internal/ai"
	"github.com/isdelr/circuitgen-be/internal/validation"
)

// GenerateHandler serves the AI generation endpoints.
type GenerateHandler struct {
	generator ai.Generator
}

// NewGenerateHandler creates a new GenerateHandler.
func NewGenerateHandler(generator ai.Generator) *GenerateHandler {
	return &GenerateHandler{generator: generator}
}

// GenerateRequest carries a free-text project description.
type GenerateRequest struct {
	Query string `json:"query" validate:"required,max=4000"`
}

// ComponentDetailsRequest names the component to describe.
type ComponentDetailsRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Category string `json:"category" validate:"required,max=100"`
}

func (h *GenerateHandler) decodeQuery(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req GenerateRequest
	if !decodeJSON(w, r, &req) {
		return "", false
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		writeValidationError(w, validation.New("query", "required", "query is required"))
		return "", false
	}
	return query, true
}

// Diagram handles POST /api/generate.
func (h *GenerateHandler) Diagram(w http.ResponseWriter, r *http.Request) {
	query, ok := h.decodeQuery(w, r)
	if !ok {
		return
	}
	diagram, err := h.generator.GenerateDiagram(r.Context(), query)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, diagram)
}

// Code handles POST /api/generate-code.
func (h *GenerateHandler) Code(w http.ResponseWriter, r *http.Request) {
	query, ok := h.decodeQuery(w, r)
	if !ok {
		return
	}
	code, err := h.generator.GenerateCode(r.Context(), query)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, code)
}

// BOM handles POST /api/generate-bom.
func (h *GenerateHandler) BOM(w http.ResponseWriter, r *http.Request) {
	query, ok := h.decodeQuery(w, r)
	if !ok {
		return
	}
	bom, err := h.generator.GenerateBOM(r.Context(), query)
	if err != nil {
		writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, bom)
}

// ComponentDetails handles POST /api/generate-component-details.
func (h *GenerateHandler) ComponentDetails(w http.ResponseWriter, r *http.Request) {
	var req ComponentDetailsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	details, err := h.generator.GenerateComponentDetails(r.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Category))
	if err != nil {
		writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, details)
}
