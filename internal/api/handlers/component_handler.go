package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/isdelr/circuitgen-be/internal/services"
	"github.com/isdelr/circuitgen-be/internal/validation"
	"github.com/rs/zerolog/log"
)

// ComponentHandler handles HTTP requests for the component catalog.
type ComponentHandler struct {
	service services.ComponentServiceProvider
}

// NewComponentHandler creates a new ComponentHandler.
func NewComponentHandler(service services.ComponentServiceProvider) *ComponentHandler {
	return &ComponentHandler{service: service}
}

// ComponentRequest is the body of create and update requests.
type ComponentRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"required"`
	Category    string          `json:"category" validate:"required,max=100"`
	WiringGuide *string         `json:"wiring_guide"`
	ImageURL    json.RawMessage `json:"image_url"`
}

func (req *ComponentRequest) input() (services.ComponentInput, error) {
	if err := checkImageURL(req.ImageURL); err != nil {
		return services.ComponentInput{}, err
	}
	return services.ComponentInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		WiringGuide: req.WiringGuide,
		ImageURL:    req.ImageURL,
	}, nil
}

// checkImageURL accepts null, a single URL string or a list of URL strings.
func checkImageURL(raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var one string
	if json.Unmarshal(raw, &one) == nil {
		return nil
	}
	var many []string
	if json.Unmarshal(raw, &many) == nil {
		return nil
	}
	return validation.New("image_url", "url", "image_url must be a string or a list of strings")
}

// GetAll handles the request to list all components.
func (h *ComponentHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	components, err := h.service.ListComponents(r.Context())
	if err != nil {
		writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, components)
}

// Get handles the request to get a single component by its ID.
func (h *ComponentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	component, err := h.service.GetComponent(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Component not found")
		return
	}
	writeJSON(w, http.StatusOK, component)
}

// Create handles the request to create a new component.
func (h *ComponentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ComponentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	input, err := req.input()
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	component, err := h.service.CreateComponent(r.Context(), input)
	if err != nil {
		h.writeWriteError(w, err, req.Name)
		return
	}
	writeJSON(w, http.StatusCreated, component)
}

// Update handles the request to update an existing component.
func (h *ComponentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ComponentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	input, err := req.input()
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	component, err := h.service.UpdateComponent(r.Context(), id, input)
	if err != nil {
		h.writeWriteError(w, err, req.Name)
		return
	}
	writeJSON(w, http.StatusOK, component)
}

func (h *ComponentHandler) writeWriteError(w http.ResponseWriter, err error, name string) {
	if errors.Is(err, services.ErrConflict) {
		writeError(w, http.StatusConflict, "Component with this name already exists")
		return
	}
	log.Error().Err(err).Str("component", name).Msg("Failed to store component")
	writeServiceError(w, err, "Component not found")
}

// Delete handles the request to delete a component.
func (h *ComponentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteComponent(r.Context(), id); err != nil {
		writeServiceError(w, err, "Component not found")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Component deleted successfully"})
}
