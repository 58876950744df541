package handlers

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/isdelr/circuitgen-be/internal/services"
	"github.com/rs/zerolog/log"
)

// CourseHandler handles HTTP requests for AI course modules.
type CourseHandler struct {
	service services.CourseServiceProvider
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(service services.CourseServiceProvider) *CourseHandler {
	return &CourseHandler{service: service}
}

// CourseRequest is the body of create and update requests.
type CourseRequest struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description *string         `json:"description"`
	Week        *int            `json:"week" validate:"omitempty,min=0,max=520"`
	Content     *string         `json:"content"`
	ImageURL    json.RawMessage `json:"image_url"`
}

func (req *CourseRequest) input() (services.CourseInput, error) {
	if err := checkImageURL(req.ImageURL); err != nil {
		return services.CourseInput{}, err
	}
	return services.CourseInput{
		Title:       req.Title,
		Description: req.Description,
		Week:        req.Week,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
	}, nil
}

// GetAll lists the curriculum in week order.
func (h *CourseHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.ListCourses(r.Context())
	if err != nil {
		writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

// Get returns one course module.
func (h *CourseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	course, err := h.service.GetCourse(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Course not found")
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// Create adds a course module.
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CourseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	input, err := req.input()
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	course, err := h.service.CreateCourse(r.Context(), input)
	if err != nil {
		log.Error().Err(err).Str("title", req.Title).Msg("Failed to create course")
		writeServiceError(w, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, course)
}

// Update replaces a course module.
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req CourseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	input, err := req.input()
	if err != nil {
		writeServiceError(w, err, "")
		return
	}

	course, err := h.service.UpdateCourse(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, err, "Course not found")
		return
	}
	writeJSON(w, http.StatusOK, course)
}

// Delete removes a course module.
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteCourse(r.Context(), id); err != nil {
		writeServiceError(w, err, "Course not found")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Course deleted successfully"})
}
