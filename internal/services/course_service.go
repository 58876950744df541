package services

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/circuitgen-be/internal/models"
	"gorm.io/gorm"
)

// CourseServiceProvider defines the interface for the AI course curriculum.
type CourseServiceProvider interface {
	ListCourses(ctx context.Context) ([]models.AICourse, error)
	GetCourse(ctx context.Context, id int64) (models.AICourse, error)
	CreateCourse(ctx context.Context, input CourseInput) (models.AICourse, error)
	UpdateCourse(ctx context.Context, id int64, input CourseInput) (models.AICourse, error)
	DeleteCourse(ctx context.Context, id int64) error
}

// CourseInput holds the writable fields of a course module.
type CourseInput struct {
	Title       string
	Description *string
	Week        *int
	Content     *string
	ImageURL    []byte
}

// CourseService provides business logic for course modules.
type CourseService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCourseService creates a new CourseService.
func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db, now: time.Now}
}

func (in CourseInput) apply(c *models.AICourse) {
	c.Title = in.Title
	c.Description = in.Description
	c.Week = in.Week
	c.Content = in.Content
	c.ImageURL = jsonOrNil(in.ImageURL)
}

// ListCourses returns the curriculum by week. Modules without a week come
// last.
func (s *CourseService) ListCourses(ctx context.Context) ([]models.AICourse, error) {
	courses := []models.AICourse{}
	err := s.db.WithContext(ctx).
		Order("week IS NULL").
		Order("week ASC").
		Order("id ASC").
		Find(&courses).Error
	if err != nil {
		return nil, storageError("list courses", err)
	}
	return courses, nil
}

// GetCourse retrieves a single course module by id.
func (s *CourseService) GetCourse(ctx context.Context, id int64) (models.AICourse, error) {
	var course models.AICourse
	if err := s.db.WithContext(ctx).First(&course, id).Error; err != nil {
		return models.AICourse{}, classify("get course", err, fmt.Errorf("course %d: %w", id, ErrNotFound))
	}
	return course, nil
}

// CreateCourse adds a course module.
func (s *CourseService) CreateCourse(ctx context.Context, input CourseInput) (models.AICourse, error) {
	course := models.AICourse{CreatedAt: s.now().UTC()}
	input.apply(&course)
	if err := s.db.WithContext(ctx).Create(&course).Error; err != nil {
		return models.AICourse{}, storageError("create course", err)
	}
	return course, nil
}

// UpdateCourse replaces the writable fields of an existing course module.
func (s *CourseService) UpdateCourse(ctx context.Context, id int64, input CourseInput) (models.AICourse, error) {
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return models.AICourse{}, err
	}
	input.apply(&course)
	if err := s.db.WithContext(ctx).Save(&course).Error; err != nil {
		return models.AICourse{}, storageError("update course", err)
	}
	return course, nil
}

// DeleteCourse removes a course module by id.
func (s *CourseService) DeleteCourse(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.AICourse{}, id)
	if res.Error != nil {
		return storageError("delete course", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("course %d: %w", id, ErrNotFound)
	}
	return nil
}
