package services

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/circuitgen-be/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ComponentServiceProvider defines the interface for the component catalog.
type ComponentServiceProvider interface {
	ListComponents(ctx context.Context) ([]models.Component, error)
	GetComponent(ctx context.Context, id int64) (models.Component, error)
	CreateComponent(ctx context.Context, input ComponentInput) (models.Component, error)
	UpdateComponent(ctx context.Context, id int64, input ComponentInput) (models.Component, error)
	DeleteComponent(ctx context.Context, id int64) error
}

// ComponentInput holds the writable fields of a component.
type ComponentInput struct {
	Name        string
	Description string
	Category    string
	WiringGuide *string
	ImageURL    []byte
}

// ComponentService provides business logic for the component catalog.
type ComponentService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewComponentService creates a new ComponentService.
func NewComponentService(db *gorm.DB) *ComponentService {
	return &ComponentService{db: db, now: time.Now}
}

func (in ComponentInput) apply(c *models.Component) {
	c.Name = in.Name
	c.Description = in.Description
	c.Category = in.Category
	c.WiringGuide = in.WiringGuide
	c.ImageURL = jsonOrNil(in.ImageURL)
}

// jsonOrNil keeps absent image references as SQL NULL.
func jsonOrNil(raw []byte) datatypes.JSON {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return datatypes.JSON(raw)
}

// ListComponents returns every component ordered by name.
func (s *ComponentService) ListComponents(ctx context.Context) ([]models.Component, error) {
	components := []models.Component{}
	if err := s.db.WithContext(ctx).Order("name").Find(&components).Error; err != nil {
		return nil, storageError("list components", err)
	}
	return components, nil
}

// GetComponent retrieves a single component by id.
func (s *ComponentService) GetComponent(ctx context.Context, id int64) (models.Component, error) {
	var component models.Component
	if err := s.db.WithContext(ctx).First(&component, id).Error; err != nil {
		return models.Component{}, classify("get component", err, fmt.Errorf("component %d: %w", id, ErrNotFound))
	}
	return component, nil
}

// CreateComponent adds a component. Names are unique.
func (s *ComponentService) CreateComponent(ctx context.Context, input ComponentInput) (models.Component, error) {
	component := models.Component{CreatedAt: s.now().UTC()}
	input.apply(&component)
	if err := s.db.WithContext(ctx).Create(&component).Error; err != nil {
		return models.Component{}, classify("create component", err, ErrStorage)
	}
	return component, nil
}

// UpdateComponent replaces the writable fields of an existing component.
func (s *ComponentService) UpdateComponent(ctx context.Context, id int64, input ComponentInput) (models.Component, error) {
	component, err := s.GetComponent(ctx, id)
	if err != nil {
		return models.Component{}, err
	}
	input.apply(&component)
	if err := s.db.WithContext(ctx).Save(&component).Error; err != nil {
		return models.Component{}, classify("update component", err, ErrStorage)
	}
	return component, nil
}

// DeleteComponent removes a component by id.
func (s *ComponentService) DeleteComponent(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.Component{}, id)
	if res.Error != nil {
		return storageError("delete component", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("component %d: %w", id, ErrNotFound)
	}
	return nil
}
