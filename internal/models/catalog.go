package models

import (
	"time"

	"gorm.io/datatypes"
)

// Component is a study-guide catalog entry. ImageURL holds either a single
// URL string or a list of URLs, stored as JSON.
type Component struct {
	ID          int64          `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"uniqueIndex;not null"`
	Description string         `json:"description" gorm:"type:text;not null"`
	Category    string         `json:"category" gorm:"not null"` // e.g. Sensor, Actuator, Controller
	WiringGuide *string        `json:"wiring_guide" gorm:"type:text"`
	ImageURL    datatypes.JSON `json:"image_url"`
	CreatedAt   time.Time      `json:"created_at"`
}

// TableName returns the database table name for the Component model.
func (Component) TableName() string {
	return "components"
}

// AICourse is one module of the AI course curriculum, ordered by Week.
type AICourse struct {
	ID          int64          `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title" gorm:"not null"`
	Description *string        `json:"description" gorm:"type:text"`
	Week        *int           `json:"week"`
	Content     *string        `json:"content" gorm:"type:text"`
	ImageURL    datatypes.JSON `json:"image_url"`
	CreatedAt   time.Time      `json:"created_at"`
}

// TableName returns the database table name for the AICourse model.
func (AICourse) TableName() string {
	return "ai_courses"
}
