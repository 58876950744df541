package models

import (
	"time"

	"gorm.io/datatypes"
)

// Circuit is a saved generation result. Rows are immutable once written and
// readable by anyone who knows the id.
type Circuit struct {
	ID          string         `json:"id" gorm:"primaryKey;size:16"`
	UserID      *int64         `json:"-" gorm:"index"`
	Query       string         `json:"query" gorm:"not null"`
	DiagramData datatypes.JSON `json:"diagram_data"`
	Code        string         `json:"code" gorm:"type:text"`
	BOM         datatypes.JSON `json:"bom" gorm:"column:bom"`
	CreatedAt   time.Time      `json:"created_at" gorm:"index"`
}

// TableName returns the database table name for the Circuit model.
func (Circuit) TableName() string {
	return "circuits"
}

// Owner returns who saved the circuit.
func (c Circuit) Owner() Owner {
	return OwnerFromColumn(c.UserID)
}

// CircuitSummary is the listing row for recent circuits.
type CircuitSummary struct {
	ID        string    `json:"id"`
	Query     string    `json:"query"`
	CreatedAt time.Time `json:"created_at"`
}
