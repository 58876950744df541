package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/circuitgen-be/internal/cache"
	"github.com/isdelr/circuitgen-be/internal/models"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultRecentLimit = 10
	MaxRecentLimit     = 100
)

// CircuitServiceProvider defines the interface for circuit services.
type CircuitServiceProvider interface {
	SaveCircuit(ctx context.Context, owner models.Owner, input SaveCircuitInput) (models.Circuit, error)
	GetCircuitByID(ctx context.Context, id string) (models.Circuit, error)
	GetRecentCircuits(ctx context.Context, owner models.Owner, limit int) ([]models.CircuitSummary, error)
}

// SaveCircuitInput carries the payloads of a generation result. DiagramData
// and BOM are raw JSON and stored as-is.
type SaveCircuitInput struct {
	Query       string
	DiagramData []byte
	Code        string
	BOM         []byte
}

// CircuitService provides business logic for saved circuits.
type CircuitService struct {
	db    *gorm.DB
	cache cache.CircuitCache
	now   func() time.Time
	newID func() string
}

// NewCircuitService creates a new CircuitService. A nil cache disables caching.
func NewCircuitService(db *gorm.DB, c cache.CircuitCache) *CircuitService {
	if c == nil {
		c = cache.Noop{}
	}
	return &CircuitService{db: db, cache: c, now: time.Now, newID: newShareID}
}

// newShareID returns 8 lowercase hex characters taken from a random UUID.
func newShareID() string {
	return uuid.New().String()[:8]
}

// SaveCircuit stores a new circuit for owner and returns it with its id.
func (s *CircuitService) SaveCircuit(ctx context.Context, owner models.Owner, input SaveCircuitInput) (models.Circuit, error) {
	bom := input.BOM
	if len(bom) == 0 || string(bom) == "null" {
		bom = []byte("[]")
	}

	circuit := models.Circuit{
		ID:          s.newID(),
		UserID:      owner.Column(),
		Query:       input.Query,
		DiagramData: datatypes.JSON(input.DiagramData),
		Code:        input.Code,
		BOM:         datatypes.JSON(bom),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&circuit).Error; err != nil {
		// A share id collision is reported as a storage failure; the
		// caller can simply save again.
		return models.Circuit{}, storageError("save circuit", err)
	}
	s.cache.Set(ctx, circuit)
	log.Debug().Str("circuit_id", circuit.ID).Str("owner", owner.String()).Msg("Circuit saved")
	return circuit, nil
}

// GetCircuitByID loads a circuit regardless of owner.
func (s *CircuitService) GetCircuitByID(ctx context.Context, id string) (models.Circuit, error) {
	if circuit, ok := s.cache.Get(ctx, id); ok {
		return circuit, nil
	}

	var circuit models.Circuit
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&circuit).Error
	if err != nil {
		return models.Circuit{}, classify("get circuit", err, fmt.Errorf("circuit %s: %w", id, ErrNotFound))
	}
	s.cache.Set(ctx, circuit)
	return circuit, nil
}

// GetRecentCircuits lists the newest circuits belonging to owner. The limit
// is clamped to 1..MaxRecentLimit; zero selects DefaultRecentLimit.
func (s *CircuitService) GetRecentCircuits(ctx context.Context, owner models.Owner, limit int) ([]models.CircuitSummary, error) {
	switch {
	case limit == 0:
		limit = DefaultRecentLimit
	case limit < 1:
		limit = 1
	case limit > MaxRecentLimit:
		limit = MaxRecentLimit
	}

	q := s.db.WithContext(ctx).Model(&models.Circuit{}).Select("id", "query", "created_at")
	if id, ok := owner.UserID(); ok {
		q = q.Where("user_id = ?", id)
	} else {
		q = q.Where("user_id IS NULL")
	}

	summaries := make([]models.CircuitSummary, 0, limit)
	if err := q.Order("created_at DESC").Order("id").Limit(limit).Scan(&summaries).Error; err != nil {
		return nil, storageError("list circuits", err)
	}
	return summaries, nil
}
