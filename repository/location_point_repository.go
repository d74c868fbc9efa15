package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/amirphl/pesquisa-campo/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LocationPointRepositoryImpl implements LocationPointRepository interface
type LocationPointRepositoryImpl struct {
	*BaseRepository[models.LocationPoint, models.LocationPointFilter]
}

// NewLocationPointRepository creates a new location point repository
func NewLocationPointRepository(db *gorm.DB) LocationPointRepository {
	return &LocationPointRepositoryImpl{
		BaseRepository: NewBaseRepository[models.LocationPoint, models.LocationPointFilter](db),
	}
}

// Save appends one point without opening a transaction
func (r *LocationPointRepositoryImpl) Save(ctx context.Context, point *models.LocationPoint) error {
	if err := r.getDB(ctx).Create(point).Error; err != nil {
		return fmt.Errorf("failed to save location point: %w", err)
	}
	return nil
}

func (r *LocationPointRepositoryImpl) Route(ctx context.Context, researcherID uuid.UUID, from, to time.Time) ([]*models.LocationPoint, error) {
	filter := models.LocationPointFilter{ResearcherID: &researcherID, From: &from, To: &to}

	var points []*models.LocationPoint
	err := r.applyFilter(r.getDB(ctx), filter).
		Order("timestamp ASC").
		Order("id ASC").
		Find(&points).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch researcher route: %w", err)
	}
	return points, nil
}

func (r *LocationPointRepositoryImpl) applyFilter(db *gorm.DB, filter models.LocationPointFilter) *gorm.DB {
	if filter.ResearcherID != nil {
		db = db.Where("id_pesquisador = ?", *filter.ResearcherID)
	}
	if filter.From != nil {
		db = db.Where("timestamp >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("timestamp <= ?", *filter.To)
	}
	return db
}
