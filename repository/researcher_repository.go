package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/pesquisa-campo/models"
	"gorm.io/gorm"
)

// ResearcherRepositoryImpl implements ResearcherRepository interface
type ResearcherRepositoryImpl struct {
	*BaseRepository[models.Researcher, models.ResearcherFilter]
}

// NewResearcherRepository creates a new researcher repository
func NewResearcherRepository(db *gorm.DB) ResearcherRepository {
	return &ResearcherRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Researcher, models.ResearcherFilter](db),
	}
}

// ByEmail retrieves a researcher by email, nil when absent
func (r *ResearcherRepositoryImpl) ByEmail(ctx context.Context, email string) (*models.Researcher, error) {
	researchers, err := r.ByFilter(ctx, models.ResearcherFilter{Email: &email}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(researchers) == 0 {
		return nil, nil
	}
	return researchers[0], nil
}

// ByFilter retrieves researchers based on filter criteria
func (r *ResearcherRepositoryImpl) ByFilter(ctx context.Context, filter models.ResearcherFilter, orderBy string, limit, offset int) ([]*models.Researcher, error) {
	db := r.getDB(ctx)

	var researchers []*models.Researcher
	query := paginate(r.applyFilter(db, filter), orderBy, limit, offset)
	if err := query.Find(&researchers).Error; err != nil {
		return nil, fmt.Errorf("failed to find researchers: %w", err)
	}

	return researchers, nil
}

// Count returns the number of researchers matching the filter
func (r *ResearcherRepositoryImpl) Count(ctx context.Context, filter models.ResearcherFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.getDB(ctx).Model(&models.Researcher{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count researchers: %w", err)
	}
	return count, nil
}

// Exists checks if any researcher matching the filter exists
func (r *ResearcherRepositoryImpl) Exists(ctx context.Context, filter models.ResearcherFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ResearcherRepositoryImpl) applyFilter(db *gorm.DB, filter models.ResearcherFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.Email != nil {
		db = db.Where("LOWER(email) = LOWER(?)", *filter.Email)
	}
	if filter.IsActive != nil {
		db = db.Where("esta_ativo = ?", *filter.IsActive)
	}
	if filter.NameLike != nil {
		db = db.Where("nome ILIKE ?", "%"+*filter.NameLike+"%")
	}
	return db
}
