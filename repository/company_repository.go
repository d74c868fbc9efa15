package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/pesquisa-campo/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompanyRepositoryImpl implements CompanyRepository interface
type CompanyRepositoryImpl struct {
	*BaseRepository[models.Company, models.CompanyFilter]
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &CompanyRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Company, models.CompanyFilter](db),
	}
}

// ByContactEmail retrieves a company by its contact email, nil when absent
func (r *CompanyRepositoryImpl) ByContactEmail(ctx context.Context, email string) (*models.Company, error) {
	companies, err := r.ByFilter(ctx, models.CompanyFilter{ContactEmail: &email}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, nil
	}
	return companies[0], nil
}

// ToggleActive flips esta_ativa and returns the updated row, nil when the company does not exist.
// Campaign links are not touched.
func (r *CompanyRepositoryImpl) ToggleActive(ctx context.Context, id uuid.UUID) (company *models.Company, err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return nil, err
	}
	defer finish(db, shouldCommit, &err)

	var updated []*models.Company
	res := db.Model(&updated).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Update("esta_ativa", gorm.Expr("NOT esta_ativa"))
	if res.Error != nil {
		err = fmt.Errorf("failed to toggle company active flag: %w", res.Error)
		return nil, err
	}
	if len(updated) == 0 {
		return nil, nil
	}

	return updated[0], nil
}

// UpdateLogoURL stores a new logo location for the company
func (r *CompanyRepositoryImpl) UpdateLogoURL(ctx context.Context, id uuid.UUID, url string) error {
	err := r.getDB(ctx).Model(&models.Company{}).
		Where("id = ?", id).
		Update("url_logo", url).Error
	if err != nil {
		return fmt.Errorf("failed to update company logo: %w", err)
	}
	return nil
}

// ByFilter retrieves companies based on filter criteria
func (r *CompanyRepositoryImpl) ByFilter(ctx context.Context, filter models.CompanyFilter, orderBy string, limit, offset int) ([]*models.Company, error) {
	db := r.getDB(ctx)

	var companies []*models.Company
	query := paginate(r.applyFilter(db, filter), orderBy, limit, offset)
	if err := query.Find(&companies).Error; err != nil {
		return nil, fmt.Errorf("failed to find companies: %w", err)
	}

	return companies, nil
}

// Count returns the number of companies matching the filter
func (r *CompanyRepositoryImpl) Count(ctx context.Context, filter models.CompanyFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.getDB(ctx).Model(&models.Company{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count companies: %w", err)
	}
	return count, nil
}

// Exists checks if any company matching the filter exists
func (r *CompanyRepositoryImpl) Exists(ctx context.Context, filter models.CompanyFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *CompanyRepositoryImpl) applyFilter(db *gorm.DB, filter models.CompanyFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if len(filter.IDs) > 0 {
		db = db.Where("id IN ?", filter.IDs)
	}
	if filter.ContactEmail != nil {
		db = db.Where("LOWER(email_contato) = LOWER(?)", *filter.ContactEmail)
	}
	if filter.IsActive != nil {
		db = db.Where("esta_ativa = ?", *filter.IsActive)
	}
	if filter.NameLike != nil {
		db = db.Where("nome ILIKE ?", "%"+*filter.NameLike+"%")
	}
	return db
}
