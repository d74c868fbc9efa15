package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/pesquisa-campo/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VoucherRepositoryImpl implements VoucherRepository interface
type VoucherRepositoryImpl struct {
	*BaseRepository[models.Voucher, models.VoucherFilter]
}

// NewVoucherRepository creates a new voucher repository
func NewVoucherRepository(db *gorm.DB) VoucherRepository {
	return &VoucherRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Voucher, models.VoucherFilter](db),
	}
}

// Redeem increments quantidade_usada only while it is below quantidade_total
func (r *VoucherRepositoryImpl) Redeem(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.getDB(ctx).Model(&models.Voucher{}).
		Where("id = ? AND esta_ativo = ? AND quantidade_usada < quantidade_total", id, true).
		Update("quantidade_usada", gorm.Expr("quantidade_usada + 1"))
	if res.Error != nil {
		return false, fmt.Errorf("failed to redeem voucher: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ByFilter retrieves vouchers based on filter criteria
func (r *VoucherRepositoryImpl) ByFilter(ctx context.Context, filter models.VoucherFilter, orderBy string, limit, offset int) ([]*models.Voucher, error) {
	db := r.getDB(ctx)

	var vouchers []*models.Voucher
	query := paginate(r.applyFilter(db, filter), orderBy, limit, offset)
	if err := query.Find(&vouchers).Error; err != nil {
		return nil, fmt.Errorf("failed to find vouchers: %w", err)
	}

	return vouchers, nil
}

// Count returns the number of vouchers matching the filter
func (r *VoucherRepositoryImpl) Count(ctx context.Context, filter models.VoucherFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.getDB(ctx).Model(&models.Voucher{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count vouchers: %w", err)
	}
	return count, nil
}

// Exists checks if any voucher matching the filter exists
func (r *VoucherRepositoryImpl) Exists(ctx context.Context, filter models.VoucherFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *VoucherRepositoryImpl) applyFilter(db *gorm.DB, filter models.VoucherFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.CompanyID != nil {
		db = db.Where("id_empresa = ?", *filter.CompanyID)
	}
	if filter.IsActive != nil {
		db = db.Where("esta_ativo = ?", *filter.IsActive)
	}
	return db
}
