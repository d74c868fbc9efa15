package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/utils"
	"gorm.io/gorm"
)

// CampaignRepositoryImpl implements the CampaignRepository interface
type CampaignRepositoryImpl struct {
	*BaseRepository[models.Campaign, models.CampaignFilter]
}

// NewCampaignRepository creates a new campaign repository
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &CampaignRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Campaign, models.CampaignFilter](db),
	}
}

// UpdateWithVersion performs a compare-and-set update on versao
func (r *CampaignRepositoryImpl) UpdateWithVersion(ctx context.Context, campaign *models.Campaign, expectedVersion int) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finish(db, shouldCommit, &err)

	now := utils.UTCNow()
	res := db.Model(&models.Campaign{}).
		Where("id = ? AND versao = ?", campaign.ID, expectedVersion).
		Updates(map[string]any{
			"nome":                       campaign.Name,
			"descricao":                  campaign.Description,
			"tema":                       campaign.Theme,
			"esta_ativa":                 campaign.IsActive,
			"data_inicio":                campaign.StartDate,
			"data_fim":                   campaign.EndDate,
			"hora_inicio":                campaign.StartTime,
			"hora_fim":                   campaign.EndTime,
			"texto_lgpd":                 campaign.LGPDText,
			"coletar_info_usuario":       campaign.CollectUserInfo,
			"meta_respostas":             campaign.ResponseGoal,
			"url_redirecionamento_final": campaign.FinalRedirectURL,
			"versao":                     expectedVersion + 1,
			"atualizado_em":              now,
		})
	if res.Error != nil {
		err = fmt.Errorf("failed to update campaign: %w", res.Error)
		return err
	}
	if res.RowsAffected == 0 {
		err = ErrStaleVersion
		return err
	}

	campaign.Version = expectedVersion + 1
	campaign.UpdatedAt = &now
	return nil
}

// ByFilter retrieves campaigns based on filter criteria
func (r *CampaignRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignFilter, orderBy string, limit, offset int) ([]*models.Campaign, error) {
	db := r.getDB(ctx)

	var campaigns []*models.Campaign
	query := paginate(r.applyFilter(db, filter), orderBy, limit, offset)
	if err := query.Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("failed to find campaigns: %w", err)
	}

	return campaigns, nil
}

// Count returns the number of campaigns matching the filter
func (r *CampaignRepositoryImpl) Count(ctx context.Context, filter models.CampaignFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.getDB(ctx).Model(&models.Campaign{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count campaigns: %w", err)
	}
	return count, nil
}

// Exists checks if any campaign matching the filter exists
func (r *CampaignRepositoryImpl) Exists(ctx context.Context, filter models.CampaignFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *CampaignRepositoryImpl) applyFilter(db *gorm.DB, filter models.CampaignFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if len(filter.IDs) > 0 {
		db = db.Where("id IN ?", filter.IDs)
	}
	if filter.IsActive != nil {
		db = db.Where("esta_ativa = ?", *filter.IsActive)
	}
	if filter.Theme != nil {
		db = db.Where("tema = ?", *filter.Theme)
	}
	if filter.NameLike != nil {
		db = db.Where("nome ILIKE ?", "%"+*filter.NameLike+"%")
	}
	return db
}
