package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/pesquisa-campo/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CampaignCompanyRepositoryImpl implements CampaignCompanyRepository interface
type CampaignCompanyRepositoryImpl struct {
	*BaseRepository[models.CampaignCompany, models.CampaignLinkFilter]
}

// NewCampaignCompanyRepository creates a new campaign/company link repository
func NewCampaignCompanyRepository(db *gorm.DB) CampaignCompanyRepository {
	return &CampaignCompanyRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CampaignCompany, models.CampaignLinkFilter](db),
	}
}

func (r *CampaignCompanyRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignLinkFilter) ([]*models.CampaignCompany, error) {
	var links []*models.CampaignCompany
	if err := applyLinkFilter(r.getDB(ctx), filter, "id_empresa").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to find campaign companies: %w", err)
	}
	return links, nil
}

// ReplaceForCampaign deletes every link of the campaign then inserts the given set
func (r *CampaignCompanyRepositoryImpl) ReplaceForCampaign(ctx context.Context, campaignID uuid.UUID, companyIDs []uuid.UUID) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finish(db, shouldCommit, &err)

	if err = db.Where("id_campanha = ?", campaignID).Delete(&models.CampaignCompany{}).Error; err != nil {
		err = fmt.Errorf("failed to delete campaign companies: %w", err)
		return err
	}
	if len(companyIDs) == 0 {
		return nil
	}

	links := make([]*models.CampaignCompany, 0, len(companyIDs))
	for _, id := range uniqueIDs(companyIDs) {
		links = append(links, &models.CampaignCompany{CampaignID: campaignID, CompanyID: id})
	}
	if err = db.Create(&links).Error; err != nil {
		err = fmt.Errorf("failed to insert campaign companies: %w", err)
		return err
	}
	return nil
}

// CampaignResearcherRepositoryImpl implements CampaignResearcherRepository interface
type CampaignResearcherRepositoryImpl struct {
	*BaseRepository[models.CampaignResearcher, models.CampaignLinkFilter]
}

// NewCampaignResearcherRepository creates a new campaign/researcher link repository
func NewCampaignResearcherRepository(db *gorm.DB) CampaignResearcherRepository {
	return &CampaignResearcherRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CampaignResearcher, models.CampaignLinkFilter](db),
	}
}

func (r *CampaignResearcherRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignLinkFilter) ([]*models.CampaignResearcher, error) {
	var links []*models.CampaignResearcher
	if err := applyLinkFilter(r.getDB(ctx), filter, "id_pesquisador").Find(&links).Error; err != nil {
		return nil, fmt.Errorf("failed to find campaign researchers: %w", err)
	}
	return links, nil
}

// ReplaceForCampaign deletes every link of the campaign then inserts the given set
func (r *CampaignResearcherRepositoryImpl) ReplaceForCampaign(ctx context.Context, campaignID uuid.UUID, researcherIDs []uuid.UUID) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finish(db, shouldCommit, &err)

	if err = db.Where("id_campanha = ?", campaignID).Delete(&models.CampaignResearcher{}).Error; err != nil {
		err = fmt.Errorf("failed to delete campaign researchers: %w", err)
		return err
	}
	if len(researcherIDs) == 0 {
		return nil
	}

	links := make([]*models.CampaignResearcher, 0, len(researcherIDs))
	for _, id := range uniqueIDs(researcherIDs) {
		links = append(links, &models.CampaignResearcher{CampaignID: campaignID, ResearcherID: id})
	}
	if err = db.Create(&links).Error; err != nil {
		err = fmt.Errorf("failed to insert campaign researchers: %w", err)
		return err
	}
	return nil
}

func applyLinkFilter(db *gorm.DB, filter models.CampaignLinkFilter, memberColumn string) *gorm.DB {
	if filter.CampaignID != nil {
		db = db.Where("id_campanha = ?", *filter.CampaignID)
	}
	if len(filter.CampaignIDs) > 0 {
		db = db.Where("id_campanha IN ?", filter.CampaignIDs)
	}
	if filter.MemberID != nil {
		db = db.Where(memberColumn+" = ?", *filter.MemberID)
	}
	return db
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
