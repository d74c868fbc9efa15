package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/pesquisa-campo/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SurveyResponseRepositoryImpl implements SurveyResponseRepository interface
type SurveyResponseRepositoryImpl struct {
	*BaseRepository[models.SurveyResponse, models.SurveyResponseFilter]
}

// NewSurveyResponseRepository creates a new survey response repository
func NewSurveyResponseRepository(db *gorm.DB) SurveyResponseRepository {
	return &SurveyResponseRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SurveyResponse, models.SurveyResponseFilter](db),
	}
}

// CountByCampaign returns the number of responses per campaign id
func (r *SurveyResponseRepositoryImpl) CountByCampaign(ctx context.Context, campaignIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(campaignIDs))
	if len(campaignIDs) == 0 {
		return out, nil
	}

	type row struct {
		CampaignID uuid.UUID `gorm:"column:id_campanha"`
		Total      int64     `gorm:"column:total"`
	}
	var rows []row
	err := r.getDB(ctx).Model(&models.SurveyResponse{}).
		Select("id_campanha, COUNT(*) AS total").
		Where("id_campanha IN ?", campaignIDs).
		Group("id_campanha").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count responses by campaign: %w", err)
	}

	for _, rw := range rows {
		out[rw.CampaignID] = rw.Total
	}
	return out, nil
}

// ByFilter retrieves survey responses based on filter criteria
func (r *SurveyResponseRepositoryImpl) ByFilter(ctx context.Context, filter models.SurveyResponseFilter, orderBy string, limit, offset int) ([]*models.SurveyResponse, error) {
	db := r.getDB(ctx)

	var responses []*models.SurveyResponse
	query := paginate(r.applyFilter(db, filter), orderBy, limit, offset)
	if err := query.Find(&responses).Error; err != nil {
		return nil, fmt.Errorf("failed to find survey responses: %w", err)
	}

	return responses, nil
}

// Count returns the number of survey responses matching the filter
func (r *SurveyResponseRepositoryImpl) Count(ctx context.Context, filter models.SurveyResponseFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.getDB(ctx).Model(&models.SurveyResponse{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count survey responses: %w", err)
	}
	return count, nil
}

// Exists checks if any survey response matching the filter exists
func (r *SurveyResponseRepositoryImpl) Exists(ctx context.Context, filter models.SurveyResponseFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SurveyResponseRepositoryImpl) applyFilter(db *gorm.DB, filter models.SurveyResponseFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.CampaignIDs != nil {
		db = db.Where("id_campanha IN ?", filter.CampaignIDs)
	}
	if filter.ResearcherID != nil {
		db = db.Where("id_pesquisador = ?", *filter.ResearcherID)
	}
	if filter.SubmittedAfter != nil {
		db = db.Where("data_envio >= ?", *filter.SubmittedAfter)
	}
	if filter.SubmittedBefore != nil {
		db = db.Where("data_envio < ?", *filter.SubmittedBefore)
	}
	return db
}

// SurveyAnswerRepositoryImpl implements SurveyAnswerRepository interface
type SurveyAnswerRepositoryImpl struct {
	*BaseRepository[models.SurveyAnswer, models.SurveyAnswerFilter]
}

// NewSurveyAnswerRepository creates a new survey answer repository
func NewSurveyAnswerRepository(db *gorm.DB) SurveyAnswerRepository {
	return &SurveyAnswerRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SurveyAnswer, models.SurveyAnswerFilter](db),
	}
}

// ByFilter retrieves answers based on filter criteria
func (r *SurveyAnswerRepositoryImpl) ByFilter(ctx context.Context, filter models.SurveyAnswerFilter, orderBy string, limit, offset int) ([]*models.SurveyAnswer, error) {
	db := r.getDB(ctx)

	var answers []*models.SurveyAnswer
	query := paginate(r.applyFilter(db, filter), orderBy, limit, offset)
	if err := query.Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("failed to find survey answers: %w", err)
	}

	return answers, nil
}

// Count returns the number of answers matching the filter
func (r *SurveyAnswerRepositoryImpl) Count(ctx context.Context, filter models.SurveyAnswerFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.getDB(ctx).Model(&models.SurveyAnswer{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count survey answers: %w", err)
	}
	return count, nil
}

// Exists checks if any answer matching the filter exists
func (r *SurveyAnswerRepositoryImpl) Exists(ctx context.Context, filter models.SurveyAnswerFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *SurveyAnswerRepositoryImpl) applyFilter(db *gorm.DB, filter models.SurveyAnswerFilter) *gorm.DB {
	if filter.ResponseIDs != nil {
		db = db.Where("id_resposta_pesquisa IN ?", filter.ResponseIDs)
	}
	return db
}
