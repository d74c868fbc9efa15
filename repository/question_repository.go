package repository

import (
	"context"
	"fmt"

	"github.com/amirphl/pesquisa-campo/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionRepositoryImpl implements QuestionRepository interface
type QuestionRepositoryImpl struct {
	*BaseRepository[models.Question, models.QuestionFilter]
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &QuestionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Question, models.QuestionFilter](db),
	}
}

// DeleteByCampaignID removes every question of a campaign; options cascade
func (r *QuestionRepositoryImpl) DeleteByCampaignID(ctx context.Context, campaignID uuid.UUID) error {
	err := r.getDB(ctx).Where("id_campanha = ?", campaignID).Delete(&models.Question{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete campaign questions: %w", err)
	}
	return nil
}

// CorrelationIDs reads back (chave_correlacao, id) pairs for the campaign
func (r *QuestionRepositoryImpl) CorrelationIDs(ctx context.Context, campaignID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	type row struct {
		ID             uuid.UUID
		CorrelationKey uuid.UUID `gorm:"column:chave_correlacao"`
	}

	var rows []row
	err := r.getDB(ctx).Model(&models.Question{}).
		Select("id, chave_correlacao").
		Where("id_campanha = ?", campaignID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read question correlation keys: %w", err)
	}

	out := make(map[uuid.UUID]uuid.UUID, len(rows))
	for _, rw := range rows {
		out[rw.CorrelationKey] = rw.ID
	}
	return out, nil
}

// ByFilter retrieves questions based on filter criteria
func (r *QuestionRepositoryImpl) ByFilter(ctx context.Context, filter models.QuestionFilter, orderBy string, limit, offset int) ([]*models.Question, error) {
	db := r.getDB(ctx)

	var questions []*models.Question
	query := paginate(r.applyFilter(db, filter), orderBy, limit, offset)
	if err := query.Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to find questions: %w", err)
	}

	return questions, nil
}

// Count returns the number of questions matching the filter
func (r *QuestionRepositoryImpl) Count(ctx context.Context, filter models.QuestionFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.getDB(ctx).Model(&models.Question{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// Exists checks if any question matching the filter exists
func (r *QuestionRepositoryImpl) Exists(ctx context.Context, filter models.QuestionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *QuestionRepositoryImpl) applyFilter(db *gorm.DB, filter models.QuestionFilter) *gorm.DB {
	if filter.ID != nil {
		db = db.Where("id = ?", *filter.ID)
	}
	if filter.CampaignID != nil {
		db = db.Where("id_campanha = ?", *filter.CampaignID)
	}
	if len(filter.CampaignIDs) > 0 {
		db = db.Where("id_campanha IN ?", filter.CampaignIDs)
	}
	return db
}

// QuestionOptionRepositoryImpl implements QuestionOptionRepository interface
type QuestionOptionRepositoryImpl struct {
	*BaseRepository[models.QuestionOption, models.QuestionOptionFilter]
}

// NewQuestionOptionRepository creates a new question option repository
func NewQuestionOptionRepository(db *gorm.DB) QuestionOptionRepository {
	return &QuestionOptionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.QuestionOption, models.QuestionOptionFilter](db),
	}
}

// ByFilter retrieves options based on filter criteria
func (r *QuestionOptionRepositoryImpl) ByFilter(ctx context.Context, filter models.QuestionOptionFilter, orderBy string, limit, offset int) ([]*models.QuestionOption, error) {
	db := r.getDB(ctx)

	var options []*models.QuestionOption
	query := paginate(r.applyFilter(db, filter), orderBy, limit, offset)
	if err := query.Find(&options).Error; err != nil {
		return nil, fmt.Errorf("failed to find question options: %w", err)
	}

	return options, nil
}

// Count returns the number of options matching the filter
func (r *QuestionOptionRepositoryImpl) Count(ctx context.Context, filter models.QuestionOptionFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.getDB(ctx).Model(&models.QuestionOption{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count question options: %w", err)
	}
	return count, nil
}

// Exists checks if any option matching the filter exists
func (r *QuestionOptionRepositoryImpl) Exists(ctx context.Context, filter models.QuestionOptionFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *QuestionOptionRepositoryImpl) applyFilter(db *gorm.DB, filter models.QuestionOptionFilter) *gorm.DB {
	if filter.QuestionIDs != nil {
		db = db.Where("id_pergunta IN ?", filter.QuestionIDs)
	}
	return db
}
