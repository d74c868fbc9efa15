// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/pesquisa-campo/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uuid.UUID) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// AdminRepository defines operations for administrators
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByEmail(ctx context.Context, email string) (*models.Admin, error)
}

// CompanyRepository defines operations for companies
type CompanyRepository interface {
	Repository[models.Company, models.CompanyFilter]
	ByContactEmail(ctx context.Context, email string) (*models.Company, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*models.Company, error)
	UpdateLogoURL(ctx context.Context, id uuid.UUID, url string) error
}

// ResearcherRepository defines operations for field researchers
type ResearcherRepository interface {
	Repository[models.Researcher, models.ResearcherFilter]
	ByEmail(ctx context.Context, email string) (*models.Researcher, error)
}

// VoucherRepository defines operations for vouchers
type VoucherRepository interface {
	Repository[models.Voucher, models.VoucherFilter]
	// Redeem consumes one unit; it returns false when the voucher is exhausted or inactive
	Redeem(ctx context.Context, id uuid.UUID) (bool, error)
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	// UpdateWithVersion writes the campaign only if its stored version equals expectedVersion.
	// On success campaign.Version holds the new version; otherwise ErrStaleVersion is returned.
	UpdateWithVersion(ctx context.Context, campaign *models.Campaign, expectedVersion int) error
}

// QuestionRepository defines operations for campaign questions
type QuestionRepository interface {
	Repository[models.Question, models.QuestionFilter]
	DeleteByCampaignID(ctx context.Context, campaignID uuid.UUID) error
	// CorrelationIDs maps each question's correlation key to its persisted id for one campaign
	CorrelationIDs(ctx context.Context, campaignID uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
}

// QuestionOptionRepository defines operations for question options
type QuestionOptionRepository interface {
	Repository[models.QuestionOption, models.QuestionOptionFilter]
}

// CampaignCompanyRepository defines operations for the campaign/company link table
type CampaignCompanyRepository interface {
	ByFilter(ctx context.Context, filter models.CampaignLinkFilter) ([]*models.CampaignCompany, error)
	ReplaceForCampaign(ctx context.Context, campaignID uuid.UUID, companyIDs []uuid.UUID) error
}

// CampaignResearcherRepository defines operations for the campaign/researcher link table
type CampaignResearcherRepository interface {
	ByFilter(ctx context.Context, filter models.CampaignLinkFilter) ([]*models.CampaignResearcher, error)
	ReplaceForCampaign(ctx context.Context, campaignID uuid.UUID, researcherIDs []uuid.UUID) error
}

// SurveyResponseRepository defines operations for survey response headers
type SurveyResponseRepository interface {
	Repository[models.SurveyResponse, models.SurveyResponseFilter]
	CountByCampaign(ctx context.Context, campaignIDs []uuid.UUID) (map[uuid.UUID]int64, error)
}

// SurveyAnswerRepository defines operations for individual answers
type SurveyAnswerRepository interface {
	Repository[models.SurveyAnswer, models.SurveyAnswerFilter]
}

// LocationPointRepository defines operations for the append-only location feed
type LocationPointRepository interface {
	Save(ctx context.Context, point *models.LocationPoint) error
	// Route returns the researcher's points with timestamp in [from, to], oldest first
	Route(ctx context.Context, researcherID uuid.UUID, from, to time.Time) ([]*models.LocationPoint, error)
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Save(ctx context.Context, entity *models.AuditLog) error
	ByFilter(ctx context.Context, filter models.AuditLogFilter, orderBy string, limit, offset int) ([]*models.AuditLog, error)
}
