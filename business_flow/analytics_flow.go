package businessflow

import (
	"context"
	"time"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/repository"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AnalyticsFlow builds dashboards from the full current data set
type AnalyticsFlow interface {
	AdminDashboard(ctx context.Context, session *Session) (*dto.AdminDashboardResponse, error)
	CompanyDashboard(ctx context.Context, session *Session) (*dto.CompanyDashboardResponse, error)
}

// AnalyticsFlowImpl implements AnalyticsFlow
type AnalyticsFlowImpl struct {
	loader       campaignLoader
	companyRepo  repository.CompanyRepository
	voucherRepo  repository.VoucherRepository
	responseRepo repository.SurveyResponseRepository
	answerRepo   repository.SurveyAnswerRepository
	location     *time.Location
}

// NewAnalyticsFlow creates a new analytics flow; loc decides calendar days of responses
func NewAnalyticsFlow(
	campaignRepo repository.CampaignRepository,
	questionRepo repository.QuestionRepository,
	optionRepo repository.QuestionOptionRepository,
	companyLinkRepo repository.CampaignCompanyRepository,
	researcherLinkRepo repository.CampaignResearcherRepository,
	companyRepo repository.CompanyRepository,
	voucherRepo repository.VoucherRepository,
	responseRepo repository.SurveyResponseRepository,
	answerRepo repository.SurveyAnswerRepository,
	loc *time.Location,
) AnalyticsFlow {
	if loc == nil {
		loc = time.UTC
	}
	return &AnalyticsFlowImpl{
		loader: campaignLoader{
			campaignRepo:       campaignRepo,
			questionRepo:       questionRepo,
			optionRepo:         optionRepo,
			companyLinkRepo:    companyLinkRepo,
			researcherLinkRepo: researcherLinkRepo,
		},
		companyRepo:  companyRepo,
		voucherRepo:  voucherRepo,
		responseRepo: responseRepo,
		answerRepo:   answerRepo,
		location:     loc,
	}
}

// AdminDashboard aggregates every campaign and response of the platform
func (s *AnalyticsFlowImpl) AdminDashboard(ctx context.Context, session *Session) (*dto.AdminDashboardResponse, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}

	var (
		campaigns       []*models.Campaign
		ix              *CampaignIndex
		responses       []dto.SurveyResponse
		activeCompanies int64
		vouchers        int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		campaigns, ix, err = s.loader.all(gctx)
		return err
	})
	g.Go(func() (err error) {
		responses, err = fetchResponses(gctx, s.responseRepo, s.answerRepo, models.SurveyResponseFilter{})
		return err
	})
	g.Go(func() (err error) {
		activeCompanies, err = s.companyRepo.Count(gctx, models.CompanyFilter{IsActive: utils.ToPtr(true)})
		return err
	})
	g.Go(func() (err error) {
		vouchers, err = s.voucherRepo.Count(gctx, models.VoucherFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, NewBusinessError("DASHBOARD_FAILED", "Failed to load dashboard data", err)
	}

	views := ToCampaignDTOs(campaigns, ix)
	return &dto.AdminDashboardResponse{
		ActiveCompanies: int(activeCompanies),
		TotalCampaigns:  len(views),
		TotalVouchers:   int(vouchers),
		TotalResponses:  len(responses),
		Performance:     CampaignPerformance(views, responses),
		Themes:          ThemeDistribution(views),
		ResponsesPerDay: ResponsesPerDay(responses, s.location),
	}, nil
}

// CompanyDashboard aggregates the campaigns the session's company participates in
func (s *AnalyticsFlowImpl) CompanyDashboard(ctx context.Context, session *Session) (*dto.CompanyDashboardResponse, error) {
	if err := session.Require(models.UserRoleCompany); err != nil {
		return nil, err
	}

	company, campaigns, responses, err := companyScope(ctx, s.loader, s.companyRepo, s.responseRepo, s.answerRepo, session.ProfileID)
	if err != nil {
		return nil, err
	}

	return &dto.CompanyDashboardResponse{
		Company:        ToCompanyDTO(company),
		TotalCampaigns: len(campaigns),
		TotalResponses: len(responses),
		Satisfaction:   SatisfactionDistribution(campaigns, responses),
		Ages:           AgeDistribution(responses),
	}, nil
}

// companyScope loads a company with its campaigns and the responses to them
func companyScope(
	ctx context.Context,
	loader campaignLoader,
	companyRepo repository.CompanyRepository,
	responseRepo repository.SurveyResponseRepository,
	answerRepo repository.SurveyAnswerRepository,
	companyID uuid.UUID,
) (*models.Company, []dto.Campaign, []dto.SurveyResponse, error) {
	company, err := companyRepo.ByID(ctx, companyID)
	if err != nil {
		return nil, nil, nil, NewBusinessError("COMPANY_FETCH_FAILED", "Failed to fetch company", err)
	}
	if company == nil {
		return nil, nil, nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}

	ids, err := loader.idsForCompany(ctx, companyID)
	if err != nil {
		return nil, nil, nil, NewBusinessError("DASHBOARD_FAILED", "Failed to load company campaigns", err)
	}

	var (
		rows      []*models.Campaign
		ix        *CampaignIndex
		responses []dto.SurveyResponse
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, ix, err = loader.byIDs(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		responses, err = fetchResponses(gctx, responseRepo, answerRepo, models.SurveyResponseFilter{CampaignIDs: ids})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, nil, NewBusinessError("DASHBOARD_FAILED", "Failed to load company data", err)
	}

	return company, ToCampaignDTOs(rows, ix), responses, nil
}
