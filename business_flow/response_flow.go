package businessflow

import (
	"context"
	"fmt"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/repository"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ResponseFlow runs surveys and stores their responses
type ResponseFlow interface {
	NextQuestion(ctx context.Context, session *Session, campaignID string, req *dto.NextQuestionRequest) (*dto.NextQuestionResponse, error)
	SubmitResponse(ctx context.Context, session *Session, req *dto.SubmitResponseRequest) (*dto.SubmitResponseResponse, error)
	ListResponses(ctx context.Context, session *Session) (*dto.ListResponsesResponse, error)
}

// ResponseFlowImpl implements ResponseFlow
type ResponseFlowImpl struct {
	campaigns    CampaignFlow
	loader       campaignLoader
	responseRepo repository.SurveyResponseRepository
	answerRepo   repository.SurveyAnswerRepository
	tx           repository.Transactor
	audit        auditLogger
}

// NewResponseFlow creates a new response flow instance
func NewResponseFlow(
	campaigns CampaignFlow,
	campaignRepo repository.CampaignRepository,
	questionRepo repository.QuestionRepository,
	optionRepo repository.QuestionOptionRepository,
	companyLinkRepo repository.CampaignCompanyRepository,
	researcherLinkRepo repository.CampaignResearcherRepository,
	responseRepo repository.SurveyResponseRepository,
	answerRepo repository.SurveyAnswerRepository,
	auditRepo repository.AuditLogRepository,
	tx repository.Transactor,
) ResponseFlow {
	return &ResponseFlowImpl{
		campaigns: campaigns,
		loader: campaignLoader{
			campaignRepo:       campaignRepo,
			questionRepo:       questionRepo,
			optionRepo:         optionRepo,
			companyLinkRepo:    companyLinkRepo,
			researcherLinkRepo: researcherLinkRepo,
		},
		responseRepo: responseRepo,
		answerRepo:   answerRepo,
		tx:           tx,
		audit:        auditLogger{repo: auditRepo},
	}
}

// NextQuestion resolves the next step of a running survey for the researcher
func (s *ResponseFlowImpl) NextQuestion(ctx context.Context, session *Session, campaignID string, req *dto.NextQuestionRequest) (*dto.NextQuestionResponse, error) {
	campaign, err := s.campaigns.GetCampaign(ctx, session, campaignID)
	if err != nil {
		return nil, err
	}

	next, err := NextQuestion(campaign, req.CurrentQuestionID, req.Answer)
	if err != nil {
		return nil, NewBusinessError("QUESTION_NOT_FOUND", "Question not found in campaign", err)
	}
	return next, nil
}

// SubmitResponse stores a completed survey with its answers in one transaction
func (s *ResponseFlowImpl) SubmitResponse(ctx context.Context, session *Session, req *dto.SubmitResponseRequest) (*dto.SubmitResponseResponse, error) {
	if err := session.Require(models.UserRoleResearcher); err != nil {
		return nil, err
	}

	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		return nil, NewBusinessError("INVALID_CAMPAIGN_ID", "Invalid campaign id", ErrInvalidCampaignID)
	}

	campaign, ix, err := s.loader.one(ctx, campaignID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_FETCH_FAILED", "Failed to fetch campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}
	view := ix.ToCampaignDTO(campaign)
	if !containsID(view.ResearcherIDs, session.ProfileID) {
		return nil, NewBusinessError("CAMPAIGN_NOT_ASSIGNED", "Campaign is not assigned to you", ErrCampaignNotAssigned)
	}
	if !campaign.IsActive {
		return nil, NewBusinessError("CAMPAIGN_INACTIVE", "Campaign is not active", ErrCampaignInactive)
	}

	known := make(map[string]struct{}, len(view.Questions))
	for _, q := range view.Questions {
		known[q.ID] = struct{}{}
	}
	for _, a := range req.Answers {
		if _, ok := known[a.QuestionID]; !ok {
			return nil, NewBusinessError("ANSWER_QUESTION_MISMATCH", "Answer references an unknown question", ErrAnswerQuestionMismatch)
		}
	}

	header := &models.SurveyResponse{
		CampaignID:   campaignID,
		ResearcherID: session.ProfileID,
		SubmittedAt:  utils.UTCNow(),
	}
	if campaign.CollectUserInfo {
		header.RespondentName = nonEmpty(req.UserName)
		header.RespondentPhone = nonEmpty(req.UserPhone)
		header.RespondentAge = req.UserAge
	}

	err = s.tx.Do(ctx, func(txCtx context.Context) error {
		if err := s.responseRepo.Save(txCtx, header); err != nil {
			return err
		}
		answers := make([]*models.SurveyAnswer, 0, len(req.Answers))
		for i, a := range req.Answers {
			answers = append(answers, &models.SurveyAnswer{
				ResponseID: header.ID,
				QuestionID: uuid.MustParse(a.QuestionID),
				Value:      a.Value,
				Order:      i,
			})
		}
		return s.answerRepo.SaveBatch(txCtx, answers)
	})
	if err != nil {
		return nil, NewBusinessError("RESPONSE_SAVE_FAILED", "Failed to save survey response", err)
	}

	s.audit.record(ctx, session, models.AuditActionSurveyResponseCreated,
		fmt.Sprintf("Survey response %s for campaign %s", header.ID, campaignID), true, nil)

	return &dto.SubmitResponseResponse{
		Message:    "Survey response saved successfully",
		ResponseID: header.ID.String(),
	}, nil
}

// ListResponses returns every response joined with its answers
func (s *ResponseFlowImpl) ListResponses(ctx context.Context, session *Session) (*dto.ListResponsesResponse, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}

	responses, err := fetchResponses(ctx, s.responseRepo, s.answerRepo, models.SurveyResponseFilter{})
	if err != nil {
		return nil, NewBusinessError("RESPONSE_LIST_FAILED", "Failed to fetch responses", err)
	}
	return &dto.ListResponsesResponse{Responses: responses}, nil
}

// fetchResponses loads headers and answers concurrently and joins them.
// When the filter is scoped to campaigns, answers are restricted to the matching headers.
func fetchResponses(ctx context.Context, responseRepo repository.SurveyResponseRepository, answerRepo repository.SurveyAnswerRepository, filter models.SurveyResponseFilter) ([]dto.SurveyResponse, error) {
	if filter.CampaignIDs != nil && len(filter.CampaignIDs) == 0 {
		return []dto.SurveyResponse{}, nil
	}

	var (
		headers []*models.SurveyResponse
		answers []*models.SurveyAnswer
	)

	if filter.CampaignIDs == nil && filter.ResearcherID == nil {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			headers, err = responseRepo.ByFilter(gctx, filter, "data_envio ASC", 0, 0)
			return err
		})
		g.Go(func() (err error) {
			answers, err = answerRepo.ByFilter(gctx, models.SurveyAnswerFilter{}, "ordem ASC", 0, 0)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return ToSurveyResponseDTOs(headers, answers), nil
	}

	headers, err := responseRepo.ByFilter(ctx, filter, "data_envio ASC", 0, 0)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(headers))
	for _, h := range headers {
		ids = append(ids, h.ID)
	}
	answers, err = answerRepo.ByFilter(ctx, models.SurveyAnswerFilter{ResponseIDs: ids}, "ordem ASC", 0, 0)
	if err != nil {
		return nil, err
	}
	return ToSurveyResponseDTOs(headers, answers), nil
}
