// Package businessflow contains the core business logic and use cases for campaign workflows
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/repository"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CampaignFlow handles campaign reads and the transactional campaign save
type CampaignFlow interface {
	ListFullCampaigns(ctx context.Context, session *Session) (*dto.ListCampaignsResponse, error)
	GetCampaign(ctx context.Context, session *Session, campaignID string) (*dto.Campaign, error)
	SaveCampaign(ctx context.Context, session *Session, campaign *dto.Campaign) (*dto.SaveCampaignResponse, error)
	AvailableCampaigns(ctx context.Context, session *Session, search string) (*dto.ListAvailableCampaignsResponse, error)
}

// CampaignFlowImpl implements the campaign business flow
type CampaignFlowImpl struct {
	loader       campaignLoader
	companyRepo  repository.CompanyRepository
	responseRepo repository.SurveyResponseRepository
	tx           repository.Transactor
	audit        auditLogger
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	questionRepo repository.QuestionRepository,
	optionRepo repository.QuestionOptionRepository,
	companyLinkRepo repository.CampaignCompanyRepository,
	researcherLinkRepo repository.CampaignResearcherRepository,
	companyRepo repository.CompanyRepository,
	responseRepo repository.SurveyResponseRepository,
	auditRepo repository.AuditLogRepository,
	tx repository.Transactor,
) CampaignFlow {
	return &CampaignFlowImpl{
		loader: campaignLoader{
			campaignRepo:       campaignRepo,
			questionRepo:       questionRepo,
			optionRepo:         optionRepo,
			companyLinkRepo:    companyLinkRepo,
			researcherLinkRepo: researcherLinkRepo,
		},
		companyRepo:  companyRepo,
		responseRepo: responseRepo,
		tx:           tx,
		audit:        auditLogger{repo: auditRepo},
	}
}

// ListFullCampaigns returns every campaign with questions, options and links
func (s *CampaignFlowImpl) ListFullCampaigns(ctx context.Context, session *Session) (*dto.ListCampaignsResponse, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}

	campaigns, ix, err := s.loader.all(ctx)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to fetch campaigns", err)
	}

	return &dto.ListCampaignsResponse{Campaigns: ToCampaignDTOs(campaigns, ix)}, nil
}

// GetCampaign returns one campaign. Researchers may only read campaigns assigned to them.
func (s *CampaignFlowImpl) GetCampaign(ctx context.Context, session *Session, campaignID string) (*dto.Campaign, error) {
	if err := session.Require(models.UserRoleAdmin, models.UserRoleResearcher); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(campaignID)
	if err != nil {
		return nil, NewBusinessError("INVALID_CAMPAIGN_ID", "Invalid campaign id", ErrInvalidCampaignID)
	}

	campaign, ix, err := s.loader.one(ctx, id)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_FETCH_FAILED", "Failed to fetch campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}

	out := ix.ToCampaignDTO(campaign)
	if session.Role == models.UserRoleResearcher && !containsID(out.ResearcherIDs, session.ProfileID) {
		return nil, NewBusinessError("CAMPAIGN_NOT_ASSIGNED", "Campaign is not assigned to you", ErrCampaignNotAssigned)
	}

	return &out, nil
}

// SaveCampaign validates a draft and persists it with all children in one transaction.
// Updates must carry the version they were loaded with; a stale version is rejected.
func (s *CampaignFlowImpl) SaveCampaign(ctx context.Context, session *Session, draft *dto.Campaign) (*dto.SaveCampaignResponse, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}

	row, err := campaignRowFromDraft(draft)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", err)
	}
	questions, err := questionRowsFromDraft(draft.Questions)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", err)
	}
	companyIDs, err := parseIDs(draft.CompanyIDs)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Invalid company id", err)
	}
	researcherIDs, err := parseIDs(draft.ResearcherIDs)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Invalid researcher id", err)
	}

	isNew := row.ID == uuid.Nil
	err = s.tx.Do(ctx, func(txCtx context.Context) error {
		if isNew {
			if err := s.loader.campaignRepo.Save(txCtx, row); err != nil {
				return err
			}
		} else {
			existing, err := s.loader.campaignRepo.ByID(txCtx, row.ID)
			if err != nil {
				return err
			}
			if existing == nil {
				return ErrCampaignNotFound
			}
			if err := s.loader.campaignRepo.UpdateWithVersion(txCtx, row, draft.Version); err != nil {
				if errors.Is(err, repository.ErrStaleVersion) {
					return ErrCampaignVersionConflict
				}
				return err
			}
		}

		if err := s.replaceQuestions(txCtx, row.ID, questions); err != nil {
			return err
		}
		if err := s.checkAddedCompanies(txCtx, row.ID, companyIDs); err != nil {
			return err
		}
		if err := s.loader.companyLinkRepo.ReplaceForCampaign(txCtx, row.ID, companyIDs); err != nil {
			return err
		}
		return s.loader.researcherLinkRepo.ReplaceForCampaign(txCtx, row.ID, researcherIDs)
	})

	if err != nil {
		errMsg := err.Error()
		s.audit.record(ctx, session, models.AuditActionCampaignSaveFailed,
			fmt.Sprintf("Campaign save failed: %s", draft.Name), false, &errMsg)

		switch {
		case errors.Is(err, ErrCampaignVersionConflict):
			return nil, NewBusinessError("CAMPAIGN_VERSION_CONFLICT", "Campaign was modified by someone else; reload and try again", err)
		case errors.Is(err, ErrCampaignNotFound):
			return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", err)
		case errors.Is(err, ErrCompanyInactive):
			return nil, NewBusinessError("COMPANY_INACTIVE", "Inactive companies cannot be added to a campaign", err)
		case errors.Is(err, ErrCompanyNotFound):
			return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", err)
		}
		return nil, NewBusinessError("CAMPAIGN_SAVE_FAILED", "Failed to save campaign", err)
	}

	action := models.AuditActionCampaignUpdated
	if isNew {
		action = models.AuditActionCampaignCreated
	}
	s.audit.record(ctx, session, action, fmt.Sprintf("Campaign saved: %s", row.ID), true, nil)

	log.WithFields(log.Fields{
		"campaign_id": row.ID,
		"version":     row.Version,
		"questions":   len(questions),
		"created":     isNew,
	}).Info("campaign saved")

	return &dto.SaveCampaignResponse{
		Message:    "Campaign saved successfully",
		CampaignID: row.ID.String(),
		Version:    row.Version,
	}, nil
}

// draftQuestion keeps a question row together with the draft data needed after insert
type draftQuestion struct {
	draftID string
	row     *models.Question
	options []dto.QuestionOption
}

// checkAddedCompanies rejects companies that would be newly linked while inactive.
// Companies already linked to the campaign stay allowed.
func (s *CampaignFlowImpl) checkAddedCompanies(ctx context.Context, campaignID uuid.UUID, companyIDs []uuid.UUID) error {
	if len(companyIDs) == 0 {
		return nil
	}
	links, err := s.loader.companyLinkRepo.ByFilter(ctx, models.CampaignLinkFilter{CampaignID: &campaignID})
	if err != nil {
		return err
	}
	linked := make(map[uuid.UUID]struct{}, len(links))
	for _, l := range links {
		linked[l.CompanyID] = struct{}{}
	}

	var added []uuid.UUID
	for _, id := range companyIDs {
		if _, ok := linked[id]; !ok {
			added = append(added, id)
		}
	}
	if len(added) == 0 {
		return nil
	}

	companies, err := s.companyRepo.ByFilter(ctx, models.CompanyFilter{IDs: added}, "", 0, 0)
	if err != nil {
		return err
	}
	found := make(map[uuid.UUID]struct{}, len(companies))
	for _, c := range companies {
		if !c.IsActive {
			return fmt.Errorf("%w: %s", ErrCompanyInactive, c.Name)
		}
		found[c.ID] = struct{}{}
	}
	for _, id := range added {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("%w: %s", ErrCompanyNotFound, id)
		}
	}
	return nil
}

// replaceQuestions rewrites the questionnaire: delete, insert in display order,
// map draft ids to persisted ids through correlation keys, then insert options.
// A question whose draft id is already one of the campaign's question ids keeps it,
// so answers collected before the edit still point at it.
func (s *CampaignFlowImpl) replaceQuestions(ctx context.Context, campaignID uuid.UUID, questions []draftQuestion) error {
	current, err := s.loader.questionRepo.CorrelationIDs(ctx, campaignID)
	if err != nil {
		return err
	}
	kept := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		kept[id] = struct{}{}
	}

	if err := s.loader.questionRepo.DeleteByCampaignID(ctx, campaignID); err != nil {
		return err
	}
	if len(questions) == 0 {
		return nil
	}

	rows := make([]*models.Question, 0, len(questions))
	for _, q := range questions {
		q.row.CampaignID = campaignID
		q.row.ID = uuid.New()
		if id, err := uuid.Parse(q.draftID); err == nil {
			if _, ok := kept[id]; ok {
				q.row.ID = id
			}
		}
		rows = append(rows, q.row)
	}
	if err := s.loader.questionRepo.SaveBatch(ctx, rows); err != nil {
		return err
	}

	byKey, err := s.loader.questionRepo.CorrelationIDs(ctx, campaignID)
	if err != nil {
		return err
	}
	persisted := make(map[string]uuid.UUID, len(questions))
	for _, q := range questions {
		id, ok := byKey[q.row.CorrelationKey]
		if !ok {
			return fmt.Errorf("question %q was not persisted", q.draftID)
		}
		persisted[q.draftID] = id
	}

	var options []*models.QuestionOption
	for _, q := range questions {
		for i, opt := range q.options {
			options = append(options, resolveOption(persisted[q.draftID], i, opt, persisted))
		}
	}
	return s.loader.optionRepo.SaveBatch(ctx, options)
}

// resolveOption builds an option row. END_SURVEY sets only the end flag; a jump to
// a question missing from the saved questionnaire is stored as no jump.
func resolveOption(questionID uuid.UUID, order int, opt dto.QuestionOption, persisted map[string]uuid.UUID) *models.QuestionOption {
	row := &models.QuestionOption{
		QuestionID: questionID,
		Value:      opt.Value,
		Order:      order,
	}
	if opt.JumpTo == nil {
		return row
	}
	if *opt.JumpTo == dto.JumpToEnd {
		row.JumpToEnd = true
		return row
	}
	if target, ok := persisted[*opt.JumpTo]; ok {
		row.JumpToQuestionID = &target
	}
	return row
}

// AvailableCampaigns lists active campaigns assigned to the researcher whose name matches search
func (s *CampaignFlowImpl) AvailableCampaigns(ctx context.Context, session *Session, search string) (*dto.ListAvailableCampaignsResponse, error) {
	if err := session.Require(models.UserRoleResearcher); err != nil {
		return nil, err
	}

	ids, err := s.loader.idsForResearcher(ctx, session.ProfileID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to fetch campaigns", err)
	}
	campaigns, ix, err := s.loader.byIDs(ctx, ids)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to fetch campaigns", err)
	}
	counts, err := s.responseRepo.CountByCampaign(ctx, ids)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to count responses", err)
	}

	out := &dto.ListAvailableCampaignsResponse{Campaigns: []dto.AvailableCampaign{}}
	needle := strings.ToLower(strings.TrimSpace(search))
	for _, c := range campaigns {
		if !c.IsActive {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(c.Name), needle) {
			continue
		}
		count := counts[c.ID]
		out.Campaigns = append(out.Campaigns, dto.AvailableCampaign{
			Campaign:      ix.ToCampaignDTO(c),
			ResponseCount: count,
			Goal:          c.ResponseGoal,
			GoalMet:       GoalMet(count, c.ResponseGoal),
			Progress:      Progress(count, c.ResponseGoal),
		})
	}

	return out, nil
}

// Progress is the share of the goal reached, in percent, capped at 100. A non-positive goal reports 0.
func Progress(count int64, goal int) float64 {
	if goal <= 0 {
		return 0
	}
	p := float64(count) / float64(goal) * 100
	if p > 100 {
		return 100
	}
	return p
}

// GoalMet reports whether a positive goal has been reached
func GoalMet(count int64, goal int) bool {
	return goal > 0 && count >= int64(goal)
}

func campaignRowFromDraft(draft *dto.Campaign) (*models.Campaign, error) {
	if draft == nil || strings.TrimSpace(draft.Name) == "" {
		return nil, ErrCampaignNameRequired
	}
	if strings.TrimSpace(draft.Theme) == "" {
		return nil, ErrCampaignThemeRequired
	}
	startTime := nonEmpty(draft.StartTime)
	endTime := nonEmpty(draft.EndTime)
	if endTime != nil && startTime == nil {
		return nil, ErrCampaignEndTimeWithoutStart
	}

	startDate, err := parseDate(draft.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(draft.EndDate)
	if err != nil {
		return nil, err
	}

	row := &models.Campaign{
		Name:             strings.TrimSpace(draft.Name),
		Description:      draft.Description,
		Theme:            strings.TrimSpace(draft.Theme),
		IsActive:         draft.IsActive,
		StartDate:        startDate,
		EndDate:          endDate,
		StartTime:        startTime,
		EndTime:          endTime,
		LGPDText:         draft.LGPDText,
		CollectUserInfo:  draft.CollectUserInfo,
		ResponseGoal:     draft.ResponseGoal,
		FinalRedirectURL: nonEmpty(draft.FinalRedirectURL),
	}
	if row.ResponseGoal < 1 {
		row.ResponseGoal = models.DefaultResponseGoal
	}

	if draft.ID != "" {
		id, err := uuid.Parse(draft.ID)
		if err != nil {
			return nil, ErrInvalidCampaignID
		}
		if draft.Version < 1 {
			return nil, ErrCampaignVersionRequired
		}
		row.ID = id
		row.Version = draft.Version
	}

	return row, nil
}

func questionRowsFromDraft(questions []dto.Question) ([]draftQuestion, error) {
	out := make([]draftQuestion, 0, len(questions))
	seen := make(map[string]struct{}, len(questions))
	for i, q := range questions {
		qt := models.QuestionType(q.Type)
		if !qt.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidQuestionType, q.Type)
		}
		if q.ID != "" {
			if _, dup := seen[q.ID]; dup {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateQuestionID, q.ID)
			}
			seen[q.ID] = struct{}{}
		}
		out = append(out, draftQuestion{
			draftID: q.ID,
			row: &models.Question{
				Text:           q.Text,
				Type:           qt,
				Order:          i,
				CorrelationKey: uuid.New(),
			},
			options: q.Options,
		})
	}
	return out, nil
}

func parseDate(s *string) (*time.Time, error) {
	v := nonEmpty(s)
	if v == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *v)
	if err != nil {
		return nil, ErrInvalidCampaignDate
	}
	return &t, nil
}

func parseIDs(ids []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", raw, err)
		}
		out = append(out, id)
	}
	return out, nil
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return utils.ToPtr(strings.TrimSpace(*s))
}

func containsID(ids []string, id uuid.UUID) bool {
	want := id.String()
	for _, v := range ids {
		if v == want {
			return true
		}
	}
	return false
}
