package businessflow

import (
	"context"
	"errors"
	"slices"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/app/services"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/repository"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CampaignEditorFlow drives the three-step campaign editor over drafts kept in a DraftStore
type CampaignEditorFlow interface {
	OpenDraft(ctx context.Context, session *Session, req *dto.OpenDraftRequest) (*dto.CampaignDraft, error)
	GetDraft(ctx context.Context, session *Session, draftID string) (*dto.CampaignDraft, error)
	MoveStep(ctx context.Context, session *Session, draftID string, req *dto.DraftStepRequest) (*dto.CampaignDraft, error)
	UpdateDetails(ctx context.Context, session *Session, draftID string, req *dto.UpdateDraftDetailsRequest) (*dto.CampaignDraft, error)
	SetStartTime(ctx context.Context, session *Session, draftID string, req *dto.ToggleTimeRequest) (*dto.CampaignDraft, error)
	SetEndTime(ctx context.Context, session *Session, draftID string, req *dto.ToggleTimeRequest) (*dto.CampaignDraft, error)
	SetQuestions(ctx context.Context, session *Session, draftID string, req *dto.SetDraftQuestionsRequest) (*dto.CampaignDraft, error)
	ToggleCompany(ctx context.Context, session *Session, draftID, companyID string) (*dto.CampaignDraft, error)
	ToggleResearcher(ctx context.Context, session *Session, draftID, researcherID string) (*dto.CampaignDraft, error)
	TeamCandidates(ctx context.Context, session *Session, draftID, companyQuery, researcherQuery string) (*dto.TeamCandidatesResponse, error)
	RequestConfirmation(ctx context.Context, session *Session, draftID string, req *dto.RequestConfirmationRequest) (*dto.CampaignDraft, error)
	Confirm(ctx context.Context, session *Session, draftID string) (*dto.ConfirmationResult, error)
	Cancel(ctx context.Context, session *Session, draftID string) (*dto.CampaignDraft, error)
	Save(ctx context.Context, session *Session, draftID string) (*dto.SaveCampaignResponse, error)
}

// CampaignEditorFlowImpl implements the campaign editor flow
type CampaignEditorFlowImpl struct {
	drafts         services.DraftStore
	campaigns      CampaignFlow
	directory      DirectoryFlow
	companyRepo    repository.CompanyRepository
	researcherRepo repository.ResearcherRepository
	lgpdText       string
}

// NewCampaignEditorFlow creates a new campaign editor flow instance
func NewCampaignEditorFlow(
	drafts services.DraftStore,
	campaigns CampaignFlow,
	directory DirectoryFlow,
	companyRepo repository.CompanyRepository,
	researcherRepo repository.ResearcherRepository,
	lgpdText string,
) CampaignEditorFlow {
	return &CampaignEditorFlowImpl{
		drafts:         drafts,
		campaigns:      campaigns,
		directory:      directory,
		companyRepo:    companyRepo,
		researcherRepo: researcherRepo,
		lgpdText:       lgpdText,
	}
}

func (f *CampaignEditorFlowImpl) OpenDraft(ctx context.Context, session *Session, req *dto.OpenDraftRequest) (*dto.CampaignDraft, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}

	var draft *dto.CampaignDraft
	if req != nil && req.CampaignID != "" {
		campaign, err := f.campaigns.GetCampaign(ctx, session, req.CampaignID)
		if err != nil {
			return nil, err
		}
		draft = DraftFromCampaign(*campaign)
	} else {
		draft = NewDraft(f.lgpdText)
	}

	if err := f.store(ctx, session, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (f *CampaignEditorFlowImpl) GetDraft(ctx context.Context, session *Session, draftID string) (*dto.CampaignDraft, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}
	return f.load(ctx, session, draftID)
}

func (f *CampaignEditorFlowImpl) MoveStep(ctx context.Context, session *Session, draftID string, req *dto.DraftStepRequest) (*dto.CampaignDraft, error) {
	return f.mutate(ctx, session, draftID, func(e Editor) error {
		switch req.Action {
		case "next":
			e.Next()
		case "back":
			e.Back()
		default:
			return e.GoTo(req.Step)
		}
		return nil
	})
}

func (f *CampaignEditorFlowImpl) UpdateDetails(ctx context.Context, session *Session, draftID string, req *dto.UpdateDraftDetailsRequest) (*dto.CampaignDraft, error) {
	return f.mutate(ctx, session, draftID, func(e Editor) error {
		return e.UpdateDetails(req)
	})
}

func (f *CampaignEditorFlowImpl) SetStartTime(ctx context.Context, session *Session, draftID string, req *dto.ToggleTimeRequest) (*dto.CampaignDraft, error) {
	return f.mutate(ctx, session, draftID, func(e Editor) error {
		e.SetStartTime(req.Enabled, req.Value)
		return nil
	})
}

func (f *CampaignEditorFlowImpl) SetEndTime(ctx context.Context, session *Session, draftID string, req *dto.ToggleTimeRequest) (*dto.CampaignDraft, error) {
	return f.mutate(ctx, session, draftID, func(e Editor) error {
		return e.SetEndTime(req.Enabled, req.Value)
	})
}

func (f *CampaignEditorFlowImpl) SetQuestions(ctx context.Context, session *Session, draftID string, req *dto.SetDraftQuestionsRequest) (*dto.CampaignDraft, error) {
	return f.mutate(ctx, session, draftID, func(e Editor) error {
		return e.SetQuestions(req.Questions)
	})
}

// ToggleCompany deselects a selected company, or selects an existing active one
func (f *CampaignEditorFlowImpl) ToggleCompany(ctx context.Context, session *Session, draftID, companyID string) (*dto.CampaignDraft, error) {
	return f.mutate(ctx, session, draftID, func(e Editor) error {
		if slices.Contains(e.Draft.Campaign.CompanyIDs, companyID) {
			return e.ToggleCompany(dto.Company{ID: companyID})
		}
		company, err := f.company(ctx, companyID)
		if err != nil {
			return err
		}
		return e.ToggleCompany(ToCompanyDTO(company))
	})
}

func (f *CampaignEditorFlowImpl) ToggleResearcher(ctx context.Context, session *Session, draftID, researcherID string) (*dto.CampaignDraft, error) {
	return f.mutate(ctx, session, draftID, func(e Editor) error {
		if !slices.Contains(e.Draft.Campaign.ResearcherIDs, researcherID) {
			id, err := uuid.Parse(researcherID)
			if err != nil {
				return NewBusinessError("RESEARCHER_NOT_FOUND", "Researcher not found", ErrResearcherNotFound)
			}
			row, err := f.researcherRepo.ByID(ctx, id)
			if err != nil {
				return NewBusinessError("RESEARCHER_FETCH_FAILED", "Failed to fetch researcher", err)
			}
			if row == nil {
				return NewBusinessError("RESEARCHER_NOT_FOUND", "Researcher not found", ErrResearcherNotFound)
			}
		}
		e.ToggleResearcher(researcherID)
		return nil
	})
}

// TeamCandidates lists every company and researcher, narrowed by case-insensitive name queries
func (f *CampaignEditorFlowImpl) TeamCandidates(ctx context.Context, session *Session, draftID, companyQuery, researcherQuery string) (*dto.TeamCandidatesResponse, error) {
	if _, err := f.GetDraft(ctx, session, draftID); err != nil {
		return nil, err
	}
	companies, err := f.directory.ListCompanies(ctx, session)
	if err != nil {
		return nil, err
	}
	researchers, err := f.directory.ListResearchers(ctx, session)
	if err != nil {
		return nil, err
	}
	return &dto.TeamCandidatesResponse{
		Companies:   FilterCompaniesByName(companies.Companies, companyQuery),
		Researchers: FilterResearchersByName(researchers.Researchers, researcherQuery),
	}, nil
}

func (f *CampaignEditorFlowImpl) RequestConfirmation(ctx context.Context, session *Session, draftID string, req *dto.RequestConfirmationRequest) (*dto.CampaignDraft, error) {
	return f.mutate(ctx, session, draftID, func(e Editor) error {
		switch req.Kind {
		case dto.ConfirmToggleCollectUserInfo:
			return e.RequestToggleCollectUserInfo()
		case dto.ConfirmToggleCompanyActive:
			company, err := f.company(ctx, req.TargetID)
			if err != nil {
				return err
			}
			return e.RequestToggleCompanyActive(ToCompanyDTO(company))
		}
		return ErrUnknownConfirmationKind
	})
}

// Confirm commits the pending action. A company toggle is written through the directory
// before the draft is updated, so a failed write keeps the confirmation pending.
func (f *CampaignEditorFlowImpl) Confirm(ctx context.Context, session *Session, draftID string) (*dto.ConfirmationResult, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}
	draft, err := f.load(ctx, session, draftID)
	if err != nil {
		return nil, err
	}

	result := &dto.ConfirmationResult{}
	if p := draft.Pending; p != nil && p.Kind == dto.ConfirmToggleCompanyActive {
		toggled, err := f.directory.ToggleCompanyActive(ctx, session, p.TargetID)
		if err != nil {
			return nil, err
		}
		result.Company = &toggled.Company
	}

	p, err := Editor{Draft: draft}.TakeConfirmation()
	if err != nil {
		return nil, NewBusinessError("EDITOR_INVALID_ACTION", err.Error(), err)
	}
	if err := f.store(ctx, session, draft); err != nil {
		return nil, err
	}

	result.Kind = p.Kind
	result.Draft = *draft
	return result, nil
}

func (f *CampaignEditorFlowImpl) Cancel(ctx context.Context, session *Session, draftID string) (*dto.CampaignDraft, error) {
	return f.mutate(ctx, session, draftID, func(e Editor) error {
		e.Cancel()
		return nil
	})
}

// Save persists the draft campaign. A rejected draft returns to the details step and stays
// in the store; a saved draft is removed from it.
func (f *CampaignEditorFlowImpl) Save(ctx context.Context, session *Session, draftID string) (*dto.SaveCampaignResponse, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}
	draft, err := f.load(ctx, session, draftID)
	if err != nil {
		return nil, err
	}

	campaign := draft.Campaign
	resp, err := f.campaigns.SaveCampaign(ctx, session, &campaign)
	if err != nil {
		if IsCampaignValidationError(err) {
			Editor{Draft: draft}.SaveFailed()
			if storeErr := f.store(ctx, session, draft); storeErr != nil {
				log.WithError(storeErr).WithField("draft_id", draftID).Warn("failed to persist rejected draft")
			}
		}
		return nil, err
	}

	if err := f.drafts.Delete(ctx, session.ProfileID, draftID); err != nil {
		log.WithError(err).WithField("draft_id", draftID).Warn("failed to delete saved draft")
	}
	return resp, nil
}

// mutate loads the draft, applies fn and stores the result; nothing is stored when fn fails
func (f *CampaignEditorFlowImpl) mutate(ctx context.Context, session *Session, draftID string, fn func(Editor) error) (*dto.CampaignDraft, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}
	draft, err := f.load(ctx, session, draftID)
	if err != nil {
		return nil, err
	}

	if err := fn(Editor{Draft: draft}); err != nil {
		var be *BusinessError
		if errors.As(err, &be) {
			return nil, err
		}
		if IsEditorStateError(err) || IsCampaignValidationError(err) {
			return nil, NewBusinessError("EDITOR_INVALID_ACTION", err.Error(), err)
		}
		return nil, err
	}

	if err := f.store(ctx, session, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (f *CampaignEditorFlowImpl) load(ctx context.Context, session *Session, draftID string) (*dto.CampaignDraft, error) {
	draft, err := f.drafts.Load(ctx, session.ProfileID, draftID)
	if err != nil {
		return nil, NewBusinessError("DRAFT_STORE_UNAVAILABLE", "Failed to load campaign draft", errors.Join(ErrDraftStoreUnavailable, err))
	}
	if draft == nil {
		return nil, NewBusinessError("DRAFT_NOT_FOUND", "Campaign draft not found or expired", ErrDraftNotFound)
	}
	return draft, nil
}

func (f *CampaignEditorFlowImpl) store(ctx context.Context, session *Session, draft *dto.CampaignDraft) error {
	if err := f.drafts.Save(ctx, session.ProfileID, draft); err != nil {
		return NewBusinessError("DRAFT_STORE_UNAVAILABLE", "Failed to store campaign draft", errors.Join(ErrDraftStoreUnavailable, err))
	}
	return nil
}

func (f *CampaignEditorFlowImpl) company(ctx context.Context, companyID string) (*models.Company, error) {
	id, err := uuid.Parse(companyID)
	if err != nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}
	row, err := f.companyRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("COMPANY_FETCH_FAILED", "Failed to fetch company", err)
	}
	if row == nil {
		return nil, NewBusinessError("COMPANY_NOT_FOUND", "Company not found", ErrCompanyNotFound)
	}
	return row, nil
}
