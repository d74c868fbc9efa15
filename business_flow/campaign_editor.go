package businessflow

import (
	"fmt"
	"slices"
	"strings"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/google/uuid"
)

// DefaultLGPDText is the consent text of a new campaign
const DefaultLGPDText = "Seus dados serão usados apenas para fins de pesquisa e não serão compartilhados com terceiros. Ao continuar, você concorda com nossos termos de privacidade."

const tempQuestionPrefix = "q_"

// NewTempQuestionID returns a client-side id for a question that has not been persisted yet
func NewTempQuestionID() string {
	return tempQuestionPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// IsTempQuestionID reports whether id was issued by NewTempQuestionID
func IsTempQuestionID(id string) bool {
	return strings.HasPrefix(id, tempQuestionPrefix)
}

// NewDraft returns a blank draft positioned on the details step
func NewDraft(lgpdText string) *dto.CampaignDraft {
	if strings.TrimSpace(lgpdText) == "" {
		lgpdText = DefaultLGPDText
	}
	return &dto.CampaignDraft{
		ID:   uuid.NewString(),
		Step: dto.EditorStepDetails,
		Campaign: dto.Campaign{
			LGPDText:      &lgpdText,
			ResponseGoal:  models.DefaultResponseGoal,
			Questions:     []dto.Question{},
			CompanyIDs:    []string{},
			ResearcherIDs: []string{},
		},
		UpdatedAt: utils.UTCNow(),
	}
}

// DraftFromCampaign opens a persisted campaign for editing; its version is kept for the save
func DraftFromCampaign(c dto.Campaign) *dto.CampaignDraft {
	return &dto.CampaignDraft{
		ID:               uuid.NewString(),
		Step:             dto.EditorStepDetails,
		Campaign:         c,
		StartTimeEnabled: nonEmpty(c.StartTime) != nil,
		EndTimeEnabled:   nonEmpty(c.EndTime) != nil,
		UpdatedAt:        utils.UTCNow(),
	}
}

// Editor applies editor transitions to a draft in place. It performs no I/O.
type Editor struct {
	Draft *dto.CampaignDraft
}

func (e Editor) touch() {
	e.Draft.UpdatedAt = utils.UTCNow()
}

// Next moves forward one step, staying on the last one
func (e Editor) Next() {
	if e.Draft.Step < dto.EditorStepTeam {
		e.Draft.Step++
	}
	e.touch()
}

// Back moves back one step, staying on the first one
func (e Editor) Back() {
	if e.Draft.Step > dto.EditorStepDetails {
		e.Draft.Step--
	}
	e.touch()
}

// GoTo jumps to any step; transitions have no preconditions
func (e Editor) GoTo(step int) error {
	if step < dto.EditorStepDetails || step > dto.EditorStepTeam {
		return ErrInvalidEditorStep
	}
	e.Draft.Step = step
	e.touch()
	return nil
}

// UpdateDetails applies a patch of step-1 fields. Time values follow the same rules as the toggles.
func (e Editor) UpdateDetails(req *dto.UpdateDraftDetailsRequest) error {
	if req == nil {
		return nil
	}
	startEnabled := e.Draft.StartTimeEnabled
	if req.StartTime != nil {
		startEnabled = *req.StartTime != ""
	}
	if req.EndTime != nil && *req.EndTime != "" && !startEnabled {
		return ErrEndTimeRequiresStartTime
	}

	c := &e.Draft.Campaign
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.Theme != nil {
		c.Theme = *req.Theme
	}
	if req.LGPDText != nil {
		c.LGPDText = req.LGPDText
	}
	if req.ResponseGoal != nil {
		c.ResponseGoal = *req.ResponseGoal
	}
	if req.StartDate != nil {
		c.StartDate = nonEmpty(req.StartDate)
	}
	if req.EndDate != nil {
		c.EndDate = nonEmpty(req.EndDate)
	}
	if req.FinalRedirectURL != nil {
		c.FinalRedirectURL = req.FinalRedirectURL
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if req.StartTime != nil {
		e.SetStartTime(*req.StartTime != "", req.StartTime)
	}
	if req.EndTime != nil {
		if err := e.SetEndTime(*req.EndTime != "", req.EndTime); err != nil {
			return err
		}
	}

	e.touch()
	return nil
}

// SetStartTime enables or disables the start time. Disabling also disables and clears the end time.
func (e Editor) SetStartTime(enabled bool, value *string) {
	e.Draft.StartTimeEnabled = enabled
	if enabled {
		if value != nil {
			e.Draft.Campaign.StartTime = nonEmpty(value)
		}
	} else {
		e.Draft.Campaign.StartTime = nil
		e.Draft.EndTimeEnabled = false
		e.Draft.Campaign.EndTime = nil
	}
	e.touch()
}

// SetEndTime enables or disables the end time; it can only be enabled while the start time is
func (e Editor) SetEndTime(enabled bool, value *string) error {
	if !enabled {
		e.Draft.EndTimeEnabled = false
		e.Draft.Campaign.EndTime = nil
		e.touch()
		return nil
	}
	if !e.Draft.StartTimeEnabled {
		return ErrEndTimeRequiresStartTime
	}
	e.Draft.EndTimeEnabled = true
	if value != nil {
		e.Draft.Campaign.EndTime = nonEmpty(value)
	}
	e.touch()
	return nil
}

// SetQuestions replaces the questionnaire in display order. Questions without an id receive a
// temporary one; a repeated id rejects the whole list and leaves the draft untouched.
func (e Editor) SetQuestions(questions []dto.DraftQuestion) error {
	out := make([]dto.Question, 0, len(questions))
	seen := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		id := q.ID
		if strings.TrimSpace(id) == "" {
			id = NewTempQuestionID()
		}
		if _, dup := seen[id]; dup {
			return ErrDuplicateQuestionID
		}
		seen[id] = struct{}{}
		options := q.Options
		if options == nil {
			options = []dto.QuestionOption{}
		}
		out = append(out, dto.Question{ID: id, Text: q.Text, Type: q.Type, Options: options})
	}
	e.Draft.Campaign.Questions = out
	e.touch()
	return nil
}

// ToggleCompany selects or deselects a company. Only active companies can be selected.
func (e Editor) ToggleCompany(company dto.Company) error {
	ids, removed := toggleID(e.Draft.Campaign.CompanyIDs, company.ID)
	if !removed && !company.IsActive {
		return ErrCompanyInactive
	}
	e.Draft.Campaign.CompanyIDs = ids
	e.touch()
	return nil
}

// ToggleResearcher selects or deselects a researcher
func (e Editor) ToggleResearcher(researcherID string) {
	e.Draft.Campaign.ResearcherIDs, _ = toggleID(e.Draft.Campaign.ResearcherIDs, researcherID)
	e.touch()
}

// RequestToggleCompanyActive stages flipping a company's active flag
func (e Editor) RequestToggleCompanyActive(company dto.Company) error {
	verb := "ATIVAR"
	if company.IsActive {
		verb = "DESATIVAR"
	}
	return e.stage(&dto.PendingConfirmation{
		Kind:     dto.ConfirmToggleCompanyActive,
		TargetID: company.ID,
		Message:  fmt.Sprintf("Tem certeza que deseja %s a empresa \"%s\"?", verb, company.Name),
	})
}

// RequestToggleCollectUserInfo stages flipping respondent data collection on the draft
func (e Editor) RequestToggleCollectUserInfo() error {
	verb := "ATIVAR"
	if e.Draft.Campaign.CollectUserInfo {
		verb = "DESATIVAR"
	}
	return e.stage(&dto.PendingConfirmation{
		Kind:    dto.ConfirmToggleCollectUserInfo,
		Message: fmt.Sprintf("Tem certeza que deseja %s a coleta de nome e telefone do participante?", verb),
	})
}

func (e Editor) stage(p *dto.PendingConfirmation) error {
	if e.Draft.Pending != nil {
		return ErrConfirmationAlreadyPending
	}
	e.Draft.Pending = p
	e.touch()
	return nil
}

// TakeConfirmation removes and returns the pending confirmation.
// Draft-local effects are applied here; external effects are left to the caller.
func (e Editor) TakeConfirmation() (*dto.PendingConfirmation, error) {
	p := e.Draft.Pending
	if p == nil {
		return nil, ErrNoPendingConfirmation
	}
	switch p.Kind {
	case dto.ConfirmToggleCollectUserInfo:
		e.Draft.Campaign.CollectUserInfo = !e.Draft.Campaign.CollectUserInfo
	case dto.ConfirmToggleCompanyActive:
	default:
		return nil, ErrUnknownConfirmationKind
	}
	e.Draft.Pending = nil
	e.touch()
	return p, nil
}

// Cancel discards the pending confirmation, if any
func (e Editor) Cancel() {
	e.Draft.Pending = nil
	e.touch()
}

// SaveFailed returns the editor to the details step after a rejected save
func (e Editor) SaveFailed() {
	e.Draft.Step = dto.EditorStepDetails
	e.touch()
}

// FilterCompaniesByName keeps companies whose name contains query, case-insensitively
func FilterCompaniesByName(companies []dto.Company, query string) []dto.Company {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]dto.Company, 0, len(companies))
	for _, c := range companies {
		if needle == "" || strings.Contains(strings.ToLower(c.Name), needle) {
			out = append(out, c)
		}
	}
	return out
}

// FilterResearchersByName keeps researchers whose name contains query, case-insensitively
func FilterResearchersByName(researchers []dto.Researcher, query string) []dto.Researcher {
	needle := strings.ToLower(strings.TrimSpace(query))
	out := make([]dto.Researcher, 0, len(researchers))
	for _, r := range researchers {
		if needle == "" || strings.Contains(strings.ToLower(r.Name), needle) {
			out = append(out, r)
		}
	}
	return out
}

// toggleID removes id when present, appends it otherwise
func toggleID(ids []string, id string) ([]string, bool) {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(slices.Clone(ids), i, i+1), true
	}
	return append(slices.Clone(ids), id), false
}

