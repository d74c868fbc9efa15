package businessflow

import (
	"testing"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDraft(t *testing.T) {
	draft := NewDraft("")
	assert.Equal(t, dto.EditorStepDetails, draft.Step)
	require.NotNil(t, draft.Campaign.LGPDText)
	assert.Equal(t, DefaultLGPDText, *draft.Campaign.LGPDText)
	assert.Equal(t, models.DefaultResponseGoal, draft.Campaign.ResponseGoal)
	assert.NotNil(t, draft.Campaign.Questions)
	assert.NotEmpty(t, draft.ID)

	custom := NewDraft("Termo próprio")
	assert.Equal(t, "Termo próprio", *custom.Campaign.LGPDText)
}

func TestDraftFromCampaign(t *testing.T) {
	draft := DraftFromCampaign(dto.Campaign{ID: "c1", Version: 3, StartTime: utils.ToPtr("08:00"), EndTime: utils.ToPtr("")})
	assert.True(t, draft.StartTimeEnabled)
	assert.False(t, draft.EndTimeEnabled)
	assert.Equal(t, 3, draft.Campaign.Version)
}

func TestEditorSteps(t *testing.T) {
	e := Editor{Draft: NewDraft("")}

	e.Back()
	assert.Equal(t, dto.EditorStepDetails, e.Draft.Step)

	e.Next()
	e.Next()
	e.Next()
	assert.Equal(t, dto.EditorStepTeam, e.Draft.Step)

	require.NoError(t, e.GoTo(dto.EditorStepQuestions))
	assert.Equal(t, dto.EditorStepQuestions, e.Draft.Step)

	assert.ErrorIs(t, e.GoTo(0), ErrInvalidEditorStep)
	assert.ErrorIs(t, e.GoTo(4), ErrInvalidEditorStep)

	e.SaveFailed()
	assert.Equal(t, dto.EditorStepDetails, e.Draft.Step)
}

func TestEditorTimeToggles(t *testing.T) {
	e := Editor{Draft: NewDraft("")}

	assert.ErrorIs(t, e.SetEndTime(true, utils.ToPtr("18:00")), ErrEndTimeRequiresStartTime)

	e.SetStartTime(true, utils.ToPtr("08:00"))
	require.NoError(t, e.SetEndTime(true, utils.ToPtr("18:00")))
	assert.Equal(t, "18:00", *e.Draft.Campaign.EndTime)

	e.SetStartTime(false, nil)
	assert.False(t, e.Draft.StartTimeEnabled)
	assert.False(t, e.Draft.EndTimeEnabled)
	assert.Nil(t, e.Draft.Campaign.StartTime)
	assert.Nil(t, e.Draft.Campaign.EndTime)
}

func TestEditorUpdateDetails(t *testing.T) {
	e := Editor{Draft: NewDraft("")}

	err := e.UpdateDetails(&dto.UpdateDraftDetailsRequest{EndTime: utils.ToPtr("18:00")})
	assert.ErrorIs(t, err, ErrEndTimeRequiresStartTime)

	require.NoError(t, e.UpdateDetails(&dto.UpdateDraftDetailsRequest{
		Name:         utils.ToPtr("Mobilidade"),
		Theme:        utils.ToPtr("Transporte"),
		ResponseGoal: utils.ToPtr(250),
		StartTime:    utils.ToPtr("07:30"),
		EndTime:      utils.ToPtr("19:00"),
		StartDate:    utils.ToPtr(""),
	}))

	c := e.Draft.Campaign
	assert.Equal(t, "Mobilidade", c.Name)
	assert.Equal(t, "Transporte", c.Theme)
	assert.Equal(t, 250, c.ResponseGoal)
	assert.Equal(t, "07:30", *c.StartTime)
	assert.Equal(t, "19:00", *c.EndTime)
	assert.Nil(t, c.StartDate)
	assert.True(t, e.Draft.EndTimeEnabled)

	require.NoError(t, e.UpdateDetails(nil))
}

func TestEditorSetQuestions(t *testing.T) {
	e := Editor{Draft: NewDraft("")}
	require.NoError(t, e.SetQuestions([]dto.DraftQuestion{
		{ID: "q_existing", Text: "Nota", Type: "RATING"},
		{Text: "Comentário", Type: "TEXT"},
	}))

	qs := e.Draft.Campaign.Questions
	require.Len(t, qs, 2)
	assert.Equal(t, "q_existing", qs[0].ID)
	assert.True(t, IsTempQuestionID(qs[1].ID))
	assert.NotNil(t, qs[1].Options)

	err := e.SetQuestions([]dto.DraftQuestion{
		{ID: "q_same", Text: "Primeira", Type: "TEXT"},
		{ID: "q_same", Text: "Segunda", Type: "TEXT"},
	})
	assert.ErrorIs(t, err, ErrDuplicateQuestionID)
	assert.Equal(t, "q_existing", e.Draft.Campaign.Questions[0].ID, "a rejected list leaves the draft unchanged")
}

func TestEditorToggles(t *testing.T) {
	e := Editor{Draft: NewDraft("")}
	active := dto.Company{ID: "co-1", Name: "Mercado", IsActive: true}
	inactive := dto.Company{ID: "co-2", Name: "Padaria"}

	require.NoError(t, e.ToggleCompany(active))
	assert.Equal(t, []string{"co-1"}, e.Draft.Campaign.CompanyIDs)
	assert.ErrorIs(t, e.ToggleCompany(inactive), ErrCompanyInactive)
	require.NoError(t, e.ToggleCompany(active))
	assert.Empty(t, e.Draft.Campaign.CompanyIDs)

	// a company deactivated after selection can still be removed
	e.Draft.Campaign.CompanyIDs = []string{"co-2"}
	require.NoError(t, e.ToggleCompany(inactive))
	assert.Empty(t, e.Draft.Campaign.CompanyIDs)

	e.ToggleResearcher("r-1")
	e.ToggleResearcher("r-2")
	e.ToggleResearcher("r-1")
	assert.Equal(t, []string{"r-2"}, e.Draft.Campaign.ResearcherIDs)
}

func TestEditorConfirmations(t *testing.T) {
	e := Editor{Draft: NewDraft("")}

	_, err := e.TakeConfirmation()
	assert.ErrorIs(t, err, ErrNoPendingConfirmation)

	require.NoError(t, e.RequestToggleCollectUserInfo())
	assert.Contains(t, e.Draft.Pending.Message, "ATIVAR")
	assert.ErrorIs(t, e.RequestToggleCollectUserInfo(), ErrConfirmationAlreadyPending)

	p, err := e.TakeConfirmation()
	require.NoError(t, err)
	assert.Equal(t, dto.ConfirmToggleCollectUserInfo, p.Kind)
	assert.True(t, e.Draft.Campaign.CollectUserInfo)
	assert.Nil(t, e.Draft.Pending)

	require.NoError(t, e.RequestToggleCompanyActive(dto.Company{ID: "co-1", Name: "Mercado", IsActive: true}))
	assert.Equal(t, `Tem certeza que deseja DESATIVAR a empresa "Mercado"?`, e.Draft.Pending.Message)
	e.Cancel()
	assert.Nil(t, e.Draft.Pending)

	require.NoError(t, e.RequestToggleCompanyActive(dto.Company{ID: "co-1", Name: "Mercado"}))
	p, err = e.TakeConfirmation()
	require.NoError(t, err)
	assert.Equal(t, dto.ConfirmToggleCompanyActive, p.Kind)
	assert.Equal(t, "co-1", p.TargetID)
	assert.True(t, e.Draft.Campaign.CollectUserInfo, "company toggles leave the draft untouched")

	e.Draft.Pending = &dto.PendingConfirmation{Kind: "DELETE_EVERYTHING"}
	_, err = e.TakeConfirmation()
	assert.ErrorIs(t, err, ErrUnknownConfirmationKind)
}

func TestFilterByName(t *testing.T) {
	companies := []dto.Company{{Name: "Mercado São João"}, {Name: "Padaria Sol"}}
	assert.Len(t, FilterCompaniesByName(companies, "  "), 2)
	got := FilterCompaniesByName(companies, "SÃO")
	require.Len(t, got, 1)
	assert.Equal(t, "Mercado São João", got[0].Name)

	researchers := []dto.Researcher{{Name: "Rita"}, {Name: "Otto"}}
	assert.Len(t, FilterResearchersByName(researchers, "ot"), 1)
}

func TestRouteWindow(t *testing.T) {
	from, to, err := RouteWindow("2024-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10T00:00:00Z", from.Format("2006-01-02T15:04:05Z07:00"))
	assert.Equal(t, "2024-03-10T23:59:59Z", to.Format("2006-01-02T15:04:05Z07:00"))

	_, _, err = RouteWindow("10/03/2024")
	assert.ErrorIs(t, err, ErrInvalidRouteDate)
}

func TestSessionRequire(t *testing.T) {
	var nilSession *Session
	assert.ErrorIs(t, nilSession.Require(models.UserRoleAdmin), ErrSessionRequired)

	s := &Session{Role: models.UserRoleCompany, ProfileID: [16]byte{1}}
	assert.NoError(t, s.Require(models.UserRoleAdmin, models.UserRoleCompany))
	assert.ErrorIs(t, s.Require(models.UserRoleResearcher), ErrRoleNotAllowed)
}
