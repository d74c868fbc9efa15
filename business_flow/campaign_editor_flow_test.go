package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/app/services"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/repository"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCampaignFlow struct {
	CampaignFlow
	saveErr error
	saved   []dto.Campaign
}

func (f *fakeCampaignFlow) SaveCampaign(_ context.Context, _ *Session, campaign *dto.Campaign) (*dto.SaveCampaignResponse, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saved = append(f.saved, *campaign)
	return &dto.SaveCampaignResponse{CampaignID: uuid.NewString(), Version: 1}, nil
}

type fakeDirectoryFlow struct {
	DirectoryFlow
	toggleErr error
	toggled   []string
}

func (f *fakeDirectoryFlow) ToggleCompanyActive(_ context.Context, _ *Session, companyID string) (*dto.ToggleCompanyActiveResponse, error) {
	if f.toggleErr != nil {
		return nil, f.toggleErr
	}
	f.toggled = append(f.toggled, companyID)
	return &dto.ToggleCompanyActiveResponse{Company: dto.Company{ID: companyID, IsActive: false}}, nil
}

type editorCompanyRepo struct {
	repository.CompanyRepository
	rows map[uuid.UUID]*models.Company
}

func (r *editorCompanyRepo) ByID(_ context.Context, id uuid.UUID) (*models.Company, error) {
	return r.rows[id], nil
}

func (r *editorCompanyRepo) ByFilter(_ context.Context, filter models.CompanyFilter, _ string, _, _ int) ([]*models.Company, error) {
	var out []*models.Company
	for _, id := range filter.IDs {
		if c, ok := r.rows[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type editorFixture struct {
	flow      CampaignEditorFlow
	campaigns *fakeCampaignFlow
	directory *fakeDirectoryFlow
	session   *Session
	active    *models.Company
	inactive  *models.Company
}

func newEditorFixture(t *testing.T) *editorFixture {
	t.Helper()
	f := &editorFixture{
		campaigns: &fakeCampaignFlow{},
		directory: &fakeDirectoryFlow{},
		session:   &Session{Role: models.UserRoleAdmin, ProfileID: uuid.New(), Name: "Ana"},
		active:    &models.Company{ID: uuid.New(), Name: "Mercado Azul", IsActive: true},
		inactive:  &models.Company{ID: uuid.New(), Name: "Padaria Sol", IsActive: false},
	}
	companies := &editorCompanyRepo{rows: map[uuid.UUID]*models.Company{
		f.active.ID:   f.active,
		f.inactive.ID: f.inactive,
	}}
	drafts := services.NewDraftStore(services.NewMemoryStateStore(0), 0)
	f.flow = NewCampaignEditorFlow(drafts, f.campaigns, f.directory, companies, &fakeResearcherRepo{}, "Termo LGPD")
	return f
}

func (f *editorFixture) open(t *testing.T) *dto.CampaignDraft {
	t.Helper()
	draft, err := f.flow.OpenDraft(context.Background(), f.session, nil)
	require.NoError(t, err)
	return draft
}

func TestCampaignEditorFlow_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("RejectedDraftReturnsToDetails", func(t *testing.T) {
		f := newEditorFixture(t)
		draft := f.open(t)
		_, err := f.flow.MoveStep(ctx, f.session, draft.ID, &dto.DraftStepRequest{Action: "goto", Step: dto.EditorStepTeam})
		require.NoError(t, err)

		f.campaigns.saveErr = NewBusinessError("CAMPAIGN_VALIDATION_FAILED", "Campaign validation failed", ErrCampaignNameRequired)
		_, err = f.flow.Save(ctx, f.session, draft.ID)
		require.Error(t, err)

		stored, err := f.flow.GetDraft(ctx, f.session, draft.ID)
		require.NoError(t, err, "a rejected draft stays in the store")
		assert.Equal(t, dto.EditorStepDetails, stored.Step)
	})

	t.Run("OtherFailuresKeepTheStep", func(t *testing.T) {
		f := newEditorFixture(t)
		draft := f.open(t)
		_, err := f.flow.MoveStep(ctx, f.session, draft.ID, &dto.DraftStepRequest{Action: "goto", Step: dto.EditorStepTeam})
		require.NoError(t, err)

		f.campaigns.saveErr = NewBusinessError("CAMPAIGN_SAVE_FAILED", "Failed to save campaign", errors.New("db down"))
		_, err = f.flow.Save(ctx, f.session, draft.ID)
		require.Error(t, err)

		stored, err := f.flow.GetDraft(ctx, f.session, draft.ID)
		require.NoError(t, err)
		assert.Equal(t, dto.EditorStepTeam, stored.Step)
	})

	t.Run("SavedDraftIsRemoved", func(t *testing.T) {
		f := newEditorFixture(t)
		draft := f.open(t)
		_, err := f.flow.UpdateDetails(ctx, f.session, draft.ID, &dto.UpdateDraftDetailsRequest{Name: utils.ToPtr("Feira"), Theme: utils.ToPtr("Comércio")})
		require.NoError(t, err)

		resp, err := f.flow.Save(ctx, f.session, draft.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.CampaignID)
		require.Len(t, f.campaigns.saved, 1)
		assert.Equal(t, "Feira", f.campaigns.saved[0].Name)

		_, err = f.flow.GetDraft(ctx, f.session, draft.ID)
		assert.True(t, IsDraftNotFound(err))
	})
}

func TestCampaignEditorFlow_ConfirmCompanyToggle(t *testing.T) {
	ctx := context.Background()
	f := newEditorFixture(t)
	draft := f.open(t)

	_, err := f.flow.RequestConfirmation(ctx, f.session, draft.ID, &dto.RequestConfirmationRequest{
		Kind:     dto.ConfirmToggleCompanyActive,
		TargetID: f.active.ID.String(),
	})
	require.NoError(t, err)

	writeErr := errors.New("write failed")
	f.directory.toggleErr = writeErr
	_, err = f.flow.Confirm(ctx, f.session, draft.ID)
	assert.ErrorIs(t, err, writeErr)

	stored, err := f.flow.GetDraft(ctx, f.session, draft.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Pending, "a failed write keeps the confirmation pending")
	assert.Empty(t, f.directory.toggled)

	f.directory.toggleErr = nil
	result, err := f.flow.Confirm(ctx, f.session, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ConfirmToggleCompanyActive, result.Kind)
	require.NotNil(t, result.Company)
	assert.Equal(t, []string{f.active.ID.String()}, f.directory.toggled)
	assert.Nil(t, result.Draft.Pending)

	stored, err = f.flow.GetDraft(ctx, f.session, draft.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.Pending)
}

func TestCampaignEditorFlow_ToggleCompany(t *testing.T) {
	ctx := context.Background()
	f := newEditorFixture(t)
	draft := f.open(t)

	_, err := f.flow.ToggleCompany(ctx, f.session, draft.ID, f.inactive.ID.String())
	require.Error(t, err)
	assert.True(t, IsCompanyInactive(err))

	updated, err := f.flow.ToggleCompany(ctx, f.session, draft.ID, f.active.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{f.active.ID.String()}, updated.Campaign.CompanyIDs)

	_, err = f.flow.ToggleCompany(ctx, f.session, draft.ID, uuid.NewString())
	assert.True(t, IsCompanyNotFound(err))
}

func TestCampaignEditorFlow_SetQuestionsRejectsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	f := newEditorFixture(t)
	draft := f.open(t)

	_, err := f.flow.SetQuestions(ctx, f.session, draft.ID, &dto.SetDraftQuestionsRequest{Questions: []dto.DraftQuestion{
		{ID: "q_same", Text: "Primeira", Type: "TEXT"},
		{ID: "q_same", Text: "Segunda", Type: "TEXT"},
	}})
	assert.ErrorIs(t, err, ErrDuplicateQuestionID)

	stored, err := f.flow.GetDraft(ctx, f.session, draft.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Campaign.Questions)
}
