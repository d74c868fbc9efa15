package tests

import (
	"context"
	"testing"

	"github.com/amirphl/pesquisa-campo/app/dto"
	businessflow "github.com/amirphl/pesquisa-campo/business_flow"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/repository"
	testingutil "github.com/amirphl/pesquisa-campo/testing"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flows struct {
	campaigns businessflow.CampaignFlow
	responses businessflow.ResponseFlow
}

func newFlows(testDB *testingutil.TestDB) flows {
	db := testDB.DB
	campaignRepo := repository.NewCampaignRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	optionRepo := repository.NewQuestionOptionRepository(db)
	companyLinks := repository.NewCampaignCompanyRepository(db)
	researcherLinks := repository.NewCampaignResearcherRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	responseRepo := repository.NewSurveyResponseRepository(db)
	answerRepo := repository.NewSurveyAnswerRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	tx := repository.NewTransactor(db)

	campaigns := businessflow.NewCampaignFlow(campaignRepo, questionRepo, optionRepo, companyLinks, researcherLinks, companyRepo, responseRepo, auditRepo, tx)
	responses := businessflow.NewResponseFlow(campaigns, campaignRepo, questionRepo, optionRepo, companyLinks, researcherLinks, responseRepo, answerRepo, auditRepo, tx)
	return flows{campaigns: campaigns, responses: responses}
}

func adminSession(id uuid.UUID) *businessflow.Session {
	return &businessflow.Session{Role: models.UserRoleAdmin, ProfileID: id, Name: "Ana Admin"}
}

func researcherSession(id uuid.UUID) *businessflow.Session {
	return &businessflow.Session{Role: models.UserRoleResearcher, ProfileID: id, Name: "Rita"}
}

func TestCampaignFlow_SaveCampaign(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) {
		ctx := context.Background()
		fixtures := testingutil.NewTestFixtures(testDB)
		f := newFlows(testDB)

		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)
		company, err := fixtures.CreateTestCompany("Mercado Azul", true)
		require.NoError(t, err)
		researcher, err := fixtures.CreateTestResearcher("Rita", nil)
		require.NoError(t, err)

		draft := &dto.Campaign{
			Name:         "Satisfação do bairro",
			Theme:        "Serviços públicos",
			IsActive:     true,
			ResponseGoal: 0,
			Questions: []dto.Question{
				{
					ID:   "q_1",
					Text: "Usa o posto de saúde?",
					Type: "MULTIPLE_CHOICE",
					Options: []dto.QuestionOption{
						{Value: "Sim", JumpTo: utils.ToPtr("q_3")},
						{Value: "Não", JumpTo: utils.ToPtr(dto.JumpToEnd)},
						{Value: "Às vezes", JumpTo: utils.ToPtr("q_missing")},
					},
				},
				{ID: "q_2", Text: "Comentários", Type: "TEXT"},
				{ID: "q_3", Text: "Nota para o atendimento", Type: "RATING"},
			},
			CompanyIDs:    []string{company.ID.String()},
			ResearcherIDs: []string{researcher.ID.String()},
		}

		saved, err := f.campaigns.SaveCampaign(ctx, adminSession(admin.ID), draft)
		require.NoError(t, err)
		assert.Equal(t, 1, saved.Version)

		loaded, err := f.campaigns.GetCampaign(ctx, adminSession(admin.ID), saved.CampaignID)
		require.NoError(t, err)

		t.Run("QuestionsKeepDisplayOrder", func(t *testing.T) {
			require.Len(t, loaded.Questions, 3)
			assert.Equal(t, "Usa o posto de saúde?", loaded.Questions[0].Text)
			assert.Equal(t, "Comentários", loaded.Questions[1].Text)
			assert.Equal(t, "Nota para o atendimento", loaded.Questions[2].Text)
			for _, q := range loaded.Questions {
				_, err := uuid.Parse(q.ID)
				assert.NoError(t, err, "persisted questions carry real ids")
			}
		})

		t.Run("JumpTargetsAreRemapped", func(t *testing.T) {
			opts := loaded.Questions[0].Options
			require.Len(t, opts, 3)
			require.NotNil(t, opts[0].JumpTo)
			assert.Equal(t, loaded.Questions[2].ID, *opts[0].JumpTo)
			require.NotNil(t, opts[1].JumpTo)
			assert.Equal(t, dto.JumpToEnd, *opts[1].JumpTo)
			assert.Nil(t, opts[2].JumpTo, "dangling targets degrade to no jump")
		})

		t.Run("DefaultsAndLinks", func(t *testing.T) {
			assert.Equal(t, models.DefaultResponseGoal, loaded.ResponseGoal)
			assert.Equal(t, []string{company.ID.String()}, loaded.CompanyIDs)
			assert.Equal(t, []string{researcher.ID.String()}, loaded.ResearcherIDs)
		})

		t.Run("UpdateBumpsVersionAndReplacesChildren", func(t *testing.T) {
			update := *loaded
			update.Questions = loaded.Questions[:1]
			update.Questions[0].Options = update.Questions[0].Options[1:2]
			update.CompanyIDs = nil

			res, err := f.campaigns.SaveCampaign(ctx, adminSession(admin.ID), &update)
			require.NoError(t, err)
			assert.Equal(t, 2, res.Version)

			reloaded, err := f.campaigns.GetCampaign(ctx, adminSession(admin.ID), saved.CampaignID)
			require.NoError(t, err)
			require.Len(t, reloaded.Questions, 1)
			assert.Equal(t, loaded.Questions[0].ID, reloaded.Questions[0].ID, "saved questions keep their ids across edits")
			require.Len(t, reloaded.Questions[0].Options, 1)
			assert.Empty(t, reloaded.CompanyIDs)
		})

		t.Run("StaleVersionIsRejected", func(t *testing.T) {
			stale := *loaded
			stale.Name = "edição antiga"

			_, err := f.campaigns.SaveCampaign(ctx, adminSession(admin.ID), &stale)
			require.Error(t, err)
			assert.True(t, businessflow.IsCampaignVersionConflict(err))

			current, err := f.campaigns.GetCampaign(ctx, adminSession(admin.ID), saved.CampaignID)
			require.NoError(t, err)
			assert.Equal(t, "Satisfação do bairro", current.Name)
		})

		t.Run("AuditTrail", func(t *testing.T) {
			audit := repository.NewAuditLogRepository(testDB.DB)
			entries, err := audit.ByFilter(ctx, models.AuditLogFilter{ActorID: &admin.ID}, "id ASC", 0, 0)
			require.NoError(t, err)
			require.Len(t, entries, 3)
			assert.Equal(t, models.AuditActionCampaignCreated, entries[0].Action)
			assert.Equal(t, models.AuditActionCampaignUpdated, entries[1].Action)
			assert.Equal(t, models.AuditActionCampaignSaveFailed, entries[2].Action)
			assert.False(t, entries[2].Success)
		})
	})
}

func TestCampaignFlow_SaveCampaignCompanyRules(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) {
		ctx := context.Background()
		fixtures := testingutil.NewTestFixtures(testDB)
		f := newFlows(testDB)
		companies := repository.NewCompanyRepository(testDB.DB)

		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)
		active, err := fixtures.CreateTestCompany("Mercado Azul", true)
		require.NoError(t, err)
		inactive, err := fixtures.CreateTestCompany("Padaria Sol", false)
		require.NoError(t, err)

		draft := &dto.Campaign{Name: "Comércio local", Theme: "Economia", IsActive: true}

		t.Run("InactiveCompanyCannotBeAdded", func(t *testing.T) {
			withInactive := *draft
			withInactive.CompanyIDs = []string{inactive.ID.String()}
			_, err := f.campaigns.SaveCampaign(ctx, adminSession(admin.ID), &withInactive)
			require.Error(t, err)
			assert.True(t, businessflow.IsCompanyInactive(err))
		})

		withActive := *draft
		withActive.CompanyIDs = []string{active.ID.String()}
		saved, err := f.campaigns.SaveCampaign(ctx, adminSession(admin.ID), &withActive)
		require.NoError(t, err)

		_, err = companies.ToggleActive(ctx, active.ID)
		require.NoError(t, err)

		loaded, err := f.campaigns.GetCampaign(ctx, adminSession(admin.ID), saved.CampaignID)
		require.NoError(t, err)

		t.Run("ExistingLinkSurvivesDeactivation", func(t *testing.T) {
			update := *loaded
			update.Description = utils.ToPtr("revisada")
			res, err := f.campaigns.SaveCampaign(ctx, adminSession(admin.ID), &update)
			require.NoError(t, err)
			assert.Equal(t, 2, res.Version)

			reloaded, err := f.campaigns.GetCampaign(ctx, adminSession(admin.ID), saved.CampaignID)
			require.NoError(t, err)
			assert.Equal(t, []string{active.ID.String()}, reloaded.CompanyIDs)
		})

		t.Run("AddingInactiveOnUpdateIsRejected", func(t *testing.T) {
			current, err := f.campaigns.GetCampaign(ctx, adminSession(admin.ID), saved.CampaignID)
			require.NoError(t, err)
			update := *current
			update.CompanyIDs = append(update.CompanyIDs, inactive.ID.String())
			_, err = f.campaigns.SaveCampaign(ctx, adminSession(admin.ID), &update)
			require.Error(t, err)
			assert.True(t, businessflow.IsCompanyInactive(err))
		})
	})
}

func TestResponseFlow_SubmitAndProgress(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) {
		ctx := context.Background()
		fixtures := testingutil.NewTestFixtures(testDB)
		f := newFlows(testDB)

		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)
		researcher, err := fixtures.CreateTestResearcher("Rita", nil)
		require.NoError(t, err)
		outsider, err := fixtures.CreateTestResearcher("Otto", nil)
		require.NoError(t, err)

		saved, err := f.campaigns.SaveCampaign(ctx, adminSession(admin.ID), &dto.Campaign{
			Name:            "Feira livre",
			Theme:           "Comércio",
			IsActive:        true,
			CollectUserInfo: true,
			ResponseGoal:    2,
			Questions:       []dto.Question{{ID: "q_a", Text: "Nota da feira", Type: "RATING"}},
			ResearcherIDs:   []string{researcher.ID.String()},
		})
		require.NoError(t, err)

		campaign, err := f.campaigns.GetCampaign(ctx, adminSession(admin.ID), saved.CampaignID)
		require.NoError(t, err)
		questionID := campaign.Questions[0].ID

		req := &dto.SubmitResponseRequest{
			CampaignID: saved.CampaignID,
			UserName:   utils.ToPtr("Joana"),
			UserAge:    utils.ToPtr(41),
			Answers:    []dto.SurveyAnswer{{QuestionID: questionID, Value: "4"}},
		}

		t.Run("UnassignedResearcherIsRejected", func(t *testing.T) {
			_, err := f.responses.SubmitResponse(ctx, researcherSession(outsider.ID), req)
			assert.Error(t, err)
		})

		t.Run("UnknownQuestionIsRejected", func(t *testing.T) {
			bad := *req
			bad.Answers = []dto.SurveyAnswer{{QuestionID: uuid.NewString(), Value: "1"}}
			_, err := f.responses.SubmitResponse(ctx, researcherSession(researcher.ID), &bad)
			assert.Error(t, err)
		})

		res, err := f.responses.SubmitResponse(ctx, researcherSession(researcher.ID), req)
		require.NoError(t, err)
		assert.NotEmpty(t, res.ResponseID)

		available, err := f.campaigns.AvailableCampaigns(ctx, researcherSession(researcher.ID), "FEIRA")
		require.NoError(t, err)
		require.Len(t, available.Campaigns, 1)
		assert.Equal(t, int64(1), available.Campaigns[0].ResponseCount)
		assert.InDelta(t, 50.0, available.Campaigns[0].Progress, 0.001)
		assert.False(t, available.Campaigns[0].GoalMet)

		listed, err := f.responses.ListResponses(ctx, adminSession(admin.ID))
		require.NoError(t, err)
		require.Len(t, listed.Responses, 1)
		got := listed.Responses[0]
		require.NotNil(t, got.UserName)
		assert.Equal(t, "Joana", *got.UserName)
		require.Len(t, got.Answers, 1)
		assert.Equal(t, "4", got.Answers[0].Value)
	})
}
