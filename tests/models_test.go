package tests

import (
	"testing"

	"github.com/amirphl/pesquisa-campo/models"
	testingutil "github.com/amirphl/pesquisa-campo/testing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaConstraints(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) {
		fixtures := testingutil.NewTestFixtures(testDB)

		campaign, questions, err := fixtures.CreateTestCampaign("Pesquisa")
		require.NoError(t, err)

		t.Run("CampaignDefaults", func(t *testing.T) {
			var stored models.Campaign
			require.NoError(t, testDB.DB.First(&stored, "id = ?", campaign.ID).Error)
			assert.Equal(t, 1, stored.Version)
			assert.Equal(t, 10, stored.ResponseGoal)
			assert.False(t, stored.CreatedAt.IsZero())
		})

		t.Run("ResponseGoalMustBePositive", func(t *testing.T) {
			err := testDB.DB.Exec("UPDATE campanhas SET meta_respostas = 0 WHERE id = ?", campaign.ID).Error
			assert.Error(t, err)
		})

		t.Run("EndTimeRequiresStartTime", func(t *testing.T) {
			err := testDB.DB.Exec("UPDATE campanhas SET hora_fim = '18:00', hora_inicio = NULL WHERE id = ?", campaign.ID).Error
			assert.Error(t, err)
		})

		t.Run("OptionCannotJumpToQuestionAndEnd", func(t *testing.T) {
			target := questions[0].ID
			option := &models.QuestionOption{
				QuestionID:       questions[1].ID,
				Value:            "Talvez",
				JumpToQuestionID: &target,
				JumpToEnd:        true,
				Order:            2,
			}
			assert.Error(t, testDB.DB.Create(option).Error)
		})

		t.Run("QuestionTypeIsChecked", func(t *testing.T) {
			err := testDB.DB.Exec(
				"INSERT INTO perguntas (id_campanha, texto, tipo, ordem, chave_correlacao) VALUES (?, 'x', 'ESSAY', 9, ?)",
				campaign.ID, uuid.New(),
			).Error
			assert.Error(t, err)
		})

		t.Run("VoucherUsageCannotExceedTotal", func(t *testing.T) {
			company, err := fixtures.CreateTestCompany("Mercado", true)
			require.NoError(t, err)

			voucher := &models.Voucher{
				CompanyID:     company.ID,
				Title:         "Desconto",
				QRCodeValue:   "DESC-10",
				IsActive:      true,
				TotalQuantity: 1,
				UsedQuantity:  2,
			}
			assert.Error(t, testDB.DB.Create(voucher).Error)
		})

		t.Run("DeletingCampaignRemovesChildren", func(t *testing.T) {
			researcher, err := fixtures.CreateTestResearcher("Rita", nil)
			require.NoError(t, err)
			_, err = fixtures.CreateTestResponse(campaign.ID, researcher.ID, questions[0].ID, nil, campaign.CreatedAt)
			require.NoError(t, err)

			require.NoError(t, testDB.DB.Delete(&models.Campaign{}, "id = ?", campaign.ID).Error)

			var remaining int64
			require.NoError(t, testDB.DB.Model(&models.Question{}).Where("id_campanha = ?", campaign.ID).Count(&remaining).Error)
			assert.Zero(t, remaining)
			require.NoError(t, testDB.DB.Model(&models.SurveyResponse{}).Where("id_campanha = ?", campaign.ID).Count(&remaining).Error)
			assert.Zero(t, remaining)
			require.NoError(t, testDB.DB.Model(&models.SurveyAnswer{}).Count(&remaining).Error)
			assert.Zero(t, remaining)
		})
	})
}
