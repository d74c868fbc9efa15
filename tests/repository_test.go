package tests

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/repository"
	testingutil "github.com/amirphl/pesquisa-campo/testing"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRepository(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewAdminRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		admin, err := fixtures.CreateTestAdmin()
		require.NoError(t, err)

		t.Run("ByID", func(t *testing.T) {
			found, err := repo.ByID(ctx, admin.ID)
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, admin.Email, found.Email)
		})

		t.Run("ByIDNotFound", func(t *testing.T) {
			found, err := repo.ByID(ctx, uuid.New())
			assert.NoError(t, err)
			assert.Nil(t, found)
		})

		t.Run("ByEmailIgnoresCase", func(t *testing.T) {
			found, err := repo.ByEmail(ctx, strings.ToUpper(admin.Email))
			require.NoError(t, err)
			require.NotNil(t, found)
			assert.Equal(t, admin.ID, found.ID)
		})

		t.Run("Exists", func(t *testing.T) {
			exists, err := repo.Exists(ctx, models.AdminFilter{IsActive: utils.ToPtr(true)})
			require.NoError(t, err)
			assert.True(t, exists)
		})
	})
}

func TestCompanyRepository(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewCompanyRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany("Mercado Azul", true)
		require.NoError(t, err)

		t.Run("ToggleActive", func(t *testing.T) {
			toggled, err := repo.ToggleActive(ctx, company.ID)
			require.NoError(t, err)
			require.NotNil(t, toggled)
			assert.False(t, toggled.IsActive)

			toggled, err = repo.ToggleActive(ctx, company.ID)
			require.NoError(t, err)
			assert.True(t, toggled.IsActive)
		})

		t.Run("UpdateLogoURL", func(t *testing.T) {
			require.NoError(t, repo.UpdateLogoURL(ctx, company.ID, "/static/logos/azul.jpg"))

			found, err := repo.ByID(ctx, company.ID)
			require.NoError(t, err)
			require.NotNil(t, found.LogoURL)
			assert.Equal(t, "/static/logos/azul.jpg", *found.LogoURL)
		})

		t.Run("ByFilterIDs", func(t *testing.T) {
			other, err := fixtures.CreateTestCompany("Padaria Sol", false)
			require.NoError(t, err)

			companies, err := repo.ByFilter(ctx, models.CompanyFilter{IDs: []uuid.UUID{company.ID, other.ID}}, "nome ASC", 0, 0)
			require.NoError(t, err)
			require.Len(t, companies, 2)
			assert.Equal(t, "Mercado Azul", companies[0].Name)
		})
	})
}

func TestVoucherRepository_Redeem(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewVoucherRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		company, err := fixtures.CreateTestCompany("Mercado Azul", true)
		require.NoError(t, err)

		voucher := &models.Voucher{
			CompanyID:     company.ID,
			Title:         "Café grátis",
			QRCodeValue:   "CAFE-2024",
			IsActive:      true,
			TotalQuantity: 2,
		}
		require.NoError(t, repo.Save(ctx, voucher))

		for i := 0; i < 2; i++ {
			ok, err := repo.Redeem(ctx, voucher.ID)
			require.NoError(t, err)
			assert.True(t, ok)
		}

		ok, err := repo.Redeem(ctx, voucher.ID)
		require.NoError(t, err)
		assert.False(t, ok, "an exhausted voucher must not be redeemed")

		found, err := repo.ByID(ctx, voucher.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, found.UsedQuantity)
		assert.Equal(t, 0, found.Remaining())
	})
}

func TestCampaignRepository_UpdateWithVersion(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewCampaignRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		campaign, _, err := fixtures.CreateTestCampaign("Pesquisa de Mobilidade")
		require.NoError(t, err)
		require.Equal(t, 1, campaign.Version)

		campaign.Name = "Pesquisa de Mobilidade 2"
		require.NoError(t, repo.UpdateWithVersion(ctx, campaign, 1))
		assert.Equal(t, 2, campaign.Version)
		assert.NotNil(t, campaign.UpdatedAt)

		campaign.Name = "stale write"
		err = repo.UpdateWithVersion(ctx, campaign, 1)
		assert.ErrorIs(t, err, repository.ErrStaleVersion)

		found, err := repo.ByID(ctx, campaign.ID)
		require.NoError(t, err)
		assert.Equal(t, "Pesquisa de Mobilidade 2", found.Name)
		assert.Equal(t, 2, found.Version)
	})
}

func TestQuestionRepository_CorrelationIDs(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewQuestionRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		campaign, questions, err := fixtures.CreateTestCampaign("Pesquisa")
		require.NoError(t, err)

		byKey, err := repo.CorrelationIDs(ctx, campaign.ID)
		require.NoError(t, err)
		require.Len(t, byKey, len(questions))
		for _, q := range questions {
			assert.Equal(t, q.ID, byKey[q.CorrelationKey])
		}

		require.NoError(t, repo.DeleteByCampaignID(ctx, campaign.ID))
		count, err := repo.Count(ctx, models.QuestionFilter{CampaignID: &campaign.ID})
		require.NoError(t, err)
		assert.Zero(t, count)

		// options go with their questions
		var options int64
		require.NoError(t, testDB.DB.Model(&models.QuestionOption{}).Count(&options).Error)
		assert.Zero(t, options)
	})
}

func TestCampaignLinkRepositories_ReplaceForCampaign(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) {
		companyLinks := repository.NewCampaignCompanyRepository(testDB.DB)
		researcherLinks := repository.NewCampaignResearcherRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		campaign, _, err := fixtures.CreateTestCampaign("Pesquisa")
		require.NoError(t, err)
		a, err := fixtures.CreateTestCompany("A", true)
		require.NoError(t, err)
		b, err := fixtures.CreateTestCompany("B", true)
		require.NoError(t, err)
		r, err := fixtures.CreateTestResearcher("Rita", nil)
		require.NoError(t, err)

		require.NoError(t, companyLinks.ReplaceForCampaign(ctx, campaign.ID, []uuid.UUID{a.ID, b.ID, a.ID}))
		links, err := companyLinks.ByFilter(ctx, models.CampaignLinkFilter{CampaignID: &campaign.ID})
		require.NoError(t, err)
		assert.Len(t, links, 2)

		require.NoError(t, companyLinks.ReplaceForCampaign(ctx, campaign.ID, []uuid.UUID{b.ID}))
		links, err = companyLinks.ByFilter(ctx, models.CampaignLinkFilter{CampaignID: &campaign.ID})
		require.NoError(t, err)
		require.Len(t, links, 1)
		assert.Equal(t, b.ID, links[0].CompanyID)

		require.NoError(t, researcherLinks.ReplaceForCampaign(ctx, campaign.ID, []uuid.UUID{r.ID}))
		assigned, err := researcherLinks.ByFilter(ctx, models.CampaignLinkFilter{MemberID: &r.ID})
		require.NoError(t, err)
		require.Len(t, assigned, 1)
		assert.Equal(t, campaign.ID, assigned[0].CampaignID)
	})
}

func TestSurveyResponseRepository_CountByCampaign(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewSurveyResponseRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		campaign, questions, err := fixtures.CreateTestCampaign("Pesquisa")
		require.NoError(t, err)
		empty, _, err := fixtures.CreateTestCampaign("Vazia")
		require.NoError(t, err)
		researcher, err := fixtures.CreateTestResearcher("Rita", nil)
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err := fixtures.CreateTestResponse(campaign.ID, researcher.ID, questions[0].ID, utils.ToPtr(30), utils.UTCNow())
			require.NoError(t, err)
		}

		counts, err := repo.CountByCampaign(ctx, []uuid.UUID{campaign.ID, empty.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(3), counts[campaign.ID])
		assert.Equal(t, int64(0), counts[empty.ID])
	})
}

func TestLocationPointRepository_Route(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) {
		repo := repository.NewLocationPointRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := context.Background()

		researcher, err := fixtures.CreateTestResearcher("Rita", nil)
		require.NoError(t, err)

		day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
		stamps := []time.Time{
			day.Add(15 * time.Hour),
			day.Add(9 * time.Hour),
			day.Add(-time.Minute),
			day.Add(24 * time.Hour),
		}
		for i, ts := range stamps {
			require.NoError(t, repo.Save(ctx, &models.LocationPoint{
				ResearcherID: researcher.ID,
				Latitude:     -23.55 + float64(i)*0.001,
				Longitude:    -46.63,
				Timestamp:    ts,
			}))
		}

		points, err := repo.Route(ctx, researcher.ID, day, day.Add(24*time.Hour-time.Second))
		require.NoError(t, err)
		require.Len(t, points, 2)
		assert.True(t, points[0].Timestamp.Equal(day.Add(9*time.Hour)))
		assert.True(t, points[1].Timestamp.Equal(day.Add(15*time.Hour)))
	})
}
