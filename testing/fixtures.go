package testing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the plain password every fixture account is created with
const TestPassword = "TestPass123!"

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

func hashTestPassword() (*string, error) {
	// MinCost keeps fixture setup fast
	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return utils.ToPtr(string(hash)), nil
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s.%d.%d@example.com", prefix, time.Now().UnixNano(), rand.Intn(100000))
}

// CreateTestAdmin creates an active administrator
func (tf *TestFixtures) CreateTestAdmin() (*models.Admin, error) {
	hash, err := hashTestPassword()
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		Name:         "Ana Admin",
		Email:        uniqueEmail("admin"),
		IsActive:     true,
		PasswordHash: hash,
	}
	if err := tf.DB.DB.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("failed to create test admin: %w", err)
	}
	return admin, nil
}

// CreateTestCompany creates a company with the given active flag
func (tf *TestFixtures) CreateTestCompany(name string, active bool) (*models.Company, error) {
	hash, err := hashTestPassword()
	if err != nil {
		return nil, err
	}

	company := &models.Company{
		Name:         name,
		ContactEmail: utils.ToPtr(uniqueEmail("empresa")),
		IsActive:     active,
		PasswordHash: hash,
	}
	if err := tf.DB.DB.Create(company).Error; err != nil {
		return nil, fmt.Errorf("failed to create test company: %w", err)
	}
	return company, nil
}

// CreateTestResearcher creates an active researcher
func (tf *TestFixtures) CreateTestResearcher(name string, birthDate *time.Time) (*models.Researcher, error) {
	hash, err := hashTestPassword()
	if err != nil {
		return nil, err
	}

	researcher := &models.Researcher{
		Name:         name,
		Email:        uniqueEmail("pesquisador"),
		Gender:       utils.ToPtr(models.GenderFemale),
		BirthDate:    birthDate,
		IsActive:     true,
		Color:        utils.ToPtr("#2563eb"),
		PasswordHash: hash,
	}
	if err := tf.DB.DB.Create(researcher).Error; err != nil {
		return nil, fmt.Errorf("failed to create test researcher: %w", err)
	}
	return researcher, nil
}

// CreateTestCampaign creates an active campaign with one rating question and
// one multiple choice question whose second option ends the survey
func (tf *TestFixtures) CreateTestCampaign(name string) (*models.Campaign, []*models.Question, error) {
	campaign := &models.Campaign{
		Name:         name,
		Theme:        "Mobilidade",
		IsActive:     true,
		ResponseGoal: 10,
	}
	if err := tf.DB.DB.Create(campaign).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create test campaign: %w", err)
	}

	questions := []*models.Question{
		{CampaignID: campaign.ID, Text: "Como avalia o transporte?", Type: models.QuestionTypeRating, Order: 0},
		{CampaignID: campaign.ID, Text: "Usa ônibus?", Type: models.QuestionTypeMultipleChoice, Order: 1},
	}
	if err := tf.DB.DB.Create(&questions).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create test questions: %w", err)
	}

	options := []*models.QuestionOption{
		{QuestionID: questions[1].ID, Value: "Sim", Order: 0},
		{QuestionID: questions[1].ID, Value: "Não", JumpToEnd: true, Order: 1},
	}
	if err := tf.DB.DB.Create(&options).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to create test options: %w", err)
	}

	return campaign, questions, nil
}

// CreateTestResponse stores one survey response with a single answer
func (tf *TestFixtures) CreateTestResponse(campaignID, researcherID, questionID uuid.UUID, age *int, submittedAt time.Time) (*models.SurveyResponse, error) {
	response := &models.SurveyResponse{
		CampaignID:    campaignID,
		ResearcherID:  researcherID,
		RespondentAge: age,
		SubmittedAt:   submittedAt,
	}
	if err := tf.DB.DB.Create(response).Error; err != nil {
		return nil, fmt.Errorf("failed to create test response: %w", err)
	}

	answer := &models.SurveyAnswer{ResponseID: response.ID, QuestionID: questionID, Value: "5"}
	if err := tf.DB.DB.Create(answer).Error; err != nil {
		return nil, fmt.Errorf("failed to create test answer: %w", err)
	}
	return response, nil
}
