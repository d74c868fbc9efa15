package businessflow

import (
	"context"
	"testing"
	"time"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/app/services"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/repository"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const authTestPassword = "SenhaForte123!"

// Fakes embed the repository interface; calling a method they do not override panics.
type fakeAdminRepo struct {
	repository.AdminRepository
	byEmail map[string]*models.Admin
}

func (r *fakeAdminRepo) ByEmail(_ context.Context, email string) (*models.Admin, error) {
	return r.byEmail[email], nil
}

type fakeCompanyRepo struct {
	repository.CompanyRepository
	byEmail map[string]*models.Company
}

func (r *fakeCompanyRepo) ByContactEmail(_ context.Context, email string) (*models.Company, error) {
	return r.byEmail[email], nil
}

type fakeResearcherRepo struct {
	repository.ResearcherRepository
	byEmail map[string]*models.Researcher
}

func (r *fakeResearcherRepo) ByEmail(_ context.Context, email string) (*models.Researcher, error) {
	return r.byEmail[email], nil
}

type fakeAuditRepo struct {
	entries []*models.AuditLog
}

func (r *fakeAuditRepo) Save(_ context.Context, entity *models.AuditLog) error {
	r.entries = append(r.entries, entity)
	return nil
}

func (r *fakeAuditRepo) ByFilter(context.Context, models.AuditLogFilter, string, int, int) ([]*models.AuditLog, error) {
	return r.entries, nil
}

type fakeCaptcha struct {
	accept bool
}

func (c *fakeCaptcha) GenerateRotate(context.Context) (*services.RotateChallenge, error) {
	return &services.RotateChallenge{ID: "challenge", ExpiresAt: time.Now().Add(time.Minute)}, nil
}

func (c *fakeCaptcha) VerifyRotate(_ context.Context, challengeID string, _ float64) (bool, error) {
	return c.accept && challengeID == "challenge", nil
}

type authFixture struct {
	flow       AuthFlow
	audit      *fakeAuditRepo
	tracking   services.TrackingStore
	captcha    *fakeCaptcha
	admin      *models.Admin
	company    *models.Company
	inactive   *models.Company
	researcher *models.Researcher
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(authTestPassword), bcrypt.MinCost)
	require.NoError(t, err)
	h := utils.ToPtr(string(hash))

	f := &authFixture{
		audit:      &fakeAuditRepo{},
		captcha:    &fakeCaptcha{accept: true},
		admin:      &models.Admin{ID: uuid.New(), Name: "Ana", Email: "ana@pesquisa.com", IsActive: true, PasswordHash: h},
		company:    &models.Company{ID: uuid.New(), Name: "Mercado Azul", IsActive: true, PasswordHash: h},
		inactive:   &models.Company{ID: uuid.New(), Name: "Padaria Sol", IsActive: false, PasswordHash: h},
		researcher: &models.Researcher{ID: uuid.New(), Name: "Rita", Email: "rita@pesquisa.com", IsActive: true, PasswordHash: h},
	}

	state := services.NewMemoryStateStore(0)
	tokens, err := services.NewTokenService(time.Hour, "pesquisa-campo", "pesquisa-campo-api", false, "", "", "test-secret-key", state)
	require.NoError(t, err)
	f.tracking = services.NewTrackingStore(state, time.Hour)

	f.flow = NewAuthFlow(
		&fakeAdminRepo{byEmail: map[string]*models.Admin{f.admin.Email: f.admin}},
		&fakeCompanyRepo{byEmail: map[string]*models.Company{"contato@azul.com": f.company, "contato@sol.com": f.inactive}},
		&fakeResearcherRepo{byEmail: map[string]*models.Researcher{f.researcher.Email: f.researcher}},
		f.audit,
		tokens,
		f.captcha,
		NewTrackingFlow(f.tracking, &fakePointRepo{}),
	)
	return f
}

func TestAuthFlow_Login(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	t.Run("CompanyEmailIsCaseInsensitive", func(t *testing.T) {
		resp, err := f.flow.Login(ctx, &dto.LoginRequest{Role: "COMPANY", Email: " Contato@Azul.com ", Password: authTestPassword}, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, f.company.ID.String(), resp.User.ID)
		assert.Equal(t, "COMPANY", resp.User.Role)
		assert.False(t, resp.Tracking)
	})

	t.Run("ResearcherStartsTracking", func(t *testing.T) {
		resp, err := f.flow.Login(ctx, &dto.LoginRequest{Role: "RESEARCHER", Email: f.researcher.Email, Password: authTestPassword}, nil)
		require.NoError(t, err)
		assert.True(t, resp.Tracking)

		active, err := f.tracking.Active(ctx, f.researcher.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, active)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		_, err := f.flow.Login(ctx, &dto.LoginRequest{Role: "COMPANY", Email: "contato@azul.com", Password: "errada123"}, nil)
		assert.True(t, IsIncorrectPassword(err))
	})

	t.Run("UnknownAccount", func(t *testing.T) {
		_, err := f.flow.Login(ctx, &dto.LoginRequest{Role: "RESEARCHER", Email: "ninguem@pesquisa.com", Password: authTestPassword}, nil)
		assert.True(t, IsAccountNotFound(err))
	})

	t.Run("InactiveAccount", func(t *testing.T) {
		_, err := f.flow.Login(ctx, &dto.LoginRequest{Role: "COMPANY", Email: "contato@sol.com", Password: authTestPassword}, nil)
		assert.True(t, IsAccountInactive(err))
	})

	t.Run("AdminCannotUseThisLogin", func(t *testing.T) {
		_, err := f.flow.Login(ctx, &dto.LoginRequest{Role: "ADMIN", Email: f.admin.Email, Password: authTestPassword}, nil)
		assert.ErrorIs(t, err, ErrRoleNotAllowed)
	})

	t.Run("AttemptsAreAudited", func(t *testing.T) {
		var ok, failed int
		for _, e := range f.audit.entries {
			switch e.Action {
			case models.AuditActionLoginSuccess:
				ok++
			case models.AuditActionLoginFailed:
				failed++
				assert.False(t, e.Success)
			}
		}
		assert.Equal(t, 2, ok)
		assert.Equal(t, 3, failed)
	})
}

func TestAuthFlow_AdminLogin(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	challenge, err := f.flow.InitAdminCaptcha(ctx)
	require.NoError(t, err)
	assert.Equal(t, "challenge", challenge.ChallengeID)

	req := &dto.AdminLoginRequest{ChallengeID: "challenge", Email: "ANA@pesquisa.com", Password: authTestPassword}

	f.captcha.accept = false
	_, err = f.flow.AdminLogin(ctx, req, nil)
	assert.True(t, IsCaptchaInvalid(err))

	f.captcha.accept = true
	resp, err := f.flow.AdminLogin(ctx, req, nil)
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", resp.User.Role)
	assert.Equal(t, "Ana", resp.User.Name)

	_, err = f.flow.AdminLogin(ctx, &dto.AdminLoginRequest{Email: f.admin.Email, Password: authTestPassword}, nil)
	assert.True(t, IsCaptchaInvalid(err))
}

func TestAuthFlow_AuthenticateAndLogout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	resp, err := f.flow.Login(ctx, &dto.LoginRequest{Role: "RESEARCHER", Email: f.researcher.Email, Password: authTestPassword}, nil)
	require.NoError(t, err)

	session, err := f.flow.Authenticate(ctx, resp.AccessToken, NewClientMetadata("10.0.0.1", "test"))
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleResearcher, session.Role)
	assert.Equal(t, f.researcher.ID, session.ProfileID)
	assert.Equal(t, "10.0.0.1", session.Metadata.IPAddress)

	out, err := f.flow.Logout(ctx, session)
	require.NoError(t, err)
	assert.NotEmpty(t, out.Message)

	active, err := f.tracking.Active(ctx, f.researcher.ID)
	require.NoError(t, err)
	assert.Empty(t, active, "logout stops tracking")

	_, err = f.flow.Authenticate(ctx, resp.AccessToken, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionRequired)

	_, err = f.flow.Authenticate(ctx, "not-a-jwt", nil)
	assert.ErrorIs(t, err, ErrSessionRequired)
}
