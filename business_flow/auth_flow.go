package businessflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/app/services"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/repository"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthFlow handles login, logout and token authentication for all roles
type AuthFlow interface {
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	InitAdminCaptcha(ctx context.Context) (*dto.CaptchaInitResponse, error)
	AdminLogin(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Logout(ctx context.Context, session *Session) (*dto.LogoutResponse, error)
	// Authenticate turns a bearer token into the Session passed to every other flow
	Authenticate(ctx context.Context, token string, metadata *ClientMetadata) (*Session, error)
}

// AuthFlowImpl implements the authentication flow
type AuthFlowImpl struct {
	adminRepo      repository.AdminRepository
	companyRepo    repository.CompanyRepository
	researcherRepo repository.ResearcherRepository
	tokenService   services.TokenService
	captchaSvc     services.CaptchaService
	tracking       TrackingFlow
	audit          auditLogger
}

// NewAuthFlow creates a new authentication flow instance
func NewAuthFlow(
	adminRepo repository.AdminRepository,
	companyRepo repository.CompanyRepository,
	researcherRepo repository.ResearcherRepository,
	auditRepo repository.AuditLogRepository,
	tokenService services.TokenService,
	captchaSvc services.CaptchaService,
	tracking TrackingFlow,
) AuthFlow {
	return &AuthFlowImpl{
		adminRepo:      adminRepo,
		companyRepo:    companyRepo,
		researcherRepo: researcherRepo,
		tokenService:   tokenService,
		captchaSvc:     captchaSvc,
		tracking:       tracking,
		audit:          auditLogger{repo: auditRepo},
	}
}

// account is the part of a profile row that login needs
type account struct {
	id           uuid.UUID
	name         string
	isActive     bool
	passwordHash *string
}

// Login authenticates a company or researcher. A researcher's tracking session starts on success.
func (af *AuthFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	if req == nil {
		return nil, NewBusinessError("LOGIN_VALIDATION_FAILED", "Login validation failed", ErrAccountNotFound)
	}
	role := models.UserRole(req.Role)
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var acc *account
	switch role {
	case models.UserRoleCompany:
		row, err := af.companyRepo.ByContactEmail(ctx, email)
		if err != nil {
			return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to lookup account", err)
		}
		if row != nil {
			acc = &account{id: row.ID, name: row.Name, isActive: row.IsActive, passwordHash: row.PasswordHash}
		}
	case models.UserRoleResearcher:
		row, err := af.researcherRepo.ByEmail(ctx, email)
		if err != nil {
			return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to lookup account", err)
		}
		if row != nil {
			acc = &account{id: row.ID, name: row.Name, isActive: row.IsActive, passwordHash: row.PasswordHash}
		}
	default:
		return nil, NewBusinessError("LOGIN_VALIDATION_FAILED", "Role cannot log in here", ErrRoleNotAllowed)
	}

	session, err := af.verify(ctx, role, acc, req.Password, metadata)
	if err != nil {
		return nil, err
	}
	resp, err := af.issue(ctx, session)
	if err != nil {
		return nil, err
	}

	if role == models.UserRoleResearcher && af.tracking != nil {
		if _, err := af.tracking.Start(ctx, session); err != nil {
			log.WithError(err).WithField("researcher_id", session.ProfileID).Warn("failed to start tracking on login")
		} else {
			resp.Tracking = true
		}
	}
	return resp, nil
}

func (af *AuthFlowImpl) InitAdminCaptcha(ctx context.Context) (*dto.CaptchaInitResponse, error) {
	if af.captchaSvc == nil {
		return nil, NewBusinessError("CAPTCHA_NOT_AVAILABLE", "Captcha service not available", ErrCaptchaInvalid)
	}
	ch, err := af.captchaSvc.GenerateRotate(ctx)
	if err != nil {
		return nil, NewBusinessError("CAPTCHA_INIT_FAILED", "Failed to initialize captcha", err)
	}
	return &dto.CaptchaInitResponse{
		ChallengeID:       ch.ID,
		MasterImageBase64: ch.MasterImageBase64,
		ThumbImageBase64:  ch.ThumbImageBase64,
		ExpiresAt:         ch.ExpiresAt,
	}, nil
}

func (af *AuthFlowImpl) AdminLogin(ctx context.Context, req *dto.AdminLoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	if req == nil || req.ChallengeID == "" {
		return nil, NewBusinessError("CAPTCHA_INVALID", "Captcha challenge missing", ErrCaptchaInvalid)
	}

	// Verify captcha first
	if af.captchaSvc == nil {
		return nil, NewBusinessError("CAPTCHA_INVALID", "Captcha validation failed", ErrCaptchaInvalid)
	}
	ok, err := af.captchaSvc.VerifyRotate(ctx, req.ChallengeID, req.UserAngle)
	if err != nil {
		return nil, NewBusinessError("CAPTCHA_VERIFY_FAILED", "Failed to verify captcha", err)
	}
	if !ok {
		return nil, NewBusinessError("CAPTCHA_INVALID", "Captcha validation failed", ErrCaptchaInvalid)
	}

	row, err := af.adminRepo.ByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, NewBusinessError("ACCOUNT_LOOKUP_FAILED", "Failed to lookup account", err)
	}
	var acc *account
	if row != nil {
		acc = &account{id: row.ID, name: row.Name, isActive: row.IsActive, passwordHash: row.PasswordHash}
	}

	session, err := af.verify(ctx, models.UserRoleAdmin, acc, req.Password, metadata)
	if err != nil {
		return nil, err
	}
	return af.issue(ctx, session)
}

// Logout revokes the session token and stops a researcher's tracking
func (af *AuthFlowImpl) Logout(ctx context.Context, session *Session) (*dto.LogoutResponse, error) {
	if err := session.Require(models.UserRoleAdmin, models.UserRoleCompany, models.UserRoleResearcher); err != nil {
		return nil, err
	}

	claims := &services.TokenClaims{TokenID: session.TokenID, ExpiresAt: session.ExpiresAt}
	if err := af.tokenService.RevokeToken(ctx, claims); err != nil {
		return nil, NewBusinessError("LOGOUT_FAILED", "Failed to revoke session", err)
	}

	if session.Role == models.UserRoleResearcher && af.tracking != nil {
		if _, err := af.tracking.Stop(ctx, session); err != nil {
			log.WithError(err).WithField("researcher_id", session.ProfileID).Warn("failed to stop tracking on logout")
		}
	}

	af.audit.record(ctx, session, models.AuditActionLogout, fmt.Sprintf("%s logged out", session.Role), true, nil)
	return &dto.LogoutResponse{Message: "Logged out successfully"}, nil
}

func (af *AuthFlowImpl) Authenticate(ctx context.Context, token string, metadata *ClientMetadata) (*Session, error) {
	claims, err := af.tokenService.ValidateToken(ctx, token)
	if err != nil {
		if errors.Is(err, services.ErrTokenExpired) || errors.Is(err, services.ErrTokenInvalid) || errors.Is(err, services.ErrTokenRevoked) {
			return nil, NewBusinessError("INVALID_TOKEN", err.Error(), errors.Join(ErrSessionRequired, err))
		}
		return nil, NewBusinessError("AUTH_UNAVAILABLE", "Failed to validate token", err)
	}

	role := models.UserRole(claims.Role)
	if !role.Valid() {
		return nil, NewBusinessError("INVALID_TOKEN", "Unknown role", ErrSessionRequired)
	}
	return &Session{
		Role:      role,
		ProfileID: claims.ProfileID,
		Name:      claims.Name,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
		Metadata:  metadata,
	}, nil
}

// verify checks the account and password, auditing the attempt either way
func (af *AuthFlowImpl) verify(ctx context.Context, role models.UserRole, acc *account, password string, metadata *ClientMetadata) (*Session, error) {
	anonymous := &Session{Role: role, Metadata: metadata}
	fail := func(code, message string, cause error) error {
		errMsg := cause.Error()
		af.audit.record(ctx, anonymous, models.AuditActionLoginFailed, fmt.Sprintf("%s login failed", role), false, &errMsg)
		return NewBusinessError(code, message, cause)
	}

	if acc == nil {
		return nil, fail("INVALID_CREDENTIALS", "Invalid email or password", ErrAccountNotFound)
	}
	if !acc.isActive {
		return nil, fail("ACCOUNT_INACTIVE", "Account is inactive", ErrAccountInactive)
	}
	if acc.passwordHash == nil || bcrypt.CompareHashAndPassword([]byte(*acc.passwordHash), []byte(password)) != nil {
		return nil, fail("INVALID_CREDENTIALS", "Invalid email or password", ErrIncorrectPassword)
	}

	return &Session{Role: role, ProfileID: acc.id, Name: acc.name, Metadata: metadata}, nil
}

func (af *AuthFlowImpl) issue(ctx context.Context, session *Session) (*dto.LoginResponse, error) {
	token, claims, err := af.tokenService.GenerateToken(services.TokenSubject{
		Role:      session.Role.String(),
		ProfileID: session.ProfileID,
		Name:      session.Name,
	})
	if err != nil {
		return nil, NewBusinessError("TOKEN_GENERATION_FAILED", "Failed to generate token", err)
	}
	session.TokenID = claims.TokenID
	session.ExpiresAt = claims.ExpiresAt

	af.audit.record(ctx, session, models.AuditActionLoginSuccess, fmt.Sprintf("%s logged in", session.Role), true, nil)

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(claims.ExpiresAt.Sub(utils.UTCNow()).Seconds()),
		ExpiresAt:   claims.ExpiresAt,
		User: dto.SessionUser{
			ID:   session.ProfileID.String(),
			Role: session.Role.String(),
			Name: session.Name,
		},
	}, nil
}
