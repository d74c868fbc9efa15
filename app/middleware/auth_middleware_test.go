package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/amirphl/pesquisa-campo/app/dto"
	businessflow "github.com/amirphl/pesquisa-campo/business_flow"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthFlow struct {
	sessions map[string]*businessflow.Session
	err      error
}

func (f *fakeAuthFlow) Login(context.Context, *dto.LoginRequest, *businessflow.ClientMetadata) (*dto.LoginResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuthFlow) InitAdminCaptcha(context.Context) (*dto.CaptchaInitResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuthFlow) AdminLogin(context.Context, *dto.AdminLoginRequest, *businessflow.ClientMetadata) (*dto.LoginResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuthFlow) Logout(context.Context, *businessflow.Session) (*dto.LogoutResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuthFlow) Authenticate(_ context.Context, token string, _ *businessflow.ClientMetadata) (*businessflow.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return nil, businessflow.NewBusinessError("TOKEN_INVALID", "Invalid token", errors.New("unknown token"))
}

func TestAuthenticate(t *testing.T) {
	admin := &businessflow.Session{Role: models.UserRoleAdmin, ProfileID: uuid.New(), Name: "Ana"}
	company := &businessflow.Session{Role: models.UserRoleCompany, ProfileID: uuid.New()}
	flow := &fakeAuthFlow{sessions: map[string]*businessflow.Session{"admin-token": admin, "company-token": company}}

	app := fiber.New()
	app.Get("/admin", NewAuthMiddleware(flow).Authenticate(models.UserRoleAdmin), func(c fiber.Ctx) error {
		return c.SendString(SessionFromContext(c).Name)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{name: "missing header", wantStatus: fiber.StatusUnauthorized, wantCode: "MISSING_AUTHORIZATION_HEADER"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: fiber.StatusUnauthorized, wantCode: "INVALID_AUTHORIZATION_FORMAT"},
		{name: "empty token", header: "Bearer   ", wantStatus: fiber.StatusUnauthorized, wantCode: "MISSING_ACCESS_TOKEN"},
		{name: "bare scheme", header: "Bearer", wantStatus: fiber.StatusUnauthorized, wantCode: "MISSING_ACCESS_TOKEN"},
		{name: "scheme without separator", header: "Bearerabc", wantStatus: fiber.StatusUnauthorized, wantCode: "INVALID_AUTHORIZATION_FORMAT"},
		{name: "unknown token", header: "Bearer nope", wantStatus: fiber.StatusUnauthorized, wantCode: "TOKEN_INVALID"},
		{name: "wrong role", header: "Bearer company-token", wantStatus: fiber.StatusForbidden, wantCode: "FORBIDDEN"},
		{name: "admin", header: "Bearer admin-token", wantStatus: fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantCode == "" {
				return
			}
			var body dto.APIResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestAuthenticate_StoreUnavailable(t *testing.T) {
	flow := &fakeAuthFlow{err: businessflow.NewBusinessError("AUTH_UNAVAILABLE", "Authentication unavailable", errors.New("redis down"))}

	app := fiber.New()
	app.Get("/me", NewAuthMiddleware(flow).Authenticate(), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer anything")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}
