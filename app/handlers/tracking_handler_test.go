package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/app/middleware"
	"github.com/amirphl/pesquisa-campo/app/services"
	businessflow "github.com/amirphl/pesquisa-campo/business_flow"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryPointRepo struct {
	points []*models.LocationPoint
}

func (r *memoryPointRepo) Save(_ context.Context, point *models.LocationPoint) error {
	r.points = append(r.points, point)
	return nil
}

func (r *memoryPointRepo) Route(_ context.Context, researcherID uuid.UUID, from, to time.Time) ([]*models.LocationPoint, error) {
	var out []*models.LocationPoint
	for _, p := range r.points {
		if p.ResearcherID == researcherID && !p.Timestamp.Before(from) && !p.Timestamp.After(to) {
			out = append(out, p)
		}
	}
	return out, nil
}

func newTrackingApp(session *businessflow.Session, repo *memoryPointRepo) *fiber.App {
	store := services.NewTrackingStore(services.NewMemoryStateStore(0), time.Hour)
	h := NewTrackingHandler(businessflow.NewTrackingFlow(store, repo))

	app := fiber.New()
	app.Use(middleware.WithSession(session))
	app.Post("/tracking/start", h.Start)
	app.Post("/tracking/samples", h.RecordSample)
	app.Post("/tracking/errors", h.ReportError)
	app.Get("/researchers/:id/route", h.Route)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, dto.APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out dto.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestTrackingHandler_SampleFeed(t *testing.T) {
	repo := &memoryPointRepo{}
	researcher := &businessflow.Session{Role: models.UserRoleResearcher, ProfileID: uuid.New()}
	app := newTrackingApp(researcher, repo)

	status, body := doJSON(t, app, http.MethodPost, "/tracking/samples", `{"lat":-23.5,"lng":-46.6}`)
	assert.Equal(t, fiber.StatusAccepted, status)
	assert.True(t, body.Success)
	assert.Empty(t, repo.points, "samples outside a tracking session are dropped")

	status, _ = doJSON(t, app, http.MethodPost, "/tracking/start", "")
	require.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, app, http.MethodPost, "/tracking/samples", `{"lat":-23.5,"lng":-46.6}`)
	assert.Equal(t, fiber.StatusAccepted, status)
	assert.Len(t, repo.points, 1)

	status, body = doJSON(t, app, http.MethodPost, "/tracking/samples", `{"lat":123,"lng":0}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	require.NotNil(t, body.Error)
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)

	status, body = doJSON(t, app, http.MethodPost, "/tracking/errors", `{"code":1,"message":"denied"}`)
	assert.Equal(t, fiber.StatusOK, status)
	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["notify"])
}

func TestTrackingHandler_Route(t *testing.T) {
	researcherID := uuid.New()
	repo := &memoryPointRepo{points: []*models.LocationPoint{
		{ResearcherID: researcherID, Latitude: -23.5, Longitude: -46.6, Timestamp: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)},
	}}

	admin := newTrackingApp(&businessflow.Session{Role: models.UserRoleAdmin, ProfileID: uuid.New()}, repo)

	status, body := doJSON(t, admin, http.MethodGet, "/researchers/"+researcherID.String()+"/route?date=2024-03-10", "")
	assert.Equal(t, fiber.StatusOK, status)
	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	assert.Len(t, data["points"], 1)
	assert.Equal(t, false, data["empty"])

	status, body = doJSON(t, admin, http.MethodGet, "/researchers/"+researcherID.String()+"/route?date=10-03-2024", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "INVALID_ROUTE_DATE", body.Error.Code)

	researcher := newTrackingApp(&businessflow.Session{Role: models.UserRoleResearcher, ProfileID: researcherID}, repo)
	status, _ = doJSON(t, researcher, http.MethodGet, "/researchers/"+researcherID.String()+"/route?date=2024-03-10", "")
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{businessflow.ErrSessionRequired, fiber.StatusUnauthorized},
		{businessflow.NewBusinessError("LOGIN_FAILED", "x", businessflow.ErrIncorrectPassword), fiber.StatusUnauthorized},
		{businessflow.ErrAccountInactive, fiber.StatusForbidden},
		{businessflow.ErrCampaignNotAssigned, fiber.StatusForbidden},
		{businessflow.ErrCampaignNotFound, fiber.StatusNotFound},
		{businessflow.ErrDraftNotFound, fiber.StatusNotFound},
		{businessflow.NewBusinessError("CAMPAIGN_VERSION_CONFLICT", "x", businessflow.ErrCampaignVersionConflict), fiber.StatusConflict},
		{businessflow.ErrVoucherExhausted, fiber.StatusConflict},
		{businessflow.ErrDraftStoreUnavailable, fiber.StatusServiceUnavailable},
		{businessflow.ErrCampaignNameRequired, fiber.StatusBadRequest},
		{businessflow.ErrEndTimeRequiresStartTime, fiber.StatusBadRequest},
		{businessflow.ErrQuestionNotFound, fiber.StatusBadRequest},
		{businessflow.NewBusinessError("VALIDATION_ERROR", "x", nil), fiber.StatusBadRequest},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), tt.err.Error())
	}
}
