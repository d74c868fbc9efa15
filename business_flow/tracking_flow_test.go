package businessflow

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/app/services"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePointRepo struct {
	points  []*models.LocationPoint
	saveErr error
}

func (r *fakePointRepo) Save(_ context.Context, point *models.LocationPoint) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.points = append(r.points, point)
	return nil
}

func (r *fakePointRepo) Route(_ context.Context, researcherID uuid.UUID, from, to time.Time) ([]*models.LocationPoint, error) {
	var out []*models.LocationPoint
	for _, p := range r.points {
		if p.ResearcherID == researcherID && !p.Timestamp.Before(from) && !p.Timestamp.After(to) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func newTestTrackingFlow() (TrackingFlow, *fakePointRepo) {
	repo := &fakePointRepo{}
	store := services.NewTrackingStore(services.NewMemoryStateStore(0), time.Hour)
	return NewTrackingFlow(store, repo), repo
}

func TestTrackingFlow_RecordSample(t *testing.T) {
	ctx := context.Background()
	flow, repo := newTestTrackingFlow()
	researcher := &Session{Role: models.UserRoleResearcher, ProfileID: uuid.New(), TokenID: "tok"}
	sample := &dto.LocationSampleRequest{Lat: -23.55, Lng: -46.63}

	outcome, err := flow.RecordSample(ctx, researcher, sample)
	require.NoError(t, err)
	assert.Equal(t, SampleOutcomeDropped, outcome)

	status, err := flow.Start(ctx, researcher)
	require.NoError(t, err)
	assert.True(t, status.Active)

	outcome, err = flow.RecordSample(ctx, researcher, sample)
	require.NoError(t, err)
	assert.Equal(t, SampleOutcomeRecorded, outcome)
	require.Len(t, repo.points, 1)
	assert.Equal(t, researcher.ProfileID, repo.points[0].ResearcherID)

	repo.saveErr = errors.New("connection reset")
	outcome, err = flow.RecordSample(ctx, researcher, sample)
	require.NoError(t, err, "storage failures never reach the researcher")
	assert.Equal(t, SampleOutcomeFailed, outcome)

	status, err = flow.Stop(ctx, researcher)
	require.NoError(t, err)
	assert.False(t, status.Active)

	_, err = flow.RecordSample(ctx, &Session{Role: models.UserRoleCompany, ProfileID: uuid.New()}, sample)
	assert.ErrorIs(t, err, ErrRoleNotAllowed)
}

func TestTrackingFlow_ReportGeolocationError(t *testing.T) {
	ctx := context.Background()
	flow, _ := newTestTrackingFlow()
	researcher := &Session{Role: models.UserRoleResearcher, ProfileID: uuid.New(), TokenID: "tok"}

	_, err := flow.Start(ctx, researcher)
	require.NoError(t, err)

	timeout, err := flow.ReportGeolocationError(ctx, researcher, &dto.GeolocationErrorRequest{Code: 3, Message: "timeout"})
	require.NoError(t, err)
	assert.False(t, timeout.Notify)

	first, err := flow.ReportGeolocationError(ctx, researcher, &dto.GeolocationErrorRequest{Code: GeolocationPermissionDenied})
	require.NoError(t, err)
	assert.True(t, first.Notify)
	assert.NotEmpty(t, first.Message)

	again, err := flow.ReportGeolocationError(ctx, researcher, &dto.GeolocationErrorRequest{Code: GeolocationPermissionDenied})
	require.NoError(t, err)
	assert.False(t, again.Notify)

	// a new tracking session shows the guidance again
	_, err = flow.Stop(ctx, researcher)
	require.NoError(t, err)
	_, err = flow.Start(ctx, researcher)
	require.NoError(t, err)
	renewed, err := flow.ReportGeolocationError(ctx, researcher, &dto.GeolocationErrorRequest{Code: GeolocationPermissionDenied})
	require.NoError(t, err)
	assert.True(t, renewed.Notify)
}

func TestTrackingFlow_Route(t *testing.T) {
	ctx := context.Background()
	flow, repo := newTestTrackingFlow()
	admin := &Session{Role: models.UserRoleAdmin, ProfileID: uuid.New()}
	researcherID := uuid.New()

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	repo.points = []*models.LocationPoint{
		{ResearcherID: researcherID, Latitude: 2, Longitude: 2, Timestamp: day.Add(18 * time.Hour)},
		{ResearcherID: researcherID, Latitude: 1, Longitude: 1, Timestamp: day.Add(8 * time.Hour)},
		{ResearcherID: researcherID, Latitude: 9, Longitude: 9, Timestamp: day.Add(24 * time.Hour)},
		{ResearcherID: uuid.New(), Latitude: 5, Longitude: 5, Timestamp: day.Add(9 * time.Hour)},
	}

	route, err := flow.Route(ctx, admin, researcherID.String(), "2024-03-10")
	require.NoError(t, err)
	assert.False(t, route.Empty)
	require.Len(t, route.Points, 2)
	require.NotNil(t, route.Start)
	require.NotNil(t, route.End)
	assert.Equal(t, 1.0, route.Start.Lat)
	assert.Equal(t, 2.0, route.End.Lat)

	empty, err := flow.Route(ctx, admin, researcherID.String(), "2024-03-12")
	require.NoError(t, err)
	assert.True(t, empty.Empty)
	assert.Equal(t, "Nenhum dado para esta data", empty.Message)
	assert.NotNil(t, empty.Points)
	assert.Nil(t, empty.Start)

	_, err = flow.Route(ctx, admin, researcherID.String(), "ontem")
	assert.True(t, IsInvalidRouteDate(err))

	_, err = flow.Route(ctx, &Session{Role: models.UserRoleResearcher, ProfileID: researcherID}, researcherID.String(), "2024-03-10")
	assert.ErrorIs(t, err, ErrRoleNotAllowed)
}
