package businessflow

import (
	"context"
	"time"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/app/services"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/repository"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Outcomes of a location sample, used as a metric label
const (
	SampleOutcomeRecorded = "recorded"
	SampleOutcomeDropped  = "dropped"
	SampleOutcomeFailed   = "failed"
)

const (
	// GeolocationPermissionDenied is the browser PositionError code for a refused permission
	GeolocationPermissionDenied = 1

	geolocationPermissionMessage = "Para usar o rastreamento, por favor, habilite a permissão de localização para este site nas configurações do seu navegador."
	emptyRouteMessage            = "Nenhum dado para esta data"
)

// TrackingFlow handles the researcher location feed and route queries
type TrackingFlow interface {
	Start(ctx context.Context, session *Session) (*dto.TrackingStatusResponse, error)
	Stop(ctx context.Context, session *Session) (*dto.TrackingStatusResponse, error)
	// RecordSample never fails for an authenticated researcher; the outcome is informational
	RecordSample(ctx context.Context, session *Session, req *dto.LocationSampleRequest) (string, error)
	ReportGeolocationError(ctx context.Context, session *Session, req *dto.GeolocationErrorRequest) (*dto.GeolocationErrorResponse, error)
	Route(ctx context.Context, session *Session, researcherID, date string) (*dto.RouteResponse, error)
}

// TrackingFlowImpl implements the tracking business flow
type TrackingFlowImpl struct {
	sessions  services.TrackingStore
	pointRepo repository.LocationPointRepository
}

// NewTrackingFlow creates a new tracking flow instance
func NewTrackingFlow(sessions services.TrackingStore, pointRepo repository.LocationPointRepository) TrackingFlow {
	return &TrackingFlowImpl{
		sessions:  sessions,
		pointRepo: pointRepo,
	}
}

func (f *TrackingFlowImpl) Start(ctx context.Context, session *Session) (*dto.TrackingStatusResponse, error) {
	if err := session.Require(models.UserRoleResearcher); err != nil {
		return nil, err
	}
	if _, err := f.sessions.Start(ctx, session.ProfileID); err != nil {
		return nil, NewBusinessError("TRACKING_START_FAILED", "Failed to start tracking", err)
	}
	log.WithField("researcher_id", session.ProfileID).Info("tracking started")
	return &dto.TrackingStatusResponse{Active: true}, nil
}

func (f *TrackingFlowImpl) Stop(ctx context.Context, session *Session) (*dto.TrackingStatusResponse, error) {
	if err := session.Require(models.UserRoleResearcher); err != nil {
		return nil, err
	}
	if err := f.sessions.Stop(ctx, session.ProfileID); err != nil {
		return nil, NewBusinessError("TRACKING_STOP_FAILED", "Failed to stop tracking", err)
	}
	log.WithField("researcher_id", session.ProfileID).Info("tracking stopped")
	return &dto.TrackingStatusResponse{Active: false}, nil
}

// RecordSample appends a point while tracking is active. Storage failures are logged and swallowed.
func (f *TrackingFlowImpl) RecordSample(ctx context.Context, session *Session, req *dto.LocationSampleRequest) (string, error) {
	if err := session.Require(models.UserRoleResearcher); err != nil {
		return "", err
	}
	fields := log.Fields{"researcher_id": session.ProfileID}

	active, err := f.sessions.Active(ctx, session.ProfileID)
	if err != nil {
		log.WithError(err).WithFields(fields).Error("failed to read tracking session")
		return SampleOutcomeFailed, nil
	}
	if active == "" {
		log.WithFields(fields).Debug("location sample dropped, tracking inactive")
		return SampleOutcomeDropped, nil
	}

	point := &models.LocationPoint{
		ResearcherID: session.ProfileID,
		Latitude:     req.Lat,
		Longitude:    req.Lng,
		Timestamp:    utils.UTCNow(),
	}
	if err := f.pointRepo.Save(ctx, point); err != nil {
		log.WithError(err).WithFields(fields).Error("failed to store location sample")
		return SampleOutcomeFailed, nil
	}
	return SampleOutcomeRecorded, nil
}

// ReportGeolocationError asks the client to show the permission guidance once per tracking session
func (f *TrackingFlowImpl) ReportGeolocationError(ctx context.Context, session *Session, req *dto.GeolocationErrorRequest) (*dto.GeolocationErrorResponse, error) {
	if err := session.Require(models.UserRoleResearcher); err != nil {
		return nil, err
	}
	entry := log.WithFields(log.Fields{
		"researcher_id": session.ProfileID,
		"code":          req.Code,
		"message":       req.Message,
	})

	if req.Code != GeolocationPermissionDenied {
		entry.Warn("geolocation error")
		return &dto.GeolocationErrorResponse{Notify: false}, nil
	}

	trackingID, err := f.sessions.Active(ctx, session.ProfileID)
	if err != nil {
		entry.WithError(err).Error("failed to read tracking session")
		return &dto.GeolocationErrorResponse{Notify: false}, nil
	}
	if trackingID == "" {
		trackingID = session.TokenID
	}

	first, err := f.sessions.MarkPermissionNotified(ctx, session.ProfileID, trackingID)
	if err != nil {
		entry.WithError(err).Error("failed to record permission notice")
		return &dto.GeolocationErrorResponse{Notify: false}, nil
	}
	entry.WithField("notify", first).Warn("geolocation permission denied")
	if !first {
		return &dto.GeolocationErrorResponse{Notify: false}, nil
	}
	return &dto.GeolocationErrorResponse{Notify: true, Message: geolocationPermissionMessage}, nil
}

// Route returns a researcher's points for one UTC calendar day, oldest first
func (f *TrackingFlowImpl) Route(ctx context.Context, session *Session, researcherID, date string) (*dto.RouteResponse, error) {
	if err := session.Require(models.UserRoleAdmin); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(researcherID)
	if err != nil {
		return nil, NewBusinessError("RESEARCHER_NOT_FOUND", "Researcher not found", ErrResearcherNotFound)
	}
	from, to, err := RouteWindow(date)
	if err != nil {
		return nil, NewBusinessError("INVALID_ROUTE_DATE", "Date must be formatted as YYYY-MM-DD", err)
	}

	rows, err := f.pointRepo.Route(ctx, id, from, to)
	if err != nil {
		return nil, NewBusinessError("ROUTE_FETCH_FAILED", "Failed to fetch route", err)
	}

	out := &dto.RouteResponse{
		ResearcherID: id.String(),
		Date:         date,
		Points:       make([]dto.LocationPoint, 0, len(rows)),
	}
	for _, row := range rows {
		out.Points = append(out.Points, ToLocationPointDTO(row))
	}
	if len(out.Points) == 0 {
		out.Empty = true
		out.Message = emptyRouteMessage
		return out, nil
	}
	start, end := out.Points[0], out.Points[len(out.Points)-1]
	out.Start, out.End = &start, &end
	return out, nil
}

// RouteWindow returns [date 00:00:00Z, date 23:59:59Z]; both bounds are inclusive
func RouteWindow(date string) (time.Time, time.Time, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidRouteDate
	}
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, time.UTC)
	return from, to, nil
}
