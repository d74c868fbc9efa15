package handlers

import (
	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/app/middleware"
	businessflow "github.com/amirphl/pesquisa-campo/business_flow"
	"github.com/gofiber/fiber/v3"
)

// TrackingHandlerInterface defines the contract for location tracking handlers
type TrackingHandlerInterface interface {
	Start(c fiber.Ctx) error
	Stop(c fiber.Ctx) error
	RecordSample(c fiber.Ctx) error
	ReportError(c fiber.Ctx) error
	Route(c fiber.Ctx) error
}

// TrackingHandler serves the researcher location feed and the admin route view
type TrackingHandler struct {
	baseHandler
	flow businessflow.TrackingFlow
}

func NewTrackingHandler(flow businessflow.TrackingFlow) TrackingHandlerInterface {
	return &TrackingHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

// Start begins a tracking session for the researcher
// @Summary Start tracking
// @Tags Researcher
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.TrackingStatusResponse} "Tracking started"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Failed to start tracking"
// @Router /api/v1/researcher/tracking/start [post]
func (h *TrackingHandler) Start(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.Start(ctx, h.session(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to start tracking", "TRACKING_START_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tracking started", result)
}

// Stop ends the researcher's tracking session
// @Summary Stop tracking
// @Tags Researcher
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.TrackingStatusResponse} "Tracking stopped"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Failed to stop tracking"
// @Router /api/v1/researcher/tracking/stop [post]
func (h *TrackingHandler) Stop(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.Stop(ctx, h.session(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to stop tracking", "TRACKING_STOP_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Tracking stopped", result)
}

// RecordSample accepts one position. The sample is fire-and-forget: storage failures never reach the device.
// @Summary Record location sample
// @Tags Researcher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.LocationSampleRequest true "Position"
// @Success 202 {object} dto.APIResponse "Sample accepted"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/researcher/tracking/samples [post]
func (h *TrackingHandler) RecordSample(c fiber.Ctx) error {
	var req dto.LocationSampleRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	outcome, err := h.flow.RecordSample(ctx, h.session(c), &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to record sample", "TRACKING_SAMPLE_FAILED")
	}
	middleware.ObserveLocationSample(outcome)

	return h.SuccessResponse(c, fiber.StatusAccepted, "Sample accepted", nil)
}

// ReportError reports a device geolocation failure; the response says whether to show permission guidance
// @Summary Report geolocation error
// @Tags Researcher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GeolocationErrorRequest true "Geolocation error"
// @Success 200 {object} dto.APIResponse{data=dto.GeolocationErrorResponse} "Error recorded"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Router /api/v1/researcher/tracking/errors [post]
func (h *TrackingHandler) ReportError(c fiber.Ctx) error {
	var req dto.GeolocationErrorRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.ReportGeolocationError(ctx, h.session(c), &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to record geolocation error", "TRACKING_ERROR_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Error recorded", result)
}

// Route returns one researcher's points for a calendar day
// @Summary Researcher route
// @Tags Admin Directory
// @Produce json
// @Security BearerAuth
// @Param id path string true "Researcher ID"
// @Param date query string true "Day (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.RouteResponse} "Route retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid date"
// @Failure 404 {object} dto.APIResponse "Researcher not found"
// @Failure 500 {object} dto.APIResponse "Failed to fetch route"
// @Router /api/v1/admin/researchers/{id}/route [get]
func (h *TrackingHandler) Route(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.Route(ctx, h.session(c), c.Params("id"), c.Query("date"))
	if err != nil {
		return h.FlowError(c, err, "Failed to fetch route", "ROUTE_FETCH_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Route retrieved successfully", result)
}
