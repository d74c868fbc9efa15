package handlers

import (
	"github.com/amirphl/pesquisa-campo/app/dto"
	businessflow "github.com/amirphl/pesquisa-campo/business_flow"
	"github.com/gofiber/fiber/v3"
)

// ResponseHandlerInterface defines the contract for survey response handlers
type ResponseHandlerInterface interface {
	SubmitResponse(c fiber.Ctx) error
	ListResponses(c fiber.Ctx) error
}

// ResponseHandler serves survey submissions and the admin response feed
type ResponseHandler struct {
	baseHandler
	flow businessflow.ResponseFlow
}

func NewResponseHandler(flow businessflow.ResponseFlow) ResponseHandlerInterface {
	return &ResponseHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

// SubmitResponse stores a completed survey
// @Summary Submit survey response
// @Description Store a respondent's answers collected by the authenticated researcher
// @Tags Researcher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SubmitResponseRequest true "Survey response"
// @Success 201 {object} dto.APIResponse{data=dto.SubmitResponseResponse} "Response stored"
// @Failure 400 {object} dto.APIResponse "Validation error or inactive campaign"
// @Failure 403 {object} dto.APIResponse "Campaign not assigned"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 500 {object} dto.APIResponse "Failed to save survey response"
// @Router /api/v1/researcher/responses [post]
func (h *ResponseHandler) SubmitResponse(c fiber.Ctx) error {
	var req dto.SubmitResponseRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.SubmitResponse(ctx, h.session(c), &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to save survey response", "RESPONSE_SAVE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// ListResponses returns every survey response with its answers
// @Summary List responses
// @Tags Admin Campaigns
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ListResponsesResponse} "Responses retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Failed to fetch responses"
// @Router /api/v1/admin/responses [get]
func (h *ResponseHandler) ListResponses(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.ListResponses(ctx, h.session(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to fetch responses", "RESPONSE_LIST_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Responses retrieved successfully", result)
}
