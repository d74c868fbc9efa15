package handlers

import (
	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/app/middleware"
	businessflow "github.com/amirphl/pesquisa-campo/business_flow"
	"github.com/gofiber/fiber/v3"
)

// CampaignHandlerInterface defines the contract for campaign handlers
type CampaignHandlerInterface interface {
	ListCampaigns(c fiber.Ctx) error
	GetCampaign(c fiber.Ctx) error
	CreateCampaign(c fiber.Ctx) error
	UpdateCampaign(c fiber.Ctx) error
	AvailableCampaigns(c fiber.Ctx) error
	NextQuestion(c fiber.Ctx) error
}

// CampaignHandler serves campaign reads and direct saves for admins and the researcher survey runner
type CampaignHandler struct {
	baseHandler
	campaigns businessflow.CampaignFlow
	responses businessflow.ResponseFlow
}

func NewCampaignHandler(campaigns businessflow.CampaignFlow, responses businessflow.ResponseFlow) CampaignHandlerInterface {
	return &CampaignHandler{
		baseHandler: newBaseHandler(),
		campaigns:   campaigns,
		responses:   responses,
	}
}

// ListCampaigns returns every campaign with its questionnaire and links
// @Summary List campaigns
// @Description Full campaigns with questions, options, company and researcher links
// @Tags Admin Campaigns
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ListCampaignsResponse} "Campaigns retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/campaigns [get]
func (h *CampaignHandler) ListCampaigns(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.campaigns.ListFullCampaigns(ctx, h.session(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to fetch campaigns", "CAMPAIGN_LIST_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaigns retrieved successfully", result)
}

// GetCampaign returns one campaign; researchers only see campaigns assigned to them
// @Summary Get campaign
// @Tags Campaigns
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Success 200 {object} dto.APIResponse{data=dto.Campaign} "Campaign retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid campaign id"
// @Failure 403 {object} dto.APIResponse "Campaign not assigned"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/campaigns/{id} [get]
// @Router /api/v1/researcher/campaigns/{id} [get]
func (h *CampaignHandler) GetCampaign(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.campaigns.GetCampaign(ctx, h.session(c), c.Params("id"))
	if err != nil {
		return h.FlowError(c, err, "Failed to fetch campaign", "CAMPAIGN_FETCH_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaign retrieved successfully", result)
}

// CreateCampaign saves a new campaign with its questionnaire in one step
// @Summary Create campaign
// @Description Persist a complete campaign draft. Question ids and jump targets may be temporary (q_ prefix).
// @Tags Admin Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SaveCampaignRequest true "Campaign draft"
// @Success 201 {object} dto.APIResponse{data=dto.SaveCampaignResponse} "Campaign saved"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Failed to save campaign"
// @Router /api/v1/admin/campaigns [post]
func (h *CampaignHandler) CreateCampaign(c fiber.Ctx) error {
	var req dto.SaveCampaignRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}
	req.ID = ""

	return h.save(c, &req.Campaign, fiber.StatusCreated)
}

// UpdateCampaign replaces a campaign and its children; the body must carry the version it was loaded with
// @Summary Update campaign
// @Tags Admin Campaigns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param request body dto.SaveCampaignRequest true "Campaign draft"
// @Success 200 {object} dto.APIResponse{data=dto.SaveCampaignResponse} "Campaign saved"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 409 {object} dto.APIResponse "Campaign was modified concurrently"
// @Failure 500 {object} dto.APIResponse "Failed to save campaign"
// @Router /api/v1/admin/campaigns/{id} [put]
func (h *CampaignHandler) UpdateCampaign(c fiber.Ctx) error {
	var req dto.SaveCampaignRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}
	req.ID = c.Params("id")

	return h.save(c, &req.Campaign, fiber.StatusOK)
}

func (h *CampaignHandler) save(c fiber.Ctx, campaign *dto.Campaign, status int) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.campaigns.SaveCampaign(ctx, h.session(c), campaign)
	middleware.ObserveCampaignSave(saveOutcome(err))
	if err != nil {
		return h.FlowError(c, err, "Failed to save campaign", "CAMPAIGN_SAVE_FAILED")
	}

	return h.SuccessResponse(c, status, result.Message, result)
}

func saveOutcome(err error) string {
	switch {
	case err == nil:
		return middleware.SaveOutcomeSaved
	case businessflow.IsCampaignVersionConflict(err):
		return middleware.SaveOutcomeConflict
	case businessflow.IsCampaignValidationError(err):
		return middleware.SaveOutcomeInvalid
	default:
		return middleware.SaveOutcomeFailed
	}
}

// AvailableCampaigns lists the researcher's active campaigns with progress toward each goal
// @Summary Available campaigns
// @Tags Researcher
// @Produce json
// @Security BearerAuth
// @Param search query string false "Case-insensitive name filter"
// @Success 200 {object} dto.APIResponse{data=dto.ListAvailableCampaignsResponse} "Campaigns retrieved"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/researcher/campaigns [get]
func (h *CampaignHandler) AvailableCampaigns(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.campaigns.AvailableCampaigns(ctx, h.session(c), c.Query("search"))
	if err != nil {
		return h.FlowError(c, err, "Failed to fetch campaigns", "CAMPAIGN_LIST_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Campaigns retrieved successfully", result)
}

// NextQuestion resolves where the survey goes after an answer
// @Summary Next question
// @Description Apply the answer's jump rule: a jump target, the end of the survey, or the next question in order
// @Tags Researcher
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Campaign ID"
// @Param request body dto.NextQuestionRequest true "Current question and answer"
// @Success 200 {object} dto.APIResponse{data=dto.NextQuestionResponse} "Next step"
// @Failure 400 {object} dto.APIResponse "Unknown question or inactive campaign"
// @Failure 403 {object} dto.APIResponse "Campaign not assigned"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Router /api/v1/researcher/campaigns/{id}/next [post]
func (h *CampaignHandler) NextQuestion(c fiber.Ctx) error {
	var req dto.NextQuestionRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.responses.NextQuestion(ctx, h.session(c), c.Params("id"), &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to resolve next question", "NEXT_QUESTION_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Next step resolved", result)
}
