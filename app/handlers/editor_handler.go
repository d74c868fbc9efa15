package handlers

import (
	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/app/middleware"
	businessflow "github.com/amirphl/pesquisa-campo/business_flow"
	"github.com/gofiber/fiber/v3"
)

// EditorHandlerInterface defines the contract for the three-step campaign editor
type EditorHandlerInterface interface {
	OpenDraft(c fiber.Ctx) error
	GetDraft(c fiber.Ctx) error
	MoveStep(c fiber.Ctx) error
	UpdateDetails(c fiber.Ctx) error
	SetStartTime(c fiber.Ctx) error
	SetEndTime(c fiber.Ctx) error
	SetQuestions(c fiber.Ctx) error
	ToggleCompany(c fiber.Ctx) error
	ToggleResearcher(c fiber.Ctx) error
	TeamCandidates(c fiber.Ctx) error
	RequestConfirmation(c fiber.Ctx) error
	Confirm(c fiber.Ctx) error
	Cancel(c fiber.Ctx) error
	Save(c fiber.Ctx) error
}

// EditorHandler exposes campaign drafts over HTTP
type EditorHandler struct {
	baseHandler
	flow businessflow.CampaignEditorFlow
}

func NewEditorHandler(flow businessflow.CampaignEditorFlow) EditorHandlerInterface {
	return &EditorHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

// OpenDraft starts a draft, empty or loaded from an existing campaign
// @Summary Open campaign draft
// @Tags Campaign Editor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.OpenDraftRequest false "Campaign to edit; omit for a new campaign"
// @Success 201 {object} dto.APIResponse{data=dto.CampaignDraft} "Draft opened"
// @Failure 404 {object} dto.APIResponse "Campaign not found"
// @Failure 503 {object} dto.APIResponse "Draft store unavailable"
// @Router /api/v1/admin/campaign-drafts [post]
func (h *EditorHandler) OpenDraft(c fiber.Ctx) error {
	var req dto.OpenDraftRequest
	if len(c.Body()) > 0 {
		if ok, err := h.bindJSON(c, &req); !ok {
			return err
		}
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.OpenDraft(ctx, h.session(c), &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to open campaign draft", "DRAFT_OPEN_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Draft opened", result)
}

// GetDraft returns a draft
// @Summary Get campaign draft
// @Tags Campaign Editor
// @Produce json
// @Security BearerAuth
// @Param draft_id path string true "Draft ID"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignDraft} "Draft retrieved"
// @Failure 404 {object} dto.APIResponse "Draft not found or expired"
// @Router /api/v1/admin/campaign-drafts/{draft_id} [get]
func (h *EditorHandler) GetDraft(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.GetDraft(ctx, h.session(c), c.Params("draft_id"))
	if err != nil {
		return h.FlowError(c, err, "Failed to load campaign draft", "DRAFT_LOAD_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Draft retrieved", result)
}

// MoveStep navigates between details, questions and team
// @Summary Move editor step
// @Tags Campaign Editor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param draft_id path string true "Draft ID"
// @Param request body dto.DraftStepRequest true "next, back or goto"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignDraft} "Step changed"
// @Failure 400 {object} dto.APIResponse "Invalid step"
// @Router /api/v1/admin/campaign-drafts/{draft_id}/step [post]
func (h *EditorHandler) MoveStep(c fiber.Ctx) error {
	var req dto.DraftStepRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.MoveStep(ctx, h.session(c), c.Params("draft_id"), &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to change step", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Step changed", result)
}

// UpdateDetails patches the campaign fields of step one
// @Summary Update draft details
// @Tags Campaign Editor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param draft_id path string true "Draft ID"
// @Param request body dto.UpdateDraftDetailsRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignDraft} "Draft updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/admin/campaign-drafts/{draft_id}/details [patch]
func (h *EditorHandler) UpdateDetails(c fiber.Ctx) error {
	var req dto.UpdateDraftDetailsRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.UpdateDetails(ctx, h.session(c), c.Params("draft_id"), &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to update draft", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Draft updated", result)
}

// SetStartTime enables or disables the daily start time; disabling also clears the end time
// @Summary Toggle start time
// @Tags Campaign Editor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param draft_id path string true "Draft ID"
// @Param request body dto.ToggleTimeRequest true "Enabled flag and HH:MM value"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignDraft} "Draft updated"
// @Router /api/v1/admin/campaign-drafts/{draft_id}/start-time [post]
func (h *EditorHandler) SetStartTime(c fiber.Ctx) error {
	var req dto.ToggleTimeRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.SetStartTime(ctx, h.session(c), c.Params("draft_id"), &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to update draft", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Draft updated", result)
}

// SetEndTime enables or disables the daily end time; it requires an enabled start time
// @Summary Toggle end time
// @Tags Campaign Editor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param draft_id path string true "Draft ID"
// @Param request body dto.ToggleTimeRequest true "Enabled flag and HH:MM value"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignDraft} "Draft updated"
// @Failure 400 {object} dto.APIResponse "Start time not enabled"
// @Router /api/v1/admin/campaign-drafts/{draft_id}/end-time [post]
func (h *EditorHandler) SetEndTime(c fiber.Ctx) error {
	var req dto.ToggleTimeRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.SetEndTime(ctx, h.session(c), c.Params("draft_id"), &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to update draft", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Draft updated", result)
}

// SetQuestions replaces the questionnaire of step two
// @Summary Set draft questions
// @Description New questions and options may use temporary ids with the q_ prefix; jump targets may reference them
// @Tags Campaign Editor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param draft_id path string true "Draft ID"
// @Param request body dto.SetDraftQuestionsRequest true "Questions in display order"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignDraft} "Draft updated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Router /api/v1/admin/campaign-drafts/{draft_id}/questions [put]
func (h *EditorHandler) SetQuestions(c fiber.Ctx) error {
	var req dto.SetDraftQuestionsRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.SetQuestions(ctx, h.session(c), c.Params("draft_id"), &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to update draft", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Draft updated", result)
}

// ToggleCompany adds or removes a company link; inactive companies cannot be added
// @Summary Toggle draft company
// @Tags Campaign Editor
// @Produce json
// @Security BearerAuth
// @Param draft_id path string true "Draft ID"
// @Param company_id path string true "Company ID"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignDraft} "Draft updated"
// @Failure 400 {object} dto.APIResponse "Company inactive"
// @Failure 404 {object} dto.APIResponse "Company not found"
// @Router /api/v1/admin/campaign-drafts/{draft_id}/companies/{company_id}/toggle [post]
func (h *EditorHandler) ToggleCompany(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.ToggleCompany(ctx, h.session(c), c.Params("draft_id"), c.Params("company_id"))
	if err != nil {
		return h.FlowError(c, err, "Failed to update draft", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Draft updated", result)
}

// ToggleResearcher adds or removes a researcher link
// @Summary Toggle draft researcher
// @Tags Campaign Editor
// @Produce json
// @Security BearerAuth
// @Param draft_id path string true "Draft ID"
// @Param researcher_id path string true "Researcher ID"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignDraft} "Draft updated"
// @Failure 404 {object} dto.APIResponse "Researcher not found"
// @Router /api/v1/admin/campaign-drafts/{draft_id}/researchers/{researcher_id}/toggle [post]
func (h *EditorHandler) ToggleResearcher(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.ToggleResearcher(ctx, h.session(c), c.Params("draft_id"), c.Params("researcher_id"))
	if err != nil {
		return h.FlowError(c, err, "Failed to update draft", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Draft updated", result)
}

// TeamCandidates lists companies and researchers for step three, filtered by name
// @Summary Team candidates
// @Tags Campaign Editor
// @Produce json
// @Security BearerAuth
// @Param draft_id path string true "Draft ID"
// @Param company query string false "Company name filter"
// @Param researcher query string false "Researcher name filter"
// @Success 200 {object} dto.APIResponse{data=dto.TeamCandidatesResponse} "Candidates retrieved"
// @Router /api/v1/admin/campaign-drafts/{draft_id}/team [get]
func (h *EditorHandler) TeamCandidates(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.TeamCandidates(ctx, h.session(c), c.Params("draft_id"), c.Query("company"), c.Query("researcher"))
	if err != nil {
		return h.FlowError(c, err, "Failed to fetch team candidates", "TEAM_CANDIDATES_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Candidates retrieved", result)
}

// RequestConfirmation stages an action that needs explicit confirmation
// @Summary Request confirmation
// @Tags Campaign Editor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param draft_id path string true "Draft ID"
// @Param request body dto.RequestConfirmationRequest true "Action to confirm"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignDraft} "Confirmation pending"
// @Failure 400 {object} dto.APIResponse "Another action is pending"
// @Router /api/v1/admin/campaign-drafts/{draft_id}/confirmations [post]
func (h *EditorHandler) RequestConfirmation(c fiber.Ctx) error {
	var req dto.RequestConfirmationRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.RequestConfirmation(ctx, h.session(c), c.Params("draft_id"), &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to request confirmation", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Confirmation pending", result)
}

// Confirm executes the pending action
// @Summary Confirm pending action
// @Tags Campaign Editor
// @Produce json
// @Security BearerAuth
// @Param draft_id path string true "Draft ID"
// @Success 200 {object} dto.APIResponse{data=dto.ConfirmationResult} "Action confirmed"
// @Failure 400 {object} dto.APIResponse "Nothing pending"
// @Router /api/v1/admin/campaign-drafts/{draft_id}/confirmations/confirm [post]
func (h *EditorHandler) Confirm(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.Confirm(ctx, h.session(c), c.Params("draft_id"))
	if err != nil {
		return h.FlowError(c, err, "Failed to confirm action", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Action confirmed", result)
}

// Cancel discards the pending action
// @Summary Cancel pending action
// @Tags Campaign Editor
// @Produce json
// @Security BearerAuth
// @Param draft_id path string true "Draft ID"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignDraft} "Action cancelled"
// @Router /api/v1/admin/campaign-drafts/{draft_id}/confirmations [delete]
func (h *EditorHandler) Cancel(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.Cancel(ctx, h.session(c), c.Params("draft_id"))
	if err != nil {
		return h.FlowError(c, err, "Failed to cancel action", "DRAFT_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Action cancelled", result)
}

// Save persists the draft as a campaign. A rejected draft goes back to step one.
// @Summary Save campaign draft
// @Tags Campaign Editor
// @Produce json
// @Security BearerAuth
// @Param draft_id path string true "Draft ID"
// @Success 200 {object} dto.APIResponse{data=dto.SaveCampaignResponse} "Campaign saved"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Campaign was modified concurrently"
// @Failure 500 {object} dto.APIResponse "Failed to save campaign"
// @Router /api/v1/admin/campaign-drafts/{draft_id}/save [post]
func (h *EditorHandler) Save(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.Save(ctx, h.session(c), c.Params("draft_id"))
	middleware.ObserveCampaignSave(saveOutcome(err))
	if err != nil {
		return h.FlowError(c, err, "Failed to save campaign", "CAMPAIGN_SAVE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
