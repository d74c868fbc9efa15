package handlers

import (
	"github.com/amirphl/pesquisa-campo/app/dto"
	businessflow "github.com/amirphl/pesquisa-campo/business_flow"
	"github.com/gofiber/fiber/v3"
)

// DirectoryHandlerInterface defines the contract for admin, company, researcher and voucher directories
type DirectoryHandlerInterface interface {
	ListAdmins(c fiber.Ctx) error
	ListCompanies(c fiber.Ctx) error
	CreateCompany(c fiber.Ctx) error
	ToggleCompanyActive(c fiber.Ctx) error
	UploadCompanyLogo(c fiber.Ctx) error
	ListResearchers(c fiber.Ctx) error
	CreateResearcher(c fiber.Ctx) error
	ListVouchers(c fiber.Ctx) error
	CreateVoucher(c fiber.Ctx) error
	RedeemVoucher(c fiber.Ctx) error
}

// DirectoryHandler serves the directory endpoints
type DirectoryHandler struct {
	baseHandler
	flow businessflow.DirectoryFlow
}

func NewDirectoryHandler(flow businessflow.DirectoryFlow) DirectoryHandlerInterface {
	return &DirectoryHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

// ListAdmins returns every administrator
// @Summary List administrators
// @Tags Admin Directory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ListAdminsResponse} "Administrators retrieved"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/admins [get]
func (h *DirectoryHandler) ListAdmins(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.ListAdmins(ctx, h.session(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to fetch admins", "ADMIN_LIST_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Administrators retrieved successfully", result)
}

// ListCompanies returns every company
// @Summary List companies
// @Tags Admin Directory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ListCompaniesResponse} "Companies retrieved"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/companies [get]
func (h *DirectoryHandler) ListCompanies(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.ListCompanies(ctx, h.session(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to fetch companies", "COMPANY_LIST_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Companies retrieved successfully", result)
}

// CreateCompany registers a company account
// @Summary Create company
// @Tags Admin Directory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateCompanyRequest true "Company data"
// @Success 201 {object} dto.APIResponse{data=dto.Company} "Company created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Email already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/companies [post]
func (h *DirectoryHandler) CreateCompany(c fiber.Ctx) error {
	var req dto.CreateCompanyRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.CreateCompany(ctx, h.session(c), &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to create company", "COMPANY_CREATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Company created successfully", result)
}

// ToggleCompanyActive flips whether a company can be attached to new campaigns
// @Summary Toggle company active flag
// @Description Existing campaign links are kept
// @Tags Admin Directory
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Success 200 {object} dto.APIResponse{data=dto.ToggleCompanyActiveResponse} "Company updated"
// @Failure 404 {object} dto.APIResponse "Company not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/companies/{id}/toggle-active [post]
func (h *DirectoryHandler) ToggleCompanyActive(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.ToggleCompanyActive(ctx, h.session(c), c.Params("id"))
	if err != nil {
		return h.FlowError(c, err, "Failed to update company", "COMPANY_UPDATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Company updated successfully", result)
}

// UploadCompanyLogo replaces the company logo with an uploaded image
// @Summary Upload company logo
// @Description PNG, JPEG, GIF or WebP; stored downscaled as JPEG
// @Tags Admin Directory
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Company ID"
// @Param logo formData file true "Logo image"
// @Success 200 {object} dto.APIResponse{data=dto.Company} "Logo updated"
// @Failure 400 {object} dto.APIResponse "Invalid image"
// @Failure 404 {object} dto.APIResponse "Company not found"
// @Failure 500 {object} dto.APIResponse "Failed to store logo"
// @Router /api/v1/admin/companies/{id}/logo [post]
func (h *DirectoryHandler) UploadCompanyLogo(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("logo")
	if err != nil || fileHeader == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "logo file is required", "INVALID_FILE", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "invalid file", "INVALID_FILE", err.Error())
	}
	defer file.Close()

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.UploadCompanyLogo(ctx, h.session(c), c.Params("id"), file)
	if err != nil {
		return h.FlowError(c, err, "Failed to store logo", "LOGO_UPLOAD_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Logo updated successfully", result)
}

// ListResearchers returns every researcher
// @Summary List researchers
// @Tags Admin Directory
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ListResearchersResponse} "Researchers retrieved"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/researchers [get]
func (h *DirectoryHandler) ListResearchers(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.ListResearchers(ctx, h.session(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to fetch researchers", "RESEARCHER_LIST_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Researchers retrieved successfully", result)
}

// CreateResearcher registers a researcher account
// @Summary Create researcher
// @Tags Admin Directory
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateResearcherRequest true "Researcher data"
// @Success 201 {object} dto.APIResponse{data=dto.Researcher} "Researcher created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Email already exists"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/researchers [post]
func (h *DirectoryHandler) CreateResearcher(c fiber.Ctx) error {
	var req dto.CreateResearcherRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.CreateResearcher(ctx, h.session(c), &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to create researcher", "RESEARCHER_CREATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Researcher created successfully", result)
}

// ListVouchers returns vouchers; a company only sees its own
// @Summary List vouchers
// @Tags Vouchers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ListVouchersResponse} "Vouchers retrieved"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/vouchers [get]
func (h *DirectoryHandler) ListVouchers(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.ListVouchers(ctx, h.session(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to fetch vouchers", "VOUCHER_LIST_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Vouchers retrieved successfully", result)
}

// CreateVoucher issues a voucher for a company
// @Summary Create voucher
// @Tags Vouchers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateVoucherRequest true "Voucher data"
// @Success 201 {object} dto.APIResponse{data=dto.Voucher} "Voucher created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Company not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/vouchers [post]
func (h *DirectoryHandler) CreateVoucher(c fiber.Ctx) error {
	var req dto.CreateVoucherRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.CreateVoucher(ctx, h.session(c), &req)
	if err != nil {
		return h.FlowError(c, err, "Failed to create voucher", "VOUCHER_CREATE_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Voucher created successfully", result)
}

// RedeemVoucher consumes one unit of the caller's voucher
// @Summary Redeem voucher
// @Tags Company
// @Produce json
// @Security BearerAuth
// @Param id path string true "Voucher ID"
// @Success 200 {object} dto.APIResponse{data=dto.RedeemVoucherResponse} "Voucher redeemed"
// @Failure 403 {object} dto.APIResponse "Voucher belongs to another company"
// @Failure 404 {object} dto.APIResponse "Voucher not found"
// @Failure 409 {object} dto.APIResponse "Voucher exhausted"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/company/vouchers/{id}/redeem [post]
func (h *DirectoryHandler) RedeemVoucher(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.RedeemVoucher(ctx, h.session(c), c.Params("id"))
	if err != nil {
		return h.FlowError(c, err, "Failed to redeem voucher", "VOUCHER_REDEEM_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}
