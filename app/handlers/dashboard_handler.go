package handlers

import (
	"fmt"
	"strings"

	"github.com/amirphl/pesquisa-campo/app/middleware"
	businessflow "github.com/amirphl/pesquisa-campo/business_flow"
	"github.com/gofiber/fiber/v3"
)

// DashboardHandlerInterface defines the contract for dashboards and respondent exports
type DashboardHandlerInterface interface {
	AdminDashboard(c fiber.Ctx) error
	CompanyDashboard(c fiber.Ctx) error
	ExportRespondents(c fiber.Ctx) error
}

// DashboardHandler serves analytics and exports
type DashboardHandler struct {
	baseHandler
	analytics businessflow.AnalyticsFlow
	exports   businessflow.ExportFlow
}

func NewDashboardHandler(analytics businessflow.AnalyticsFlow, exports businessflow.ExportFlow) DashboardHandlerInterface {
	return &DashboardHandler{
		baseHandler: newBaseHandler(),
		analytics:   analytics,
		exports:     exports,
	}
}

// AdminDashboard aggregates every campaign and response
// @Summary Admin dashboard
// @Description Totals, campaign performance, theme distribution, responses per day, satisfaction and age buckets
// @Tags Admin Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.AdminDashboardResponse} "Dashboard computed"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 403 {object} dto.APIResponse "Forbidden"
// @Failure 500 {object} dto.APIResponse "Failed to load dashboard data"
// @Router /api/v1/admin/dashboard [get]
func (h *DashboardHandler) AdminDashboard(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.analytics.AdminDashboard(ctx, h.session(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to load dashboard data", "DASHBOARD_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Dashboard retrieved successfully", result)
}

// CompanyDashboard aggregates the campaigns linked to the caller's company
// @Summary Company dashboard
// @Tags Company
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.CompanyDashboardResponse} "Dashboard computed"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 404 {object} dto.APIResponse "Company not found"
// @Failure 500 {object} dto.APIResponse "Failed to load dashboard data"
// @Router /api/v1/company/dashboard [get]
func (h *DashboardHandler) CompanyDashboard(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.analytics.CompanyDashboard(ctx, h.session(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to load dashboard data", "DASHBOARD_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Dashboard retrieved successfully", result)
}

// ExportRespondents downloads the respondents of the company's campaigns
// @Summary Export respondents
// @Description Respondent name, phone, age and submission time as CSV, PDF or XLSX
// @Tags Company
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format path string true "Export format" Enums(csv, pdf, xlsx)
// @Success 200 {file} file "Export file"
// @Failure 400 {object} dto.APIResponse "Unsupported format"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Failed to export respondents"
// @Router /api/v1/company/exports/respondents.{format} [get]
func (h *DashboardHandler) ExportRespondents(c fiber.Ctx) error {
	format := strings.ToLower(c.Params("format"))

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	file, err := h.exports.ExportRespondents(ctx, h.session(c), format)
	if err != nil {
		return h.FlowError(c, err, "Failed to export respondents", "EXPORT_FAILED")
	}
	middleware.ObserveExport(format)

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Filename))
	return c.Status(fiber.StatusOK).Send(file.Data)
}
