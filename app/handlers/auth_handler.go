package handlers

import (
	"github.com/amirphl/pesquisa-campo/app/dto"
	businessflow "github.com/amirphl/pesquisa-campo/business_flow"
	"github.com/gofiber/fiber/v3"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	Login(c fiber.Ctx) error
	AdminCaptcha(c fiber.Ctx) error
	AdminLogin(c fiber.Ctx) error
	Logout(c fiber.Ctx) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	baseHandler
	flow businessflow.AuthFlow
}

func NewAuthHandler(flow businessflow.AuthFlow) AuthHandlerInterface {
	return &AuthHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

// Login authenticates a company or researcher
// @Summary Login
// @Description Authenticate a company or researcher with email and password. Researchers start location tracking on success.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 403 {object} dto.APIResponse "Account inactive"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.Login(ctx, &req, h.metadata(c))
	if err != nil {
		return h.FlowError(c, err, "Login failed", "LOGIN_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// AdminCaptcha starts an admin login by returning a rotate captcha challenge
// @Summary Admin captcha
// @Description Create a rotate captcha challenge for admin login (base64 images and challenge ID)
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CaptchaInitResponse} "Captcha initialized"
// @Failure 500 {object} dto.APIResponse "Failed to initialize captcha"
// @Router /api/v1/auth/admin/captcha [get]
func (h *AuthHandler) AdminCaptcha(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.InitAdminCaptcha(ctx)
	if err != nil {
		return h.FlowError(c, err, "Failed to initialize captcha", "CAPTCHA_INIT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Captcha initialized", result)
}

// AdminLogin verifies the captcha and the admin credentials
// @Summary Admin login
// @Description Verify the rotate captcha and authenticate an administrator
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.AdminLoginRequest true "Admin login data"
// @Success 200 {object} dto.APIResponse{data=dto.LoginResponse} "Login successful"
// @Failure 400 {object} dto.APIResponse "Invalid request or captcha"
// @Failure 401 {object} dto.APIResponse "Invalid credentials"
// @Failure 403 {object} dto.APIResponse "Account inactive"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/admin/login [post]
func (h *AuthHandler) AdminLogin(c fiber.Ctx) error {
	var req dto.AdminLoginRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.AdminLogin(ctx, &req, h.metadata(c))
	if err != nil {
		return h.FlowError(c, err, "Login failed", "LOGIN_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// Logout revokes the current access token
// @Summary Logout
// @Description Revoke the current access token. Researchers stop location tracking.
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.LogoutResponse} "Logged out"
// @Failure 401 {object} dto.APIResponse "Unauthorized"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c)
	defer cancel()

	result, err := h.flow.Logout(ctx, h.session(c))
	if err != nil {
		return h.FlowError(c, err, "Failed to logout", "LOGOUT_FAILED")
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Logged out successfully", result)
}
