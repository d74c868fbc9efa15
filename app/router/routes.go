// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/app/handlers"
	"github.com/amirphl/pesquisa-campo/app/middleware"
	"github.com/amirphl/pesquisa-campo/config"
	"github.com/amirphl/pesquisa-campo/docs"
	"github.com/amirphl/pesquisa-campo/models"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Auth      handlers.AuthHandlerInterface
	Campaign  handlers.CampaignHandlerInterface
	Editor    handlers.EditorHandlerInterface
	Directory handlers.DirectoryHandlerInterface
	Response  handlers.ResponseHandlerInterface
	Dashboard handlers.DashboardHandlerInterface
	Tracking  handlers.TrackingHandlerInterface
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	cfg            *config.ProductionConfig
	handlers       Handlers
	authMiddleware *middleware.AuthMiddleware
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(cfg *config.ProductionConfig, h Handlers, authMiddleware *middleware.AuthMiddleware) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Pesquisa Campo API",
		ServerHeader: "Pesquisa-Campo",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ProxyHeader:  cfg.Server.ProxyHeader,
		TrustProxy:   len(cfg.Server.TrustedProxies) > 0,
		TrustProxyConfig: fiber.TrustProxyConfig{
			Proxies: cfg.Server.TrustedProxies,
		},
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
	})

	return &FiberRouter{
		app:            app,
		cfg:            cfg,
		handlers:       h,
		authMiddleware: authMiddleware,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Info("Setting up routes...")

	r.setupMiddleware()

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	r.app.Get(r.cfg.Storage.LogoPublicPrefix+"*", static.New(r.cfg.Storage.LogoDir, static.Config{
		MaxAge: 3600,
	}))

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	if r.cfg.Deployment.IsDevelopment() {
		api.Get("/swagger.json", r.serveSwaggerJSON)
		r.app.Get("/swagger", r.serveSwaggerUI)
		log.Info("API documentation enabled for development")
	}

	api.Use(r.rateLimiter(r.cfg.Security.GlobalRateLimit, func(c fiber.Ctx) bool {
		return c.Path() == "/api/v1/health"
	}))

	// Auth routes with stricter rate limiting
	auth := api.Group("/auth")
	auth.Use(r.rateLimiter(r.cfg.Security.AuthRateLimit, nil))
	auth.Post("/login", r.handlers.Auth.Login)
	auth.Get("/admin/captcha", r.handlers.Auth.AdminCaptcha)
	auth.Post("/admin/login", r.handlers.Auth.AdminLogin)
	auth.Post("/logout", r.authMiddleware.Authenticate(), r.handlers.Auth.Logout)

	r.setupAdminRoutes(api)
	r.setupCompanyRoutes(api)
	r.setupResearcherRoutes(api)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Info("Routes configured successfully")
}

func (r *FiberRouter) setupAdminRoutes(api fiber.Router) {
	admin := api.Group("/admin", r.authMiddleware.Authenticate(models.UserRoleAdmin))

	admin.Get("/dashboard", r.handlers.Dashboard.AdminDashboard)
	admin.Get("/responses", r.handlers.Response.ListResponses)

	admin.Get("/campaigns", r.handlers.Campaign.ListCampaigns)
	admin.Post("/campaigns", r.handlers.Campaign.CreateCampaign)
	admin.Get("/campaigns/:id", r.handlers.Campaign.GetCampaign)
	admin.Put("/campaigns/:id", r.handlers.Campaign.UpdateCampaign)

	drafts := admin.Group("/campaign-drafts")
	drafts.Post("/", r.handlers.Editor.OpenDraft)
	drafts.Get("/:draft_id", r.handlers.Editor.GetDraft)
	drafts.Post("/:draft_id/step", r.handlers.Editor.MoveStep)
	drafts.Patch("/:draft_id/details", r.handlers.Editor.UpdateDetails)
	drafts.Post("/:draft_id/start-time", r.handlers.Editor.SetStartTime)
	drafts.Post("/:draft_id/end-time", r.handlers.Editor.SetEndTime)
	drafts.Put("/:draft_id/questions", r.handlers.Editor.SetQuestions)
	drafts.Get("/:draft_id/team", r.handlers.Editor.TeamCandidates)
	drafts.Post("/:draft_id/companies/:company_id/toggle", r.handlers.Editor.ToggleCompany)
	drafts.Post("/:draft_id/researchers/:researcher_id/toggle", r.handlers.Editor.ToggleResearcher)
	drafts.Post("/:draft_id/confirmations", r.handlers.Editor.RequestConfirmation)
	drafts.Post("/:draft_id/confirmations/confirm", r.handlers.Editor.Confirm)
	drafts.Delete("/:draft_id/confirmations", r.handlers.Editor.Cancel)
	drafts.Post("/:draft_id/save", r.handlers.Editor.Save)

	admin.Get("/admins", r.handlers.Directory.ListAdmins)
	admin.Get("/companies", r.handlers.Directory.ListCompanies)
	admin.Post("/companies", r.handlers.Directory.CreateCompany)
	admin.Post("/companies/:id/toggle-active", r.handlers.Directory.ToggleCompanyActive)
	admin.Post("/companies/:id/logo", r.handlers.Directory.UploadCompanyLogo)
	admin.Get("/researchers", r.handlers.Directory.ListResearchers)
	admin.Post("/researchers", r.handlers.Directory.CreateResearcher)
	admin.Get("/researchers/:id/route", r.handlers.Tracking.Route)
	admin.Get("/vouchers", r.handlers.Directory.ListVouchers)
	admin.Post("/vouchers", r.handlers.Directory.CreateVoucher)
}

func (r *FiberRouter) setupCompanyRoutes(api fiber.Router) {
	company := api.Group("/company", r.authMiddleware.Authenticate(models.UserRoleCompany))

	company.Get("/dashboard", r.handlers.Dashboard.CompanyDashboard)
	company.Get("/exports/respondents.:format", r.handlers.Dashboard.ExportRespondents)
	company.Get("/vouchers", r.handlers.Directory.ListVouchers)
	company.Post("/vouchers/:id/redeem", r.handlers.Directory.RedeemVoucher)
}

func (r *FiberRouter) setupResearcherRoutes(api fiber.Router) {
	researcher := api.Group("/researcher", r.authMiddleware.Authenticate(models.UserRoleResearcher))

	researcher.Get("/campaigns", r.handlers.Campaign.AvailableCampaigns)
	researcher.Get("/campaigns/:id", r.handlers.Campaign.GetCampaign)
	researcher.Post("/campaigns/:id/next", r.handlers.Campaign.NextQuestion)
	researcher.Post("/responses", r.handlers.Response.SubmitResponse)

	tracking := researcher.Group("/tracking")
	tracking.Post("/start", r.handlers.Tracking.Start)
	tracking.Post("/stop", r.handlers.Tracking.Stop)
	tracking.Post("/samples", r.handlers.Tracking.RecordSample)
	tracking.Post("/errors", r.handlers.Tracking.ReportError)
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: fiber.HeaderXRequestID,
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.WithFields(log.Fields{
				"request_id": requestid.FromContext(c),
				"event":      "panic",
				"error":      e,
				"path":       c.Path(),
				"method":     c.Method(),
				"ip":         c.IP(),
			}).Error("recovered from panic")
		},
	}))

	r.app.Use(middleware.Metrics())

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                r.cfg.Security.HSTSMaxAge,
		ContentSecurityPolicy:     r.cfg.Security.CSPPolicy,
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.Security.AllowedOrigins,
		AllowMethods:     r.cfg.Security.AllowedMethods,
		AllowHeaders:     r.cfg.Security.AllowedHeaders,
		ExposeHeaders:    []string{fiber.HeaderXRequestID, fiber.HeaderContentDisposition},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
			Next: func(c fiber.Ctx) bool {
				return strings.HasPrefix(c.Path(), r.cfg.Storage.LogoPublicPrefix)
			},
		}))
	}

	if r.cfg.Logging.EnableAccessLog {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Stream:     log.StandardLogger().Out,
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/api/v1/health" || c.Path() == r.cfg.Metrics.Path
			},
		}))
	}

	r.app.Use(r.securityMiddleware)
}

func (r *FiberRouter) rateLimiter(max int, next func(c fiber.Ctx) bool) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: r.cfg.Security.RateLimitWindow,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: &dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: next,
	})
}

// securityMiddleware rejects blacklisted client addresses
func (r *FiberRouter) securityMiddleware(c fiber.Ctx) error {
	c.Set("X-Response-Time", utils.UTCNow().Format(time.RFC3339))

	if slices.Contains(r.cfg.Security.IPBlacklist, c.IP()) {
		return c.Status(fiber.StatusForbidden).JSON(dto.APIResponse{
			Success: false,
			Message: "Access denied from this IP address",
			Error: &dto.ErrorDetail{
				Code: "ACCESS_DENIED",
			},
		})
	}

	return c.Next()
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.WithField("address", address).Info("Starting server")
	return r.app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   r.cfg.Deployment.Version,
			"service":   "pesquisa-campo-api",
		},
	})
}

// Serve Swagger UI HTML page
func (r *FiberRouter) serveSwaggerUI(c fiber.Ctx) error {
	htmlContent := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Pesquisa Campo API - Swagger UI</title>
    <link rel="stylesheet" type="text/css" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css" />
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            SwaggerUIBundle({
                url: '/api/v1/swagger.json',
                dom_id: '#swagger-ui',
                deepLinking: true,
                validatorUrl: null
            });
        };
    </script>
</body>
</html>`

	c.Set("Content-Type", "text/html")
	return c.SendString(htmlContent)
}

// Serve Swagger JSON document registered by the docs package
func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := docs.ReadDoc()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error: &dto.ErrorDetail{
				Code: "SWAGGER_LOAD_ERROR",
			},
		})
	}

	c.Set("Content-Type", "application/json")
	return c.SendString(doc)
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: &dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	entry := log.WithError(err).WithFields(log.Fields{
		"status":     code,
		"path":       c.Path(),
		"request_id": requestid.FromContext(c),
	})
	if code >= fiber.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: &dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestid.FromContext(c),
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
