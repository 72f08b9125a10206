// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/amirphl/carrier-pos/app/dto"
	"github.com/amirphl/carrier-pos/app/handlers"
	"github.com/amirphl/carrier-pos/app/middleware"
	"github.com/amirphl/carrier-pos/config"
	_ "github.com/amirphl/carrier-pos/docs"
	"github.com/amirphl/carrier-pos/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggo/swag"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// Handlers groups the presentation handlers the router mounts
type Handlers struct {
	Store     handlers.StoreHandlerInterface
	Auth      handlers.AuthHandlerInterface
	CheckIn   handlers.CheckInHandlerInterface
	Queue     handlers.QueueHandlerInterface
	Account   handlers.AccountHandlerInterface
	Inventory handlers.InventoryHandlerInterface
	Catalog   handlers.CatalogHandlerInterface
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
		AppName:      "Carrier POS API",
		ServerHeader: "carrier-pos",
		ErrorHandler: errorHandler,
		BodyLimit:    cfg.Server.BodyLimit,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
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
	log.Println("Setting up routes...")

	r.setupMiddleware()

	// Liveness stays outside the API group and its rate limits
	r.app.Get("/health", r.handlers.Store.Health)

	if r.cfg.Metrics.Enabled {
		r.app.Get(r.cfg.Metrics.Path, adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := r.app.Group("/api/v1")

	if os.Getenv("APP_ENV") == "development" || os.Getenv("APP_ENV") == "local" {
		api.Get("/docs", r.getAPIDocumentation)
		api.Get("/swagger.json", r.serveSwaggerJSON)
		r.app.Get("/swagger", r.serveSwaggerUI)
		log.Println("API documentation enabled for development")
	}

	api.Use(limiter.New(limiter.Config{
		Max:          r.cfg.Security.GlobalRateLimit,
		Expiration:   r.cfg.Security.RateLimitWindow,
		KeyGenerator: rateLimitKey,
		LimitReached: rateLimitReached,
	}))

	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:          r.cfg.Security.AuthRateLimit,
		Expiration:   r.cfg.Security.RateLimitWindow,
		KeyGenerator: rateLimitKey,
		LimitReached: rateLimitReached,
	}))
	auth.Post("/login", r.handlers.Auth.Login)
	auth.Post("/refresh", r.handlers.Auth.RefreshToken)

	// Store lifecycle; the retry button must work before anyone can log in
	store := api.Group("/store")
	store.Get("/status", r.handlers.Store.Status)
	store.Post("/initialize", r.handlers.Store.Initialize)

	// Customer-facing check-in terminal
	checkin := api.Group("/checkin")
	checkin.Get("/lookup", r.handlers.CheckIn.Lookup)
	checkin.Get("/reasons", r.handlers.CheckIn.VisitReasons)
	checkin.Post("/", r.handlers.CheckIn.CheckIn)

	protected := api.Group("", r.authMiddleware.Authenticate())

	queue := protected.Group("/queue")
	queue.Get("/", r.handlers.Queue.List)
	queue.Post("/:id/assist", r.handlers.Queue.Assist)
	queue.Delete("/:id", r.handlers.Queue.Remove)

	protected.Post("/customers", r.handlers.Account.CreateCustomer)
	protected.Get("/customers/by-mdn/:mdn", r.handlers.Account.FindByMDN)
	protected.Get("/accounts/:account", r.handlers.Account.LoadAccount)
	protected.Post("/accounts/:account/lines", r.handlers.Account.CreateLine)
	protected.Put("/lines/:mdn", r.handlers.Account.UpdateLine)

	protected.Get("/devices", r.handlers.Inventory.ListDevices)
	protected.Get("/devices/:imei", r.handlers.Inventory.GetDevice)

	inventory := protected.Group("/inventory")
	inventory.Get("/imeis/available", r.handlers.Inventory.AvailableIMEIs)
	inventory.Get("/imeis/random", r.handlers.Inventory.RandomIMEI)
	inventory.Get("/imeis/:imei/in-use", r.handlers.Inventory.IMEIUsage)
	inventory.Get("/export", r.handlers.Inventory.ExportInventory)

	shop := protected.Group("/shop/devices")
	shop.Get("/", r.handlers.Inventory.ListShop)
	shop.Post("/", r.handlers.Inventory.CreateShopDevice)
	shop.Get("/:id", r.handlers.Inventory.GetShopDevice)
	shop.Put("/:id", r.handlers.Inventory.UpdateShopDevice)
	shop.Delete("/:id", r.handlers.Inventory.DeleteShopDevice)
	shop.Post("/:id/select", r.handlers.Inventory.SelectShopDevice)

	catalog := protected.Group("/catalog")
	catalog.Get("/plans", r.handlers.Catalog.ListPlans)
	catalog.Get("/features", r.handlers.Catalog.ListFeatures)
	catalog.Get("/plans/:id/quote", r.handlers.Catalog.QuotePlan)

	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// SetupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000,
		ContentSecurityPolicy:     "default-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com; style-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data: https:; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	r.app.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.Security.AllowedOrigins,
		AllowMethods:     r.cfg.Security.AllowedMethods,
		AllowHeaders:     r.cfg.Security.AllowedHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-Response-Time", "Content-Disposition"},
		AllowCredentials: r.cfg.Security.AllowCredentials,
		MaxAge:           r.cfg.Security.CORSMaxAge,
	}))

	r.app.Use(middleware.Metrics())

	if r.cfg.Server.EnableCompression {
		r.app.Use(compress.New(compress.Config{
			Level: compress.LevelBestSpeed,
			Next: func(c fiber.Ctx) bool {
				return strings.Contains(c.Get("Content-Type"), "image/")
			},
		}))
	}

	if r.cfg.Logging.AccessLogEnabled() {
		r.app.Use(logger.New(logger.Config{
			Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","terminal":"${reqHeader:X-Terminal-ID}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
			TimeFormat: time.RFC3339,
			TimeZone:   "UTC",
			Next: func(c fiber.Ctx) bool {
				return c.Path() == "/health" || c.Path() == r.cfg.Metrics.Path
			},
		}))
	}

	r.app.Use(r.securityMiddleware)

	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

func (r *FiberRouter) securityMiddleware(c fiber.Ctx) error {
	c.Set("X-Response-Time", utils.UTCNow().Format(time.RFC3339))
	c.Set("Server", "carrier-pos")
	return c.Next()
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

func (r *FiberRouter) getAPIDocumentation(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "API documentation retrieved successfully",
		Data: fiber.Map{
			"title":       "Carrier POS API Documentation",
			"version":     "1.0.0",
			"description": "Check-in queue, accounts, lines and inventory",
			"endpoints":   GetRouteDocumentation(),
		},
	})
}

func (r *FiberRouter) serveSwaggerUI(c fiber.Ctx) error {
	htmlContent := `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Carrier POS API - Swagger UI</title>
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

func (r *FiberRouter) serveSwaggerJSON(c fiber.Ctx) error {
	doc, err := swag.ReadDoc()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.APIResponse{
			Success: false,
			Message: "Failed to load Swagger documentation",
			Error: dto.ErrorDetail{
				Code: "SWAGGER_LOAD_ERROR",
			},
		})
	}

	c.Set("Content-Type", "application/json")
	return c.SendString(doc)
}

func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": c.Locals("requestid"),
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"
	errorCode := "INTERNAL_ERROR"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		if code < fiber.StatusInternalServerError {
			message = e.Message
			errorCode = "REQUEST_ERROR"
		}
	}

	log.Printf("Error %d: %v", code, err)

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: errorCode,
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": c.Locals("requestid"),
			},
		},
	})
}

// rateLimitKey limits per terminal when the header is present, otherwise per IP
func rateLimitKey(c fiber.Ctx) string {
	if terminal := c.Get(utils.TerminalIDHeader); terminal != "" {
		return c.IP() + "|" + terminal
	}
	return c.IP()
}

func rateLimitReached(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
		Success: false,
		Message: "Too many requests. Please try again later.",
		Error: dto.ErrorDetail{
			Code: "RATE_LIMIT_EXCEEDED",
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// GetRouteDocumentation returns API documentation
func GetRouteDocumentation() []map[string]any {
	return []map[string]any{
		{"method": "GET", "path": "/health", "description": "Liveness and store state"},
		{"method": "GET", "path": "/api/v1/store/status", "description": "Store lifecycle state"},
		{"method": "POST", "path": "/api/v1/store/initialize", "description": "Retry store initialization"},
		{
			"method":      "POST",
			"path":        "/api/v1/auth/login",
			"description": "Authenticate the store operator",
			"parameters": map[string]any{
				"username": "string (required) - Operator username",
				"password": "string (required) - Operator password",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/auth/refresh",
			"description": "Exchange a refresh token for a new token pair",
			"parameters": map[string]any{
				"refresh_token": "string (required) - Refresh token from login",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/checkin/lookup",
			"description": "Preview the owner of an MDN while it is typed; newer lookups from the same terminal supersede older ones",
			"parameters": map[string]any{
				"mdn":           "string (query) - MDN typed so far",
				"X-Terminal-ID": "string (header, optional) - Terminal issuing the lookup",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/checkin",
			"description": "Add a walk-in customer to the service queue",
			"parameters": map[string]any{
				"mdn":    "string (required) - 10-digit MDN",
				"reason": "string (required) - Visit reason",
			},
		},
		{"method": "GET", "path": "/api/v1/checkin/reasons", "description": "Visit reasons by category"},
		{"method": "GET", "path": "/api/v1/queue", "description": "Waiting customers with wait times"},
		{"method": "POST", "path": "/api/v1/queue/:id/assist", "description": "Serve a waiting customer and load their account"},
		{"method": "DELETE", "path": "/api/v1/queue/:id", "description": "Remove a waiting customer"},
		{"method": "POST", "path": "/api/v1/customers", "description": "Open a new account"},
		{"method": "GET", "path": "/api/v1/customers/by-mdn/:mdn", "description": "Find the account owning a line"},
		{"method": "GET", "path": "/api/v1/accounts/:account", "description": "Load a customer with their lines"},
		{
			"method":      "POST",
			"path":        "/api/v1/accounts/:account/lines",
			"description": "Add a line to an account",
			"parameters": map[string]any{
				"mdn":      "string (required) - 10-digit MDN not used by any line",
				"name":     "string (optional) - Line nickname",
				"imei":     "string (optional) - 15-digit IMEI of an inventory device not held by another line",
				"plan":     "string (optional) - Plan label",
				"features": "[]string (optional) - Feature names",
			},
		},
		{"method": "PUT", "path": "/api/v1/lines/:mdn", "description": "Replace the editable fields of a line"},
		{"method": "GET", "path": "/api/v1/devices", "description": "Inventory grouped by manufacturer"},
		{"method": "GET", "path": "/api/v1/devices/:imei", "description": "Inventory device by IMEI"},
		{"method": "GET", "path": "/api/v1/inventory/imeis/available", "description": "IMEIs no line holds"},
		{"method": "GET", "path": "/api/v1/inventory/imeis/random", "description": "One random available IMEI"},
		{"method": "GET", "path": "/api/v1/inventory/imeis/:imei/in-use", "description": "Whether another line holds an IMEI"},
		{"method": "GET", "path": "/api/v1/inventory/export", "description": "Inventory and shop as an xlsx workbook"},
		{"method": "GET", "path": "/api/v1/shop/devices", "description": "Device shop listing and search"},
		{"method": "POST", "path": "/api/v1/shop/devices/:id/select", "description": "Pair a shop device with an available IMEI"},
		{"method": "GET", "path": "/api/v1/catalog/plans", "description": "Plans and plan shop"},
		{"method": "GET", "path": "/api/v1/catalog/features", "description": "Feature shop"},
		{"method": "GET", "path": "/api/v1/catalog/plans/:id/quote", "description": "Price a plan for a number of lines"},
	}
}
