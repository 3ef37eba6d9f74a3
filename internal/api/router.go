package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/assetverse/asset-management/internal/api/handler"
	"github.com/assetverse/asset-management/internal/api/middleware"
	"github.com/assetverse/asset-management/internal/core/domain"
	"github.com/assetverse/asset-management/internal/core/ports"

	_ "github.com/assetverse/asset-management/docs" // registers the swagger spec
)

// Dependencies are the services and probes the HTTP API is built on.
type Dependencies struct {
	Users        ports.UserService
	Assets       ports.AssetService
	Requests     ports.RequestService
	Affiliations ports.AffiliationService
	Dashboard    ports.DashboardService
	Payments     ports.PaymentService

	// Checks back the readiness probe, keyed by dependency name.
	Checks map[string]handler.Check

	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.Metrics())
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORS())

	// --- Handlers ---
	users := handler.NewUserHandler(deps.Users)
	assets := handler.NewAssetHandler(deps.Assets)
	requests := handler.NewRequestHandler(deps.Requests)
	affiliations := handler.NewAffiliationHandler(deps.Affiliations)
	dashboard := handler.NewDashboardHandler(deps.Dashboard)
	payments := handler.NewPaymentHandler(deps.Payments)
	health := handler.NewHealthHandler(deps.Checks)

	admin := []echo.MiddlewareFunc{middleware.Auth(deps.JWTSecret), middleware.RequireRole(domain.RoleAdmin)}
	hr := middleware.HREmail()

	// --- Users ---
	e.POST("/users", users.Register)
	e.GET("/users", users.List)
	e.GET("/users/id/:id", users.GetByID)
	e.GET("/users/:email", users.GetByEmail)
	e.GET("/users/:email/role", users.GetRole)
	e.PUT("/users/:id", users.UpdateProfile)

	// --- HR-scoped affiliations ---
	e.GET("/hr/employees", affiliations.ListEmployees, hr)
	e.POST("/affiliations/:id", affiliations.Add, hr)
	e.DELETE("/affiliations/:affiliationId", affiliations.Remove, hr)

	// --- Assets ---
	e.GET("/assets", assets.List)
	e.GET("/assets/:id", assets.Get)
	e.POST("/assets", assets.Create)
	e.PUT("/assets/:id", assets.Update)
	e.DELETE("/assets/:id", assets.Delete, admin...)

	// --- Asset requests ---
	e.GET("/asset_requests", requests.List)
	e.POST("/asset_requests", requests.Create)
	e.PUT("/asset_requests/:id/approve", requests.Approve)
	e.PUT("/asset_requests/:id/reject", requests.Reject)
	e.PUT("/asset_requests/:id/return", requests.Return)
	e.DELETE("/asset_requests/:id", requests.Delete, admin...)

	// --- Dashboard, packages and payments ---
	e.GET("/api/dashboard/pie", dashboard.Pie)
	e.GET("/api/dashboard/bar", dashboard.Bar)
	e.GET("/api/packages", payments.ListPackages)
	e.GET("/api/packages/:id", payments.GetPackage)
	e.POST("/api/stripe/create-checkout-session", payments.CreateCheckout)
	e.GET("/api/stripe/success", payments.ConfirmCheckout)

	// --- Operations (no auth required) ---
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "AssetVerse Backend Running!") })
	e.GET("/health", health.Liveness)        // liveness  – is the process alive?
	e.GET("/health/ready", health.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
