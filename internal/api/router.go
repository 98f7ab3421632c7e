package api

import (
	"github.com/Conceptual-Machines/scribe-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/scribe-api/internal/api/middleware"
	"github.com/Conceptual-Machines/scribe-api/internal/config"
	"github.com/Conceptual-Machines/scribe-api/internal/metrics"
	"github.com/Conceptual-Machines/scribe-api/internal/prompt"
	"github.com/Conceptual-Machines/scribe-api/internal/services"
	"github.com/gin-gonic/gin"
)

// Dependencies are the long-lived collaborators shared by every request
type Dependencies struct {
	Config        *config.Config
	Version       string
	Service       *services.GenerationService
	Catalog       *prompt.Catalog
	ProviderName  string
	SentryMetrics *metrics.SentryMetrics
	CloudWatch    *metrics.Client
}

func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New()

	sentryMetrics := deps.SentryMetrics
	if sentryMetrics == nil {
		sentryMetrics = metrics.NewSentryMetrics(false)
	}
	cloudwatch := deps.CloudWatch
	if cloudwatch == nil {
		cloudwatch = &metrics.Client{}
	}

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(sentryMetrics, cloudwatch))

	// CORS middleware
	router.Use(apimiddleware.CORS(deps.Config.CORSAllowedOrigin))

	router.Use(apimiddleware.BodyLimit(apimiddleware.MaxRequestBodyBytes))

	params := deps.Service.Parameters()

	// Health check
	healthHandler := handlers.NewHealthHandler(deps.ProviderName, params.Model, deps.Catalog)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(deps.Version, deps.ProviderName, params.Model)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	catalogHandler := handlers.NewCatalogHandler(deps.Catalog)
	router.GET("/api/catalog", catalogHandler.GetCatalog)

	// Generation, served at the root path and under /api
	generationHandler := handlers.NewGenerationHandler(deps.Service)
	for _, path := range []string{"/generate", "/api/generate"} {
		router.POST(path, generationHandler.Generate)
		router.OPTIONS(path, handlers.Preflight)
		router.GET(path, handlers.MethodNotAllowed)
		router.PUT(path, handlers.MethodNotAllowed)
		router.PATCH(path, handlers.MethodNotAllowed)
		router.DELETE(path, handlers.MethodNotAllowed)
	}

	return router
}
