package main

import (
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"visibility-wizard/config"
	"visibility-wizard/handlers"
	"visibility-wizard/middleware"
	"visibility-wizard/services"
)

const (
	EndPointHealth         = "/health"
	EndPointWizard         = "/api/v1/wizard"
	EndPointWizardByID     = "/api/v1/wizard/:id"
	EndPointWizardProfile  = "/api/v1/wizard/:id/profile"
	EndPointWizardConfirm  = "/api/v1/wizard/:id/confirm"
	EndPointWizardPrompts  = "/api/v1/wizard/:id/prompts"
	EndPointWizardRun      = "/api/v1/wizard/:id/run"
	EndPointWizardReset    = "/api/v1/wizard/:id/reset"
	EndPointScan           = "/api/v1/scan"
	EndPointProgress       = "/ws/progress"
	EndPointProgressHealth = "/ws/health"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using system environment variables")
	}

	cfg := config.Load()

	// Free-scan gate: MySQL when configured, in-memory otherwise
	var gate services.ScanGate
	if cfg.GateBackend == "mysql" {
		dbGate, err := services.NewDatabaseScanGate(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize scan gate: %v", err)
		}
		defer dbGate.Close()
		gate = dbGate
	} else {
		log.Info("Using in-memory scan gate")
		gate = services.NewMemoryScanGate()
	}

	client := services.NewVisibilityClient(cfg)
	promptService := services.NewPromptService(cfg.PromptsPerCategory)
	scoringService := services.NewScoringService()

	hub := services.NewProgressHub()
	go hub.Start()
	defer hub.Stop()

	wizardService := services.NewWizardService(cfg, client, promptService, scoringService, gate, hub)

	wizardHandler := handlers.NewWizardHandler(wizardService)
	websocketHandler := handlers.NewWebSocketHandler(hub)

	router := gin.Default()

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	router.GET(EndPointHealth, wizardHandler.HealthHandler)
	router.GET(EndPointProgress, websocketHandler.ListenProgress)
	router.GET(EndPointProgressHealth, websocketHandler.HealthCheck)

	// Scan-starting endpoints are rate limited per IP
	limited := router.Group("/")
	limited.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute, time.Minute))
	{
		limited.POST(EndPointWizard, wizardHandler.StartWizard)
		limited.POST(EndPointScan, wizardHandler.QuickScan)
	}

	router.GET(EndPointWizardByID, wizardHandler.GetWizard)
	router.POST(EndPointWizardProfile, wizardHandler.EditProfile)
	router.POST(EndPointWizardConfirm, wizardHandler.ConfirmProfile)
	router.POST(EndPointWizardPrompts, wizardHandler.EditPrompt)
	router.POST(EndPointWizardRun, wizardHandler.RunTests)
	router.POST(EndPointWizardReset, wizardHandler.ResetWizard)

	log.Infof("Starting visibility wizard service on %s:%s", cfg.Host, cfg.Port)
	log.Infof("Visibility backend: %s", cfg.VisibilityAPIURL)
	if err := router.Run(cfg.Host + ":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
