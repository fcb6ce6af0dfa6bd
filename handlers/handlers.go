package handlers

import (
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"visibility-wizard/models"
	"visibility-wizard/services"
)

// WizardHandler exposes the visibility wizard over HTTP
type WizardHandler struct {
	wizard *services.WizardService
}

// NewWizardHandler creates a new wizard handler
func NewWizardHandler(wizard *services.WizardService) *WizardHandler {
	return &WizardHandler{wizard: wizard}
}

// clientKey identifies the caller for the free-scan gate
func clientKey(c *gin.Context) string {
	return "client_" + c.ClientIP()
}

// StartWizard handles POST /api/v1/wizard
func (h *WizardHandler) StartWizard(c *gin.Context) {
	var req models.StartWizardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Invalid start request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read JSON input."})
		return
	}

	snap, err := h.wizard.Start(c.Request.Context(), req, clientKey(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetWizard handles GET /api/v1/wizard/:id
func (h *WizardHandler) GetWizard(c *gin.Context) {
	snap, err := h.wizard.Get(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// EditProfile handles POST /api/v1/wizard/:id/profile
func (h *WizardHandler) EditProfile(c *gin.Context) {
	var req models.EditProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read JSON input."})
		return
	}

	snap, err := h.wizard.EditProfile(c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ConfirmProfile handles POST /api/v1/wizard/:id/confirm
func (h *WizardHandler) ConfirmProfile(c *gin.Context) {
	snap, err := h.wizard.ConfirmProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// EditPrompt handles POST /api/v1/wizard/:id/prompts
func (h *WizardHandler) EditPrompt(c *gin.Context) {
	var req models.EditPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read JSON input."})
		return
	}

	snap, err := h.wizard.EditPrompt(c.Param("id"), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// RunTests handles POST /api/v1/wizard/:id/run
func (h *WizardHandler) RunTests(c *gin.Context) {
	snap, err := h.wizard.RunTests(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, snap)
}

// ResetWizard handles POST /api/v1/wizard/:id/reset
func (h *WizardHandler) ResetWizard(c *gin.Context) {
	snap, err := h.wizard.Reset(c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// QuickScan handles POST /api/v1/scan, the simple one-shot scoring flow
func (h *WizardHandler) QuickScan(c *gin.Context) {
	var req models.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read JSON input."})
		return
	}

	resp, err := h.wizard.QuickScore(c.Request.Context(), req, clientKey(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HealthHandler handles GET /health
func (h *WizardHandler) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Service: "visibility-wizard",
	})
}

func (h *WizardHandler) writeError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.Is(err, services.ErrScanConsumed):
		c.JSON(http.StatusForbidden, gin.H{"error": "Your free scan has already been used."})
	case errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Wizard session not found."})
	default:
		log.Errorf("Wizard request failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Scoring service unavailable, please retry."})
	}
}
