package handlers

import (
	"net/http"

	"github.com/Conceptual-Machines/scribe-api/internal/prompt"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports the configured completion backend and catalog
type HealthHandler struct {
	provider string
	model    string
	catalog  *prompt.Catalog
}

func NewHealthHandler(provider, model string, catalog *prompt.Catalog) *HealthHandler {
	return &HealthHandler{provider: provider, model: model, catalog: catalog}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"llm": gin.H{
			"provider": h.provider,
			"model":    h.model,
		},
		"catalog": gin.H{
			"templates":     len(h.catalog.Templates()),
			"personalities": len(h.catalog.Personalities()),
			"formats":       len(h.catalog.Formats()),
		},
	})
}
