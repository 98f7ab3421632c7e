package handlers

import (
	"errors"
	"net/http"

	"github.com/Conceptual-Machines/scribe-api/internal/llm"
	"github.com/Conceptual-Machines/scribe-api/internal/logger"
	"github.com/Conceptual-Machines/scribe-api/internal/models"
	"github.com/Conceptual-Machines/scribe-api/internal/prompt"
	"github.com/Conceptual-Machines/scribe-api/internal/services"
	"github.com/gin-gonic/gin"
)

type GenerationHandler struct {
	service *services.GenerationService
}

func NewGenerationHandler(service *services.GenerationService) *GenerationHandler {
	return &GenerationHandler{service: service}
}

// GenerateResponse is the success body of POST /generate. The document is
// returned as both text and content; clients read one or the other.
type GenerateResponse struct {
	Success   bool                        `json:"success"`
	Text      string                      `json:"text"`
	Content   string                      `json:"content"`
	Metadata  services.GenerationMetadata `json:"metadata"`
	RequestID string                      `json:"request_id"`
}

// Generate composes the prompt for the request body and returns the generated document
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fields := logger.WithContext(c)
		fields["error"] = err.Error()
		logger.Warn("Rejected malformed generation request", fields)
		c.JSON(http.StatusBadRequest, gin.H{"error": errMalformedBody})
		return
	}

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateResponse{
		Success:   true,
		Text:      result.Content,
		Content:   result.Content,
		Metadata:  result.Metadata,
		RequestID: c.GetString("request_id"),
	})
}

// MethodNotAllowed answers non-POST requests to the generation endpoint
func MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, gin.H{"error": errMethodNotAllowed})
}

// Preflight answers CORS preflight requests; the headers are set by middleware
func Preflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

// writeError maps every failure of the generation pipeline to an HTTP response
func writeError(c *gin.Context, err error) {
	fields := logger.WithContext(c)

	var (
		validation    *prompt.ValidationError
		unknownTmpl   *prompt.UnknownTemplateError
		unknownPerson *prompt.UnknownPersonalityError
		unknownFormat *prompt.UnknownFormatError
		interpolation *prompt.TemplateInterpolationError
		gateway       *llm.GatewayError
	)

	switch {
	case errors.As(err, &validation):
		fields["fields"] = len(validation.Fields)
		logger.Warn("Invalid generation request", fields)
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error(), "fields": validation.Fields})

	case errors.As(err, &unknownTmpl), errors.As(err, &unknownPerson), errors.As(err, &unknownFormat):
		logger.Warn("Unknown catalog key", fields)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.As(err, &interpolation):
		logger.Error("Prompt fragment has unresolved placeholders", err, fields)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal, "request_id": c.GetString("request_id")})

	case errors.As(err, &gateway):
		fields["provider"] = gateway.Provider
		fields["error_kind"] = string(gateway.Kind)
		fields["upstream_status"] = gateway.StatusCode

		status := http.StatusBadGateway
		if gateway.Kind == llm.KindUnknown {
			status = http.StatusInternalServerError
			logger.Error("Completion failed", err, fields)
		} else {
			logger.Warn("Completion rejected upstream", fields)
		}
		c.JSON(status, gin.H{
			"error":      gateway.Error(),
			"kind":       string(gateway.Kind),
			"provider":   gateway.Provider,
			"request_id": c.GetString("request_id"),
		})

	default:
		logger.Error("Generation failed", err, fields)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternal, "request_id": c.GetString("request_id")})
	}
}
