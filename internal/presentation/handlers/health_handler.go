package handlers

import (
	"net/http"

	"repo-popularity/internal/application/service"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports whether the service can reach GitHub with its token
type HealthHandler struct {
	popularityService *service.PopularityService
	canary            string
}

// NewHealthHandler creates a new health handler. canary is a repository that
// is expected to exist, e.g. "facebook/react".
func NewHealthHandler(popularityService *service.PopularityService, canary string) *HealthHandler {
	return &HealthHandler{
		popularityService: popularityService,
		canary:            canary,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health handles GET /health
// @Summary Health check
// @Description Classifies a known repository. Answers "ok" when GitHub is reachable with the configured token.
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 500 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	outcome, err := h.popularityService.ClassifyRepository(c.Request.Context(), h.canary)
	if err != nil {
		c.JSON(http.StatusInternalServerError, HealthResponse{
			Status:  "invalid_canary",
			Message: "Not ok",
		})
		return
	}

	if outcome.OK() {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  "ok",
			Message: "ok",
		})
		return
	}

	c.JSON(outcome.HTTPStatus(), HealthResponse{
		Status:  outcome.Status().String(),
		Message: "Not ok",
	})
}
