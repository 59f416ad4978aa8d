package handlers

import (
	"net/http"
	"time"

	"github.com/arenalab/promptarena/internal/health"
	"github.com/arenalab/promptarena/internal/models"
	"github.com/arenalab/promptarena/pkg/utils"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	checker *health.Checker
}

func NewHealthHandler(checker *health.Checker) *HealthHandler {
	return &HealthHandler{checker: checker}
}

func (h *HealthHandler) HandleHealth(c *gin.Context) {
	status, checks := h.checker.Overall(c.Request.Context())

	services := make(map[string]string, len(checks))
	for _, check := range checks {
		services[check.Name] = check.Status
	}

	code := http.StatusOK
	if status == "unhealthy" {
		code = http.StatusServiceUnavailable
	}

	utils.SuccessResponse(c, code, "Health check", models.HealthResponse{
		Status:    status,
		Service:   "promptarena",
		Timestamp: time.Now().Format(time.RFC3339),
		Services:  services,
	})
}
