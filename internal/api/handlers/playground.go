// internal/api/handlers/playground.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/arenalab/promptarena/internal/middleware"
	"github.com/arenalab/promptarena/internal/models"
	"github.com/arenalab/promptarena/internal/playground"
	"github.com/arenalab/promptarena/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PlaygroundHandler struct {
	service *playground.Service
	logger  *logrus.Logger
}

func NewPlaygroundHandler(service *playground.Service, logger *logrus.Logger) *PlaygroundHandler {
	return &PlaygroundHandler{
		service: service,
		logger:  logger,
	}
}

// HandleGenerate runs one generate cycle for the signed-in user.
func (h *PlaygroundHandler) HandleGenerate(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", models.ErrUnauthorized)
		return
	}

	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Invalid generate request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if req.Category != "" && !models.IsValidCategory(req.Category) {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid category", nil)
		return
	}

	result, err := h.service.Generate(c.Request.Context(), user.ID, req.Prompt, req.Category, req.Models)
	if err != nil {
		h.respondGenerateError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":       user.ID,
		"record_id":     result.RecordID,
		"failed_models": len(result.FailedModels),
	}).Info("Generate request completed")

	utils.SuccessResponse(c, http.StatusOK, "Responses generated", models.GenerateResponse{
		RecordID:     result.RecordID,
		Responses:    result.Responses,
		FailedModels: result.FailedModels,
		ResponseTime: int(result.Elapsed.Milliseconds()),
	})
}

// HandleSave persists a response set the client already holds.
func (h *PlaygroundHandler) HandleSave(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", models.ErrUnauthorized)
		return
	}

	var req models.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	id, err := h.service.SaveSnapshot(c.Request.Context(), user.ID, req.Prompt, req.Category, req.Models, req.Responses)
	if err != nil {
		h.respondGenerateError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Saved to history", gin.H{"record_id": id})
}

func (h *PlaygroundHandler) respondGenerateError(c *gin.Context, err error) {
	var persistence *models.PersistenceError

	switch {
	case errors.Is(err, models.ErrEmptyPrompt),
		errors.Is(err, models.ErrNoModelsSelected),
		errors.Is(err, models.ErrNothingToSave):
		utils.ErrorResponse(c, http.StatusBadRequest, "Validation failed", err)
	case errors.As(err, &persistence):
		h.logger.WithError(err).Error("History persistence failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to save to history", err)
	case errors.Is(err, context.Canceled):
		// Superseded by a newer batch or the client went away.
		utils.ErrorResponse(c, http.StatusConflict, "Generation superseded", err)
	default:
		h.logger.WithError(err).Error("Generate failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to generate responses", err)
	}
}
