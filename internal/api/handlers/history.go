// internal/api/handlers/history.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/arenalab/promptarena/internal/middleware"
	"github.com/arenalab/promptarena/internal/models"
	"github.com/arenalab/promptarena/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type HistoryHandler struct {
	repo         models.HistoryRepository
	defaultLimit int
	logger       *logrus.Logger
}

func NewHistoryHandler(repo models.HistoryRepository, defaultLimit int, logger *logrus.Logger) *HistoryHandler {
	return &HistoryHandler{
		repo:         repo,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// HandleList returns one page of the signed-in user's history.
func (h *HistoryHandler) HandleList(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", models.ErrUnauthorized)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.defaultLimit)))
	if limit < 1 {
		limit = h.defaultLimit
	}
	if limit > 50 {
		limit = 50
	}

	category := c.Query("category")
	if category != "" && !models.IsValidCategory(category) {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid category", nil)
		return
	}

	items, total, err := h.repo.Query(c.Request.Context(), user.ID, models.QueryOptions{
		Page:     page,
		Limit:    limit,
		Category: category,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to load history")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load history", err)
		return
	}

	totalPages := (total + limit - 1) / limit

	utils.SuccessResponse(c, http.StatusOK, "History retrieved", models.HistoryPageResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	})
}

// HandleGet returns a single record by id.
func (h *HistoryHandler) HandleGet(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", models.ErrUnauthorized)
		return
	}

	record, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.WithError(err).Error("Failed to load history record")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to load record", err)
		return
	}

	if record == nil || record.UserID != user.ID {
		utils.ErrorResponse(c, http.StatusNotFound, "Record not found", nil)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Record retrieved", record)
}

// HandleDelete removes a record. Deleting an already-deleted id succeeds.
func (h *HistoryHandler) HandleDelete(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", models.ErrUnauthorized)
		return
	}

	id := c.Param("id")

	// Records belonging to other users are invisible, not deletable.
	record, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to check history record")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete record", err)
		return
	}
	if record != nil && record.UserID != user.ID {
		utils.ErrorResponse(c, http.StatusNotFound, "Record not found", nil)
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.WithError(err).Error("Failed to delete history record")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete record", err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"user_id":   user.ID,
		"record_id": id,
	}).Info("History record deleted")

	utils.SuccessResponse(c, http.StatusOK, "Record deleted", nil)
}
