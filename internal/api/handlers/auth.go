package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/arenalab/promptarena/internal/auth"
	"github.com/arenalab/promptarena/internal/middleware"
	"github.com/arenalab/promptarena/internal/models"
	"github.com/arenalab/promptarena/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	service *auth.Service
	logger  *logrus.Logger
}

func NewAuthHandler(service *auth.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AuthHandler) HandleLogin(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Login failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Logged in", models.AuthResponse{
		Token: token,
		User:  *user,
	})
}

func (h *AuthHandler) HandleRegister(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	token, user, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrUserExists) {
			utils.ErrorResponse(c, http.StatusConflict, "Registration failed", err)
			return
		}
		utils.ErrorResponse(c, http.StatusBadRequest, "Registration failed", err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Registered", models.AuthResponse{
		Token: token,
		User:  *user,
	})
}

func (h *AuthHandler) HandleLogout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		token = c.GetHeader("X-Session-ID")
	}

	h.service.Logout(c.Request.Context(), token)

	utils.SuccessResponse(c, http.StatusOK, "Logged out", nil)
}

// HandleMe returns the signed-in user behind the session token.
func (h *AuthHandler) HandleMe(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", models.ErrUnauthorized)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Current user", user)
}
