package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/GTDGit/bookstore_api/internal/middleware"
	"github.com/GTDGit/bookstore_api/internal/service"
	"github.com/GTDGit/bookstore_api/internal/utils"
)

type AuthHandler struct {
	authService *service.AdminAuthService
	limiter     *middleware.InvalidAuthRateLimiter
}

func NewAuthHandler(authService *service.AdminAuthService, limiter *middleware.InvalidAuthRateLimiter) *AuthHandler {
	return &AuthHandler{authService: authService, limiter: limiter}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request body")
		return
	}

	token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if h.limiter != nil {
			h.limiter.Fail(c.ClientIP())
		}
		respondError(c, err)
		return
	}
	if h.limiter != nil {
		h.limiter.Reset(c.ClientIP())
	}

	utils.Success(c, 200, "Login successful", gin.H{
		"token": token,
	})
}
