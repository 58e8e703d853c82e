package handler

import (
	"hr-comparator/internal/api/dto"
	"hr-comparator/internal/api/middleware"
	"hr-comparator/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.Response{Success: true, Message: "User registered successfully", Data: user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	tok, err := h.service.Login(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		if statusFor(err) == http.StatusUnauthorized {
			c.Header("WWW-Authenticate", "Bearer")
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tok)
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewUserResponse(middleware.CurrentUser(c)))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.service.Logout(c.Request.Context(), actorFrom(c))
	respondOK(c, "Logged out successfully", nil)
}
