package handler

import (
	"contenthub/internal/middleware"
	"contenthub/internal/service"
	"contenthub/pkg/log"

	"github.com/gin-gonic/gin"
)

// AuthHandler issues, refreshes and revokes tokens.
type AuthHandler struct {
	userService service.UserService
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(userService service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// LoginRequest is the body of POST /account/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /account/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, "Login", &req) {
		return
	}

	accessToken, refreshToken, err := h.userService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, "Login", err)
		return
	}

	log.Infow("user logged in", "email", req.Email)
	respond(c, "Login successful", gin.H{
		"token":        accessToken,
		"refreshToken": refreshToken,
	})
}

// RefreshTokenRequest is the body of POST /account/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshToken handles POST /account/refresh. The old refresh token is
// revoked.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !bindJSON(c, "RefreshToken", &req) {
		return
	}

	newAccessToken, newRefreshToken, err := h.userService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, "RefreshToken", err)
		return
	}

	respond(c, "Token refreshed successfully", gin.H{
		"token":        newAccessToken,
		"refreshToken": newRefreshToken,
	})
}

// Logout handles POST /account/logout by blacklisting the access token.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.userService.Logout(c.Request.Context(), middleware.BearerToken(c)); err != nil {
		respondError(c, "Logout", err)
		return
	}
	respond(c, "Logout successful", nil)
}
