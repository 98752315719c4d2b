package handler

import (
	"contenthub/internal/middleware"
	"contenthub/internal/service"
	"contenthub/pkg/log"

	"github.com/gin-gonic/gin"
)

// UserHandler serves self-service account management and admin account
// creation.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GetProfile handles GET /account/me.
func (h *UserHandler) GetProfile(c *gin.Context) {
	user, err := h.userService.GetProfile(c.Request.Context(), middleware.CallerFrom(c))
	if err != nil {
		respondError(c, "GetProfile", err)
		return
	}
	respond(c, "success", user)
}

// CreateAccount handles POST /account/create.
func (h *UserHandler) CreateAccount(c *gin.Context) {
	var req service.CreateAccountInput
	if !bindJSON(c, "CreateAccount", &req) {
		return
	}
	user, err := h.userService.CreateAccount(c.Request.Context(), middleware.CallerFrom(c), req)
	if err != nil {
		respondError(c, "CreateAccount", err)
		return
	}
	log.Infow("account created", "userId", user.ID, "role", user.Role)
	respond(c, "Account created successfully", user)
}

// UpdateProfile handles POST /account/update.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileInput
	if !bindJSON(c, "UpdateProfile", &req) {
		return
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), middleware.CallerFrom(c), req)
	if err != nil {
		respondError(c, "UpdateProfile", err)
		return
	}
	respond(c, "Profile updated successfully", user)
}

// UpdatePassword handles POST /account/update/password.
func (h *UserHandler) UpdatePassword(c *gin.Context) {
	var req service.UpdatePasswordInput
	if !bindJSON(c, "UpdatePassword", &req) {
		return
	}
	if err := h.userService.UpdatePassword(c.Request.Context(), middleware.CallerFrom(c), req); err != nil {
		respondError(c, "UpdatePassword", err)
		return
	}
	respond(c, "Password updated successfully", nil)
}

// DeleteAccount handles POST /account/delete. The current access token is
// revoked along with the account.
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.userService.DeleteAccount(ctx, middleware.CallerFrom(c)); err != nil {
		respondError(c, "DeleteAccount", err)
		return
	}
	if err := h.userService.Logout(ctx, middleware.BearerToken(c)); err != nil {
		log.Warnf("DeleteAccount: failed to revoke token: %v", err)
	}
	respond(c, "Account deleted successfully", nil)
}
