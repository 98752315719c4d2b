package handler

import (
	"contenthub/internal/middleware"
	"contenthub/internal/service"

	"github.com/gin-gonic/gin"
)

// SettingHandler serves keyed settings.
type SettingHandler struct {
	settingService service.SettingService
}

// NewSettingHandler creates a SettingHandler.
func NewSettingHandler(settingService service.SettingService) *SettingHandler {
	return &SettingHandler{settingService: settingService}
}

// Get handles POST /setting/:key. A missing setting is an empty object.
func (h *SettingHandler) Get(c *gin.Context) {
	setting, err := h.settingService.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, "GetSetting", err)
		return
	}
	respond(c, "success", setting.Values)
}

// Update handles POST /setting/:key/update with a flat string map body.
func (h *SettingHandler) Update(c *gin.Context) {
	var values map[string]string
	if !bindJSON(c, "UpdateSetting", &values) {
		return
	}
	setting, err := h.settingService.Update(c.Request.Context(), middleware.CallerFrom(c), c.Param("key"), values)
	if err != nil {
		respondError(c, "UpdateSetting", err)
		return
	}
	respond(c, "Setting updated successfully", setting.Values)
}

// Delete handles POST /setting/:key/delete.
func (h *SettingHandler) Delete(c *gin.Context) {
	if err := h.settingService.Delete(c.Request.Context(), middleware.CallerFrom(c), c.Param("key")); err != nil {
		respondError(c, "DeleteSetting", err)
		return
	}
	respond(c, "Setting deleted successfully", nil)
}
