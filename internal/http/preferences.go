package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pagemark/pagemark/internal/database/preferences"
)

// PreferencesController serves reader preferences (view mode, last opened
// document and friends) from the injected preference store.
type PreferencesController struct {
	preferences *preferences.Repository
}

func NewPreferencesController(prefs *preferences.Repository) *PreferencesController {
	return &PreferencesController{preferences: prefs}
}

// GetPreference returns one preference value.
// GET /api/preferences/:key
func (pc *PreferencesController) GetPreference(c *gin.Context) {
	key := c.Param("key")

	setting, err := pc.preferences.Get(key)
	if err == gorm.ErrRecordNotFound {
		respondNotFound(c, "preference")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get preference")
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": setting.Key, "value": setting.Value})
}

type setPreferenceRequest struct {
	Value string `json:"value" binding:"required"`
}

// SetPreference creates or updates a preference.
// PUT /api/preferences/:key
func (pc *PreferencesController) SetPreference(c *gin.Context) {
	key := c.Param("key")

	var req setPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "value is required")
		return
	}

	if err := pc.preferences.Set(key, req.Value); err != nil {
		respondInternalError(c, err, "set preference")
		return
	}

	respondSuccess(c, "Preference updated")
}

// DeletePreference removes a preference.
// DELETE /api/preferences/:key
func (pc *PreferencesController) DeletePreference(c *gin.Context) {
	key := c.Param("key")

	if err := pc.preferences.Delete(key); err != nil {
		respondInternalError(c, err, "delete preference")
		return
	}

	respondSuccess(c, "Preference deleted")
}
