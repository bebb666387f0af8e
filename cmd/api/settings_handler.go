package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"healthpulse-backend/internal/settings/domain"
	settingsRepo "healthpulse-backend/internal/settings/repository"
)

// settableKeys are the keys the settings API accepts
var settableKeys = map[string]bool{
	domain.KeySlackBotToken: true,
	domain.KeyGeminiAPIKey:  true,
}

// SettingsHandler handles runtime-configurable settings. Values are stored
// in the database; environment variables take priority at startup.
type SettingsHandler struct {
	repo settingsRepo.SettingRepository

	// envValues records which keys the environment already provides,
	// so reads can report where the effective value comes from.
	envValues map[string]string
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(repo settingsRepo.SettingRepository, envValues map[string]string) *SettingsHandler {
	return &SettingsHandler{repo: repo, envValues: envValues}
}

// maskValue hides all but the last four characters of a secret
func maskValue(v string) string {
	if v == "" {
		return ""
	}
	if len(v) <= 4 {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
}

// GetSettings returns all known settings with masked values
// GET /api/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	out := make([]gin.H, 0, len(settableKeys))
	for key := range settableKeys {
		stored, err := h.repo.Get(key)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		source := "unset"
		effective := stored
		if stored != "" {
			source = "database"
		}
		if env := h.envValues[key]; env != "" {
			source = "environment"
			effective = env
		}

		out = append(out, gin.H{
			"key":    key,
			"value":  maskValue(effective),
			"source": source,
		})
	}

	c.JSON(http.StatusOK, gin.H{"settings": out})
}

// UpdateSettingRequest represents the request body for updating a setting
type UpdateSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

// UpdateSetting stores a new value for a known setting key
// PUT /api/settings/:key
func (h *SettingsHandler) UpdateSetting(c *gin.Context) {
	key := c.Param("key")
	if !settableKeys[key] {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown setting key"})
		return
	}

	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.repo.Set(key, req.Value); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"message": "Setting updated successfully",
		"key":     key,
		"value":   maskValue(req.Value),
	}
	if h.envValues[key] != "" {
		resp["warning"] = "An environment variable overrides this setting until it is removed"
	}

	c.JSON(http.StatusOK, resp)
}
