package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/orrn/printq/internal/config"
	"github.com/orrn/printq/internal/db"
	"github.com/orrn/printq/internal/logging"
)

// SettingsLister reads the persisted key/value settings.
type SettingsLister interface {
	ListSettings(ctx context.Context) ([]*db.Setting, error)
}

type SettingsHandler struct {
	settings SettingsLister
	config   *config.Config
}

type ServerConfigResponse struct {
	Port                       int      `json:"port"`
	ReadTimeout                string   `json:"read_timeout"`
	WriteTimeout               string   `json:"write_timeout"`
	TrustedProxies             []string `json:"trusted_proxies"`
	DatabasePath               string   `json:"database_path"`
	TokenTTL                   string   `json:"token_ttl"`
	SecureCookie               bool     `json:"secure_cookie"`
	BootstrapAdminEmail        string   `json:"bootstrap_admin_email,omitempty"`
	LowStockThresholdGrams     float64  `json:"low_stock_threshold_grams"`
	SweepInterval              string   `json:"sweep_interval"`
	DeductEstimateOnCompletion bool     `json:"deduct_estimate_on_completion"`
	LogLevel                   string   `json:"log_level"`
	LogFormat                  string   `json:"log_format"`
}

type StoredSetting struct {
	Key       string `json:"key"`
	Value     string `json:"value"`
	Encrypted bool   `json:"encrypted"`
	UpdatedAt string `json:"updated_at"`
}

func NewSettingsHandler(settings SettingsLister, cfg *config.Config) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		config:   cfg,
	}
}

func (h *SettingsHandler) GetServerConfig(c *gin.Context) {
	sweep := "disabled"
	if h.config.Jobs.SweepInterval > 0 {
		sweep = h.config.Jobs.SweepInterval.String()
	}

	c.JSON(http.StatusOK, ServerConfigResponse{
		Port:                       h.config.Server.Port,
		ReadTimeout:                h.config.Server.ReadTimeout.String(),
		WriteTimeout:               h.config.Server.WriteTimeout.String(),
		TrustedProxies:             h.config.Server.TrustedProxies,
		DatabasePath:               h.config.Database.Path,
		TokenTTL:                   h.config.Auth.TokenTTL.String(),
		SecureCookie:               h.config.Auth.SecureCookie,
		BootstrapAdminEmail:        h.config.Auth.BootstrapAdmin.Email,
		LowStockThresholdGrams:     h.config.Jobs.LowStockThresholdGrams,
		SweepInterval:              sweep,
		DeductEstimateOnCompletion: h.config.Jobs.DeductEstimateOnCompletion,
		LogLevel:                   h.config.Logging.Level,
		LogFormat:                  h.config.Logging.Format,
	})
}

// GetStoredSettings lists persisted settings with every value masked.
func (h *SettingsHandler) GetStoredSettings(c *gin.Context) {
	settings, err := h.settings.ListSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]StoredSetting, 0, len(settings))
	for _, s := range settings {
		out = append(out, StoredSetting{
			Key:       s.Key,
			Value:     logging.MaskSecret(s.Value),
			Encrypted: s.Encrypted,
			UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *SettingsHandler) RegisterRoutes(admin *gin.RouterGroup) {
	admin.GET("/admin/settings", h.GetServerConfig)
	admin.GET("/admin/settings/stored", h.GetStoredSettings)
}
