package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"telemetry-bridge/internal/ingest"
	"telemetry-bridge/internal/logging"
	"telemetry-bridge/internal/models"
)

// DeviceStore is the slice of the document store the API needs.
type DeviceStore interface {
	EnsureConfig(ctx context.Context, deviceID string) (models.DeviceConfig, error)
	SaveConfig(ctx context.Context, deviceID string, cfg models.DeviceConfig) error
	EnsureErrorState(ctx context.Context, deviceID string) (models.ErrorState, error)
	LoadStatus(ctx context.Context, deviceID string) (models.Reading, error)
	LoadHistory(ctx context.Context, deviceID string, limit int) ([]models.Reading, error)
}

// ConfigPusher forwards a saved configuration to the device.
type ConfigPusher interface {
	PushConfig(ctx context.Context, deviceID string, cfg models.DeviceConfig) error
}

type Handler struct {
	store  DeviceStore
	pusher ConfigPusher
	svc    *ingest.Service
	logger *logging.Logger
}

func NewHandler(store DeviceStore, pusher ConfigPusher, svc *ingest.Service, logger *logging.Logger) *Handler {
	return &Handler{store: store, pusher: pusher, svc: svc, logger: logger}
}

// GetConfig returns the device configuration, creating the default document
// on first contact.
func (h *Handler) GetConfig(c *gin.Context) {
	deviceID := c.Param("id")
	cfg, err := h.store.EnsureConfig(c.Request.Context(), deviceID)
	if err != nil {
		h.logger.Errorf("Failed to get config for device %s: %v", deviceID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get config"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateConfig persists an edited configuration document and relays it to
// the device. The save is authoritative; a failed relay is reported but the
// document stays saved.
func (h *Handler) UpdateConfig(c *gin.Context) {
	deviceID := c.Param("id")

	var cfg models.DeviceConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		h.logger.Errorf("Invalid config body for device %s: %v", deviceID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if cfg.MaxPH <= cfg.MinPH || cfg.MaxTemperature <= cfg.MinTemperature {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thresholds out of order"})
		return
	}
	if cfg.UpdateIntervalMinutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "update_interval_minutes must be positive"})
		return
	}

	if err := h.store.SaveConfig(c.Request.Context(), deviceID, cfg); err != nil {
		h.logger.Errorf("Failed to save config for device %s: %v", deviceID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save config"})
		return
	}

	if err := h.pusher.PushConfig(c.Request.Context(), deviceID, cfg); err != nil {
		h.logger.Errorf("Failed to push config to device %s: %v", deviceID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Config saved but device push failed"})
		return
	}

	h.logger.Infof("Config updated and pushed for device %s", deviceID)
	c.JSON(http.StatusOK, cfg)
}

// GetStatus returns the latest reading for a device.
func (h *Handler) GetStatus(c *gin.Context) {
	deviceID := c.Param("id")
	status, err := h.store.LoadStatus(c.Request.Context(), deviceID)
	if err != nil {
		h.logger.Errorf("Failed to get status for device %s: %v", deviceID, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "No status for device"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// GetHistory returns recent readings, newest first.
func (h *Handler) GetHistory(c *gin.Context) {
	deviceID := c.Param("id")
	limit := 100
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 && l <= 1000 {
		limit = l
	}

	history, err := h.store.LoadHistory(c.Request.Context(), deviceID, limit)
	if err != nil {
		h.logger.Errorf("Failed to get history for device %s: %v", deviceID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get history"})
		return
	}
	c.JSON(http.StatusOK, history)
}

// GetErrorState returns the current error-state document.
func (h *Handler) GetErrorState(c *gin.Context) {
	deviceID := c.Param("id")
	state, err := h.store.EnsureErrorState(c.Request.Context(), deviceID)
	if err != nil {
		h.logger.Errorf("Failed to get error state for device %s: %v", deviceID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get error state"})
		return
	}
	c.JSON(http.StatusOK, state)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// AlertFeed upgrades to a websocket and subscribes the client to alerts for
// one device.
func (h *Handler) AlertFeed(c *gin.Context) {
	deviceID := c.Param("id")
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("WebSocket upgrade failed for device %s: %v", deviceID, err)
		return
	}

	h.svc.AddWebSocketConnection(deviceID, conn)
	go func() {
		defer func() {
			h.svc.RemoveWebSocketConnection(deviceID, conn)
			_ = conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
