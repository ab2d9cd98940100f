package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"wakemeup/internal/middleware"
	"wakemeup/internal/store"
)

type DeviceHandler struct {
	Store store.Store
}

type deviceBody struct {
	Name string `json:"name"`
	MAC  string `json:"mac_address"`
}

type deviceResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	MAC  string `json:"mac_address"`
}

func (h *DeviceHandler) List(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c)

	devices, err := h.Store.ListDevices(c.Request.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("req_id", middleware.RequestIDFrom(c)).Msg("list devices failed")
		c.JSON(http.StatusInternalServerError, middleware.ErrorBody(c, "DATABASE_ERROR"))
		return
	}

	out := make([]deviceResponse, 0, len(devices))
	for _, d := range devices {
		out = append(out, deviceResponse{ID: d.ID, Name: d.Name, MAC: d.MAC})
	}
	c.JSON(http.StatusOK, gin.H{"devices": out})
}

func (h *DeviceHandler) Add(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c)

	var body deviceBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == "" || body.MAC == "" {
		c.JSON(http.StatusBadRequest, middleware.ErrorBody(c, "INVALID_PARAMS"))
		return
	}

	if err := h.Store.AddDevice(c.Request.Context(), userID, store.NewDevice{Name: body.Name, MAC: body.MAC}); err != nil {
		log.Error().Err(err).Str("req_id", middleware.RequestIDFrom(c)).Msg("add device failed")
		c.JSON(http.StatusInternalServerError, middleware.ErrorBody(c, "DATABASE_ERROR"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *DeviceHandler) Update(c *gin.Context) {
	deviceID, ok := h.ownedDevice(c)
	if !ok {
		return
	}

	var body deviceBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Name == "" || body.MAC == "" {
		c.JSON(http.StatusBadRequest, middleware.ErrorBody(c, "INVALID_PARAMS"))
		return
	}

	if err := h.Store.UpdateDevice(c.Request.Context(), deviceID, store.NewDevice{Name: body.Name, MAC: body.MAC}); err != nil {
		log.Error().Err(err).Str("req_id", middleware.RequestIDFrom(c)).Msg("update device failed")
		c.JSON(http.StatusInternalServerError, middleware.ErrorBody(c, "DATABASE_ERROR"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *DeviceHandler) Delete(c *gin.Context) {
	deviceID, ok := h.ownedDevice(c)
	if !ok {
		return
	}

	if err := h.Store.DeleteDevice(c.Request.Context(), deviceID); err != nil {
		log.Error().Err(err).Str("req_id", middleware.RequestIDFrom(c)).Msg("delete device failed")
		c.JSON(http.StatusInternalServerError, middleware.ErrorBody(c, "DATABASE_ERROR"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ownedDevice parses the :id parameter and enforces that the device
// belongs to the authenticated user. A device owned by somebody else is
// reported exactly like a missing one.
func (h *DeviceHandler) ownedDevice(c *gin.Context) (int64, bool) {
	userID, _ := middleware.UserIDFromContext(c)

	deviceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorBody(c, "INVALID_PARAMS"))
		return 0, false
	}

	owns, err := h.Store.UserOwnsDevice(c.Request.Context(), userID, deviceID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Error().Err(err).Str("req_id", middleware.RequestIDFrom(c)).Msg("ownership check failed")
		c.JSON(http.StatusInternalServerError, middleware.ErrorBody(c, "DATABASE_ERROR"))
		return 0, false
	}
	if !owns {
		c.JSON(http.StatusBadRequest, middleware.ErrorBody(c, "INVALID_PARAMS"))
		return 0, false
	}
	return deviceID, true
}
