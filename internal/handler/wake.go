package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"wakemeup/internal/metrics"
	"wakemeup/internal/middleware"
	"wakemeup/internal/relay"
	"wakemeup/internal/store"
	"wakemeup/internal/wire"
)

type WakeHandler struct {
	Store store.Store
	Relay *relay.Coordinator
}

// Wake relays a wake command for one of the caller's devices to their
// connected agent. A negative or missing acknowledgement is a normal
// response with success=false, so the UI can tell "your machine said
// no or never answered" apart from server faults.
func (h *WakeHandler) Wake(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c)
	m := metrics.Init(nil)

	deviceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorBody(c, "INVALID_PARAMS"))
		return
	}

	owns, err := h.Store.UserOwnsDevice(c.Request.Context(), userID, deviceID)
	if err != nil {
		log.Error().Err(err).Str("req_id", middleware.RequestIDFrom(c)).Msg("ownership check failed")
		c.JSON(http.StatusInternalServerError, middleware.ErrorBody(c, "DATABASE_ERROR"))
		return
	}
	if !owns {
		c.JSON(http.StatusBadRequest, middleware.ErrorBody(c, "INVALID_PARAMS"))
		return
	}

	device, err := h.Store.GetDevice(c.Request.Context(), deviceID)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusBadRequest, middleware.ErrorBody(c, "INVALID_PARAMS"))
		return
	}
	if err != nil {
		log.Error().Err(err).Str("req_id", middleware.RequestIDFrom(c)).Msg("device lookup failed")
		c.JSON(http.StatusInternalServerError, middleware.ErrorBody(c, "DATABASE_ERROR"))
		return
	}

	req := wire.WakeRequest{Device: wire.Device{ID: device.ID, Name: device.Name, MAC: device.MAC}}
	success, err := h.Relay.Wake(c.Request.Context(), userID, req)
	switch {
	case errors.Is(err, relay.ErrNoSession):
		m.WakeRequests.WithLabelValues(metrics.ResultNoSession).Inc()
		log.Warn().Int64("user_id", userID).Str("req_id", middleware.RequestIDFrom(c)).Msg("wake with no agent connected")
		c.JSON(http.StatusNotFound, middleware.ErrorBody(c, "NOT_FOUND"))
		return
	case errors.Is(err, relay.ErrSendFailed):
		m.WakeRequests.WithLabelValues(metrics.ResultSendFailed).Inc()
		log.Error().Int64("user_id", userID).Str("req_id", middleware.RequestIDFrom(c)).Msg("wake send failed")
		c.JSON(http.StatusInternalServerError, middleware.ErrorBody(c, "SERVICE_ERROR"))
		return
	case err != nil:
		m.WakeRequests.WithLabelValues(metrics.ResultSendFailed).Inc()
		log.Error().Err(err).Str("req_id", middleware.RequestIDFrom(c)).Msg("wake failed")
		c.JSON(http.StatusInternalServerError, middleware.ErrorBody(c, "SERVICE_ERROR"))
		return
	}

	if success {
		m.WakeRequests.WithLabelValues(metrics.ResultOK).Inc()
	} else {
		m.WakeRequests.WithLabelValues(metrics.ResultNegative).Inc()
	}
	c.JSON(http.StatusOK, gin.H{"success": success})
}
