package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"wakemeup/internal/middleware"
	"wakemeup/internal/store"
)

type AuthHandler struct {
	Store store.Store
	Auth  *middleware.CookieAuth
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials against the stored argon2 hash and starts
// a cookie session. Unknown user and wrong password are not
// distinguishable to the caller.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorBody(c, "INVALID_PARAMS"))
		return
	}

	user, err := h.Store.GetUserByUsername(c.Request.Context(), body.Username)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusForbidden, middleware.ErrorBody(c, "LOGIN_FAIL"))
		return
	}
	if err != nil {
		log.Error().Err(err).Str("req_id", middleware.RequestIDFrom(c)).Msg("login user lookup failed")
		c.JSON(http.StatusInternalServerError, middleware.ErrorBody(c, "DATABASE_ERROR"))
		return
	}

	if err := store.VerifyPassword(body.Password, user.PasswordHash); err != nil {
		c.JSON(http.StatusForbidden, middleware.ErrorBody(c, "LOGIN_FAIL"))
		return
	}

	if err := h.Auth.SetSession(c, user.ID); err != nil {
		log.Error().Err(err).Str("req_id", middleware.RequestIDFrom(c)).Msg("login cookie seal failed")
		c.JSON(http.StatusInternalServerError, middleware.ErrorBody(c, "SERVICE_ERROR"))
		return
	}

	log.Info().Int64("user_id", user.ID).Msg("user logged in")
	c.JSON(http.StatusOK, gin.H{"success": true, "user_id": user.ID})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c)
	middleware.ClearSession(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "user_id": userID})
}

// Validate exists for the UI: a protected no-op whose side effect is the
// middleware's cookie refresh.
func (h *AuthHandler) Validate(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "user_id": userID})
}
