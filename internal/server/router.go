package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wakemeup/internal/handler"
	"wakemeup/internal/middleware"
	"wakemeup/internal/registry"
	"wakemeup/internal/relay"
	"wakemeup/internal/store"
	"wakemeup/internal/token"
)

type Deps struct {
	Store       store.Store
	Sealer      *token.Sealer
	Conns       *registry.Conns
	Pending     *registry.Pending
	WakeTimeout time.Duration
	Now         func() time.Time // nil means time.Now; tests inject a clock
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	cookieAuth := &middleware.CookieAuth{Sealer: deps.Sealer, Now: deps.Now}
	coordinator := &relay.Coordinator{Conns: deps.Conns, Pending: deps.Pending, Timeout: deps.WakeTimeout}

	authHandler := &handler.AuthHandler{Store: deps.Store, Auth: cookieAuth}
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	r.POST("/login", middleware.RateLimit(loginLimiter), authHandler.Login)

	protected := r.Group("/")
	protected.Use(cookieAuth.RequireAuth())

	protected.GET("/logout", authHandler.Logout)
	protected.GET("/validate", authHandler.Validate)

	deviceHandler := &handler.DeviceHandler{Store: deps.Store}
	protected.GET("/devices", deviceHandler.List)
	protected.POST("/devices", deviceHandler.Add)
	protected.PATCH("/device/:id", deviceHandler.Update)
	protected.DELETE("/device/:id", deviceHandler.Delete)

	wakeHandler := &handler.WakeHandler{Store: deps.Store, Relay: coordinator}
	protected.GET("/wake_up/:id", wakeHandler.Wake)

	infoHandler := &handler.InfoHandler{Conns: deps.Conns}
	protected.GET("/info", infoHandler.Connected)

	wsHandler := &handler.WebSocketHandler{Conns: deps.Conns, Pending: deps.Pending}
	protected.GET("/ws", wsHandler.Serve)

	return r
}
