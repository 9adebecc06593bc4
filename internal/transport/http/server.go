package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/quietline/quietline-server/internal/auth"
	"github.com/quietline/quietline-server/internal/config"
	"github.com/quietline/quietline-server/internal/core"
)

// NewServer builds the HTTP server: health check, listener REST login, and
// the WebSocket endpoint. The WebSocket route is served outside gin because
// the upgrade needs to hijack the raw connection.
func NewServer(hub *core.Hub, authService *auth.Service, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)

	api := NewAPIHandlers(authService, cfg.LoginRateLimit, logger)
	router.POST("/api/login", api.Login)

	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, authService, cfg.AuthTimeout, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
