package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/peerwire/sigrelay/internal/config"
	"github.com/peerwire/sigrelay/internal/core"
)

const serviceName = "sigrelay"

// NewServer builds the HTTP server: health and status probes plus the
// signaling endpoint.
func NewServer(clients *core.ClientRegistry, rooms *core.RoomRegistry, router *core.Router, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", healthHandler)
	engine.GET("/status", statusHandler(clients, rooms))
	engine.GET("/ws", gin.WrapH(NewWSHandler(clients, router, cfg, logger)))

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.JSON(stdhttp.StatusOK, gin.H{"service": serviceName, "status": "ok"})
}

func statusHandler(clients *core.ClientRegistry, rooms *core.RoomRegistry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(stdhttp.StatusOK, gin.H{
			"service": serviceName,
			"rooms":   rooms.Len(),
			"clients": clients.Len(),
		})
	}
}
