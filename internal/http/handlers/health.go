package handlers

import "github.com/gin-gonic/gin"

type HealthHandler struct {
	pingDB    func() error
	pingRedis func() error
}

func NewHealthHandler(pingDB, pingRedis func() error) *HealthHandler {
	return &HealthHandler{
		pingDB:    pingDB,
		pingRedis: pingRedis,
	}
}

// Health is the liveness probe; it reports nothing about dependencies.
func (h *HealthHandler) Health(ctx *gin.Context) {
	ctx.JSON(200, gin.H{"status": "ok"})
}

// Readyz checks the backing store (and redis when configured).
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	checks := gin.H{}
	ready := true

	if h.pingDB != nil {
		if err := h.pingDB(); err != nil {
			checks["db"] = "down"
			ready = false
		} else {
			checks["db"] = "up"
		}
	}

	if h.pingRedis != nil {
		if err := h.pingRedis(); err != nil {
			checks["redis"] = "down"
			ready = false
		} else {
			checks["redis"] = "up"
		}
	}

	if !ready {
		ctx.JSON(503, gin.H{"status": "not_ready", "checks": checks})
		return
	}

	ctx.JSON(200, gin.H{"status": "ready", "checks": checks})
}
