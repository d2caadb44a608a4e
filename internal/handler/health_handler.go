package handler

import (
	"context"
	"net/http"
	"time"

	"boards/internal/response"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Live reports that the process is serving requests.
func (h *HealthHandler) Live(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Ready reports whether the database answers within a short deadline.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		response.Fail(c, http.StatusServiceUnavailable, response.CodeInternal, "database unavailable")
		return
	}
	c.String(http.StatusOK, "ok")
}
