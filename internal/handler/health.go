package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sportevents/backend/internal/model"
)

// Pinger is satisfied by the storage backends.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} model.PingResponse
// @Router /ping [get]
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, model.PingResponse{
		OK: true,
		TS: strconv.FormatInt(time.Now().UnixMilli(), 10),
	})
}

// Healthz godoc
// @Summary Readiness check
// @Description Returns 503 when the database does not answer.
// @Tags health
// @Produce json
// @Success 200 {object} model.StatusResponse
// @Failure 503 {object} model.StatusResponse
// @Router /healthz [get]
func Healthz(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, model.StatusResponse{Status: "unavailable"})
			return
		}
		c.JSON(http.StatusOK, model.StatusResponse{Status: "ok"})
	}
}

func Root(c *gin.Context) {
	c.JSON(http.StatusOK, model.StatusResponse{Status: "ok"})
}
