package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports liveness of the API and its two backing services. The
// payload carries per-component state only, never connection details.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		componentes := gin.H{"postgres": "ok", "redis": "ok"}
		sano := true

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			componentes["postgres"] = "sin conexión"
			sano = false
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			componentes["redis"] = "sin conexión"
			sano = false
		}

		code := http.StatusOK
		if !sano {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"exito": sano, "componentes": componentes})
	}
}
