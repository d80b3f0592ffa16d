package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"docuchat/internal/transport/http/response"
)

type HealthHandler struct {
	db        *gorm.DB
	redisCli  *redis.Client
	appName   string
	startedAt time.Time
}

func NewHealthHandler(db *gorm.DB, redisCli *redis.Client, appName string, startedAt time.Time) *HealthHandler {
	return &HealthHandler{
		db:        db,
		redisCli:  redisCli,
		appName:   appName,
		startedAt: startedAt,
	}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	mysqlStatus := "ok"
	if sqlDB, err := h.db.DB(); err != nil {
		mysqlStatus = "error"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		mysqlStatus = "error"
	}

	redisStatus := "ok"
	if h.redisCli == nil {
		redisStatus = "disabled"
	} else if err := h.redisCli.Ping(ctx).Err(); err != nil {
		redisStatus = "error"
	}

	status := "ok"
	if mysqlStatus == "error" || redisStatus == "error" {
		status = "degraded"
	}

	data := gin.H{
		"status":         status,
		"service":        h.appName,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"dependencies": gin.H{
			"mysql": mysqlStatus,
			"redis": redisStatus,
		},
	}

	if status != "ok" {
		c.JSON(http.StatusServiceUnavailable, response.APIResponse{
			Success: false,
			Message: "degraded",
			Data:    data,
		})
		return
	}
	response.OK(c, "ok", data)
}
