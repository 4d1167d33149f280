package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/venuebook/venuebook/pkg/database"
	"github.com/venuebook/venuebook/pkg/redis"
	"github.com/venuebook/venuebook/pkg/response"
)

// HealthHandler serves liveness and readiness probes
type HealthHandler struct {
	pool        *pgxpool.Pool
	redisClient *goredis.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(pool *pgxpool.Pool, redisClient *goredis.Client) *HealthHandler {
	return &HealthHandler{pool: pool, redisClient: redisClient}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"status": "up"})
}

// Ready handles GET /ready, checking the backing stores
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()
	checks := gin.H{"database": "up", "redis": "up"}
	healthy := true

	if err := database.HealthCheck(ctx, h.pool); err != nil {
		checks["database"] = "down"
		healthy = false
	}
	if err := redis.HealthCheck(ctx, h.redisClient); err != nil {
		checks["redis"] = "down"
		healthy = false
	}

	if !healthy {
		response.Error(c, http.StatusServiceUnavailable, "service unavailable")
		return
	}
	response.Success(c, http.StatusOK, checks)
}
