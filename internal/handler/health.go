package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb}
}

// Check godoc
// @Summary Liveness and dependency health
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK
	deps := gin.H{}

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		deps["database"] = "down"
		status = http.StatusServiceUnavailable
	} else {
		deps["database"] = "up"
	}

	if h.rdb != nil {
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			// Redis is advisory (cache + queue); report degraded, stay healthy.
			deps["redis"] = "down"
		} else {
			deps["redis"] = "up"
		}
	} else {
		deps["redis"] = "disabled"
	}

	c.JSON(status, gin.H{
		"success":      status == http.StatusOK,
		"data":         gin.H{"status": statusWord(status), "dependencies": deps},
		"generated_at": time.Now().UTC().Format(time.RFC3339),
	})
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "healthy"
	}
	return "unhealthy"
}
