package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

const pingTimeout = 5 * time.Second

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// PoolHealth is the payload served by the database health endpoint.
type PoolHealth struct {
	Status        string `json:"status"`
	Error         string `json:"error,omitempty"`
	TotalConns    int32  `json:"totalConns"`
	IdleConns     int32  `json:"idleConns"`
	AcquiredConns int32  `json:"acquiredConns"`
	MaxConns      int32  `json:"maxConns"`
}

// OK reports whether the pool answered the health ping.
func (h PoolHealth) OK() bool {
	return h.Status == StatusHealthy
}

// CheckPool pings the database with a bounded timeout and snapshots
// the pool counters.
func CheckPool(ctx context.Context, pool *pgxpool.Pool) PoolHealth {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	stat := pool.Stat()
	h := PoolHealth{
		Status:        StatusHealthy,
		TotalConns:    stat.TotalConns(),
		IdleConns:     stat.IdleConns(),
		AcquiredConns: stat.AcquiredConns(),
		MaxConns:      stat.MaxConns(),
	}
	if err := pool.Ping(ctx); err != nil {
		h.Status = StatusUnhealthy
		h.Error = err.Error()
	}
	return h
}

// HealthHandler serves the connection pool health check.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		h := CheckPool(c.Request().Context(), pool)
		if !h.OK() {
			return c.JSON(http.StatusServiceUnavailable, h)
		}
		return c.JSON(http.StatusOK, h)
	}
}
