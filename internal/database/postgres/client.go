package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tastebud/tastebud-api/pkg/metrics"
)

// Client wraps a pgx connection pool with observability
type Client struct {
	pool *pgxpool.Pool
}

// NewClient creates a database client on top of an existing pool
func NewClient(pool *pgxpool.Pool) *Client {
	return &Client{pool: pool}
}

// Ping checks database connectivity
func (c *Client) Ping(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// recordMetrics records database operation metrics
func recordMetrics(operation, status string, duration float64) {
	metrics.PostgresRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.PostgresRequestTotal.WithLabelValues(operation, status).Inc()
}

// nilIfEmpty converts empty strings to nil for nullable columns
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
