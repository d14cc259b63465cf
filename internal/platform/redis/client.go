// Package redis wraps go-redis with pool metrics for the batch dedup guard.
package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"aprovame/internal/platform/config"
)

// Metrics mirrors go-redis pool statistics into Prometheus.
type Metrics struct {
	PoolHits       prometheus.Counter
	PoolMisses     prometheus.Counter
	PoolTimeouts   prometheus.Counter
	PoolStaleConns prometheus.Counter
	PoolTotalConns prometheus.Gauge
	PoolIdleConns  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PoolHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "aprovame_redis_pool_hits_total",
			Help: "Number of times a connection was found in the pool",
		}),
		PoolMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "aprovame_redis_pool_misses_total",
			Help: "Number of times a connection was not found in the pool",
		}),
		PoolTimeouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "aprovame_redis_pool_timeouts_total",
			Help: "Number of times a connection was not obtained due to timeout",
		}),
		PoolStaleConns: factory.NewCounter(prometheus.CounterOpts{
			Name: "aprovame_redis_pool_stale_conns_total",
			Help: "Number of stale connections removed from the pool",
		}),
		PoolTotalConns: factory.NewGauge(prometheus.GaugeOpts{
			Name: "aprovame_redis_pool_total_conns",
			Help: "Number of total connections in the pool",
		}),
		PoolIdleConns: factory.NewGauge(prometheus.GaugeOpts{
			Name: "aprovame_redis_pool_idle_conns",
			Help: "Number of idle connections in the pool",
		}),
	}
}

// Client embeds the go-redis client so it satisfies redis.Cmdable.
type Client struct {
	*redis.Client
	metrics *Metrics

	mu        sync.Mutex
	lastStats *redis.PoolStats
}

// New connects and pings Redis. Returns nil, nil when no URL is configured.
func New(ctx context.Context, cfg config.RedisConfig, metrics *Metrics) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client, metrics: metrics}, nil
}

// Health pings the server. Used by the readiness probe.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// RecordPoolStats copies the current pool statistics into the metrics.
// Counters advance by the delta since the previous call.
func (c *Client) RecordPoolStats() {
	if c.metrics == nil {
		return
	}
	stats := c.PoolStats()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.PoolTotalConns.Set(float64(stats.TotalConns))
	c.metrics.PoolIdleConns.Set(float64(stats.IdleConns))

	prev := c.lastStats
	if prev == nil {
		prev = &redis.PoolStats{}
	}
	addDelta(c.metrics.PoolHits, stats.Hits, prev.Hits)
	addDelta(c.metrics.PoolMisses, stats.Misses, prev.Misses)
	addDelta(c.metrics.PoolTimeouts, stats.Timeouts, prev.Timeouts)
	addDelta(c.metrics.PoolStaleConns, stats.StaleConns, prev.StaleConns)
	c.lastStats = stats
}

// RunPoolStats records pool statistics every interval until ctx is done.
func (c *Client) RunPoolStats(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			c.RecordPoolStats()
		}
	}
}

func addDelta(c prometheus.Counter, current, previous uint32) {
	if current > previous {
		c.Add(float64(current - previous))
	}
}
