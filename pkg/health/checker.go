package health

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Check probes a single dependency
type Check func(ctx context.Context) error

// CheckerConfig controls how long a single probe may take
type CheckerConfig struct {
	Timeout time.Duration
}

// DefaultCheckerConfig returns the default probe settings
func DefaultCheckerConfig() CheckerConfig {
	return CheckerConfig{Timeout: 2 * time.Second}
}

// Response represents a health check response
type Response struct {
	Status  string            `json:"status"`
	Service string            `json:"service"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// DatabaseChecker returns a check that pings the database
func DatabaseChecker(db *sql.DB) Check {
	return func(ctx context.Context) error {
		if db == nil {
			return errors.New("database connection is nil")
		}
		return db.PingContext(ctx)
	}
}

// RedisChecker returns a check that pings Redis
func RedisChecker(client redis.Cmdable) Check {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.New("redis client is nil")
		}
		return client.Ping(ctx).Err()
	}
}

// Run executes every check with the configured timeout and reports the overall status
func Run(ctx context.Context, cfg CheckerConfig, checks map[string]Check) (bool, map[string]string) {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	results := make(map[string]string, len(checks))
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		err := checks[name](checkCtx)
		cancel()

		if err != nil {
			results[name] = "unhealthy: " + err.Error()
			healthy = false
			continue
		}
		results[name] = "healthy"
	}
	return healthy, results
}

// Handler returns a gin handler that reports dependency health
func Handler(serviceName, version string, cfg CheckerConfig, checks map[string]Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		healthy, results := Run(c.Request.Context(), cfg, checks)

		status, code := "healthy", http.StatusOK
		if !healthy {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}

		c.JSON(code, Response{
			Status:  status,
			Service: serviceName,
			Version: version,
			Checks:  results,
		})
	}
}
