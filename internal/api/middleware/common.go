package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/kedr891/wishlist-tracker/internal/domain"
	"github.com/kedr891/wishlist-tracker/internal/metrics"
)

// Logger - middleware для логирования запросов
func Logger(log domain.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		log.Info("HTTP Request",
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
			"ip", c.ClientIP(),
		)
	}
}

// Metrics records request count and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start))
	}
}

// CORS - middleware для CORS
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

type rateLimitConfig struct {
	idleTTL time.Duration
	now     func() time.Time
}

// RateLimitOption - настройки RateLimit
type RateLimitOption func(*rateLimitConfig)

// WithIdleTTL drops the limiter of an IP not seen for ttl. ttl <= 0 keeps the default.
func WithIdleTTL(ttl time.Duration) RateLimitOption {
	return func(c *rateLimitConfig) {
		if ttl > 0 {
			c.idleTTL = ttl
		}
	}
}

const _defaultIdleTTL = 10 * time.Minute

// RateLimit - token bucket на каждый IP. rps <= 0 disables limiting.
// The key is gin's ClientIP, so X-Forwarded-For only counts for trusted proxies.
func RateLimit(rps float64, burst int, opts ...RateLimitOption) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	cfg := rateLimitConfig{idleTTL: _defaultIdleTTL, now: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}

	limiters := newIPLimiters(rate.Limit(rps), burst, cfg)

	return func(c *gin.Context) {
		if !limiters.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiters struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	now       func() time.Time
	lastSweep time.Time
	entries   map[string]*ipLimiter
}

func newIPLimiters(limit rate.Limit, burst int, cfg rateLimitConfig) *ipLimiters {
	return &ipLimiters{
		limit:     limit,
		burst:     burst,
		idleTTL:   cfg.idleTTL,
		now:       cfg.now,
		lastSweep: cfg.now(),
		entries:   make(map[string]*ipLimiter),
	}
}

func (l *ipLimiters) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	e, ok := l.entries[ip]
	if !ok {
		e = &ipLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[ip] = e
	}
	e.lastSeen = now

	return e.limiter.AllowN(now, 1)
}

// sweep runs at most once per idleTTL, so the map holds IPs seen within the last two TTLs.
func (l *ipLimiters) sweep(now time.Time) {
	for ip, e := range l.entries {
		if now.Sub(e.lastSeen) >= l.idleTTL {
			delete(l.entries, ip)
		}
	}
	l.lastSweep = now
}
