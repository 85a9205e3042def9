package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/liliang-cn/sitechat/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// limiterStore holds one token bucket per client IP. A bucket left idle
// long enough to refill completely is dropped, since a fresh one behaves the same.
type limiterStore struct {
	limiters  map[string]*clientLimiter
	mu        sync.Mutex
	every     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(requestsPerHour, burst int) *limiterStore {
	if burst <= 0 {
		burst = 1
	}
	interval := time.Hour / time.Duration(requestsPerHour)
	return &limiterStore{
		limiters: make(map[string]*clientLimiter),
		every:    rate.Every(interval),
		burst:    burst,
		idleTTL:  interval * time.Duration(burst),
		now:      time.Now,
	}
}

// allow takes one token from the bucket of ip.
func (s *limiterStore) allow(ip string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	entry, exists := s.limiters[ip]
	if !exists {
		entry = &clientLimiter{limiter: rate.NewLimiter(s.every, s.burst)}
		s.limiters[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// sweep runs at most once per idleTTL. Callers hold mu.
func (s *limiterStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < s.idleTTL {
		return
	}
	s.lastSweep = now
	for ip, entry := range s.limiters {
		if now.Sub(entry.lastSeen) >= s.idleTTL {
			delete(s.limiters, ip)
		}
	}
}

// RateLimit limits requests per client IP. A non-positive rate disables it.
func RateLimit(requestsPerHour, burst int, logger *zap.Logger) gin.HandlerFunc {
	if requestsPerHour <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	store := newLimiterStore(requestsPerHour, burst)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !store.allow(ip) {
			logger.Warn("Request rejected", zap.String("ip", ip), zap.Error(domain.ErrRateLimited))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, domain.ErrorResponse{
				Error: "Demasiadas peticiones. Inténtalo de nuevo más tarde.",
			})
			return
		}
		c.Next()
	}
}
