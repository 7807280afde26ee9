package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimiterConfig configures RateLimiter.
type RateLimiterConfig struct {
	// Rate is the sustained number of requests per second per client.
	Rate rate.Limit
	// Burst is the number of requests a client may make at once.
	Burst int
	// ExpiresIn drops the state of clients idle for longer.
	ExpiresIn time.Duration
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterStore keeps one token bucket per client IP.
type limiterStore struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	cfg       RateLimiterConfig
	lastSweep time.Time
}

func (s *limiterStore) allow(ip string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastSweep) > s.cfg.ExpiresIn {
		for key, v := range s.visitors {
			if now.Sub(v.lastSeen) > s.cfg.ExpiresIn {
				delete(s.visitors, key)
			}
		}
		s.lastSweep = now
	}

	v, ok := s.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.cfg.Rate, s.cfg.Burst)}
		s.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// RateLimiter answers 429 once a client IP exceeds its token bucket.
func RateLimiter(cfg RateLimiterConfig) fiber.Handler {
	if cfg.ExpiresIn <= 0 {
		cfg.ExpiresIn = 3 * time.Minute
	}
	store := &limiterStore{
		visitors:  make(map[string]*visitor),
		cfg:       cfg,
		lastSweep: time.Now(),
	}
	return func(c *fiber.Ctx) error {
		if !store.allow(c.IP(), time.Now()) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"message": "Too many requests",
			})
		}
		return c.Next()
	}
}
