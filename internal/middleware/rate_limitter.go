package middleware

import (
	"TemanCerita/pkg/handlerUtil"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiter struct {
	bucket    map[string]*visitor
	rate      rate.Limit
	burstSize int
	mutex     *sync.Mutex
	now       func() time.Time
}

func newRateLimiter(reqRate rate.Limit, burstSize int) *rateLimiter {
	return &rateLimiter{
		bucket:    make(map[string]*visitor),
		rate:      reqRate,
		burstSize: burstSize,
		mutex:     &sync.Mutex{},
		now:       time.Now,
	}
}

func (r *rateLimiter) GetLimiterFrom(ip string) *rate.Limiter {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	v, exist := r.bucket[ip]
	if !exist {
		v = &visitor{limiter: rate.NewLimiter(r.rate, r.burstSize)}
		r.bucket[ip] = v
	}
	v.lastSeen = r.now()

	return v.limiter
}

// sweep forgets clients not seen for idle and returns how many were removed.
func (r *rateLimiter) sweep(idle time.Duration) int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	removed := 0
	for ip, v := range r.bucket {
		if r.now().Sub(v.lastSeen) > idle {
			delete(r.bucket, ip)
			removed++
		}
	}
	return removed
}

func (m *middleware) NewRateLimiter(ctx *fiber.Ctx) error {
	clientIP := ctx.IP()
	limiter := m.rateLimitter.GetLimiterFrom(clientIP)

	if !limiter.Allow() {
		m.log.Warnf("too many requests for IP %s", clientIP)
		return handlerUtil.New(m.log).HandleTooManyRequests(ctx)
	}

	return ctx.Next()
}

func (m *middleware) SweepRateLimiter(idle time.Duration) int {
	return m.rateLimitter.sweep(idle)
}
