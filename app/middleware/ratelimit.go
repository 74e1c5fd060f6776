package appMiddleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/go-itinerary-builder/internal/api"
)

// visitorTTL is how long an idle client keeps its token bucket.
const visitorTTL = 10 * time.Minute

// RateLimiter hands every client IP its own token bucket.
type RateLimiter struct {
	perSecond rate.Limit
	burst     int
	visitors  *cache.Cache
	logger    *slog.Logger
}

func NewRateLimiter(perSecond float64, burst int, logger *slog.Logger) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		perSecond: rate.Limit(perSecond),
		burst:     burst,
		visitors:  cache.New(visitorTTL, 2*visitorTTL),
		logger:    logger,
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	if v, ok := rl.visitors.Get(ip); ok {
		rl.visitors.SetDefault(ip, v)
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(rl.perSecond, rl.burst)
	if err := rl.visitors.Add(ip, limiter, cache.DefaultExpiration); err != nil {
		// lost the race to another request from the same client
		if v, ok := rl.visitors.Get(ip); ok {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

// Limit rejects requests over the client's budget with 429.
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		limiter := rl.limiterFor(ip)
		if !limiter.Allow() {
			rl.logger.WarnContext(r.Context(), "Rate limit exceeded",
				slog.String("remote_ip", ip),
				slog.String("path", r.URL.Path))
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(rl.perSecond)))
			api.ErrorResponse(w, r, http.StatusTooManyRequests, "Too many requests, please retry later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfterSeconds(perSecond rate.Limit) int {
	if perSecond <= 0 {
		return 60
	}
	secs := int(1 / float64(perSecond))
	if secs < 1 {
		secs = 1
	}
	return secs
}
