package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/domain"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/infrastructure/redis"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/logger"
)

type WriteErrFunc func(http.ResponseWriter, *http.Request, error)

// RateLimiter is a counter shared between instances of the service.
type RateLimiter interface {
	AllowFixedWindow(ctx context.Context, key string, limit int, window time.Duration) (redis.Decision, error)
}

// Limit is the request budget of one account route, per client IP.
type Limit struct {
	Route    string
	Requests int
	Window   time.Duration
}

func (l Limit) normalized() Limit {
	if l.Window <= 0 {
		l.Window = time.Minute
	}
	if l.Route == "" {
		l.Route = "account"
	}
	return l
}

// counterKey names the shared counter for the client's current window,
// e.g. "account:rl:login:192.0.2.7:29061234". Clients are identified the
// same way the in-process limiter identifies them.
func (l Limit) counterKey(r *http.Request, now time.Time) (string, error) {
	ip, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	secs := int64(l.Window / time.Second)
	if secs <= 0 {
		secs = 1
	}
	return "account:rl:" + l.Route + ":" + ip + ":" + strconv.FormatInt(now.Unix()/secs, 10), nil
}

// RateLimit enforces l. With a shared limiter the counters live in redis and
// a limiter failure lets the request through; without one, httprate counts
// in process. Both paths answer 429 through writeErr.
func RateLimit(shared RateLimiter, l Limit, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	l = l.normalized()
	reject := func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, r, domain.ErrRateLimited(l.Route))
	}

	if shared == nil {
		return httprate.Limit(
			l.Requests,
			l.Window,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(reject),
		)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := l.counterKey(r, time.Now())
			if err == nil {
				var dec redis.Decision
				dec, err = shared.AllowFixedWindow(r.Context(), key, l.Requests, l.Window)
				if err == nil {
					setLimitHeaders(w, dec)
					if !dec.Allowed {
						reject(w, r)
						return
					}
				}
			}
			if err != nil {
				logger.WithCtx(r.Context()).Warn().Err(err).Str("route", l.Route).Msg("rate limiter unavailable")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// setLimitHeaders mirrors the headers httprate sends, so clients see the
// same shape from either limiter.
func setLimitHeaders(w http.ResponseWriter, dec redis.Decision) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))
	if !dec.Allowed && dec.RetryAfter > 0 {
		h.Set("Retry-After", strconv.Itoa(int((dec.RetryAfter+time.Second-1)/time.Second)))
	}
}
