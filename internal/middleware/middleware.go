// Package middleware holds HTTP middlewares that do not depend on the
// application state.
package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
	"golang.org/x/time/rate"
)

type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ValidateRequest checks path parameters and JSON bodies against the OpenAPI
// document. Requests for paths the document does not describe pass through
// so the router can answer them.
func ValidateRequest(doc *openapi3.T, onError ErrorHandler) (func(http.Handler) http.Handler, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				var routeErr *routers.RouteError
				if errors.As(err, &routeErr) {
					next.ServeHTTP(w, r)
					return
				}

				onError(w, r, err)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				},
			}

			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

type RateLimitConfig struct {
	RPS     float64
	Burst   int
	Enabled bool
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps a token bucket per client IP. Buckets idle for longer
// than three minutes are dropped by the cleanup loop.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	cfg     RateLimitConfig
}

func NewRateLimiter(ctx context.Context, cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*client),
		cfg:     cfg,
	}

	go rl.cleanupLoop(ctx)

	return rl
}

func (rl *RateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for ip, c := range rl.clients {
				if time.Since(c.lastSeen) > 3*time.Minute {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, found := rl.clients[ip]
	if !found {
		c = &client{limiter: rate.NewLimiter(rate.Limit(rl.cfg.RPS), rl.cfg.Burst)}
		rl.clients[ip] = c
	}

	c.lastSeen = time.Now()

	return c.limiter.Allow()
}

// Handler rejects requests of clients that ran out of tokens with onLimited.
func (rl *RateLimiter) Handler(onLimited http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !rl.Allow(ip) {
				onLimited(w, r)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
