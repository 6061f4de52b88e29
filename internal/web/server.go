// Package web provides the HTTP server and handlers for the trending table UI.
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/JonMunkholm/trendboard/internal/config"
	"github.com/JonMunkholm/trendboard/internal/errmsg"
	"github.com/JonMunkholm/trendboard/internal/view"
	appmw "github.com/JonMunkholm/trendboard/internal/web/middleware"
	"github.com/JonMunkholm/trendboard/internal/web/templates"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP server for the trending table.
type Server struct {
	views   *view.Manager
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
	limiter *rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(views *view.Manager, cfg *config.Config) *Server {
	s := &Server{
		views:  views,
		cfg:    cfg,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return s
}

// setupMiddleware configures middleware for all routes. Timeouts and rate
// limiting are per route group, see setupRoutes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(appmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(appmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Use(s.securityHeaders)

	if s.cfg.Rate.Enabled {
		s.limiter = newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute)
	}
}

// rateLimit returns the per-IP limiter middleware, or a passthrough when
// rate limiting is disabled.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return s.limiter.middleware(next)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Assets and the published CSV are not limited. Every view's fetch of
	// the default source comes from the loopback address, so limiting
	// /results would make all views share one bucket.
	s.router.Get("/static/app.css", handleStylesheet)
	results := http.StripPrefix("/results/", http.FileServer(http.Dir(s.cfg.Source.ResultsDir)))
	s.router.Handle("/results/*", results)

	s.router.Group(func(r chi.Router) {
		r.Use(s.rateLimit)

		// Pages and the table fragment wait on the view's fetch, which
		// SOURCE_FETCH_TIMEOUT bounds, so they get no request timeout.
		r.Get("/", s.handlePage(templates.VariantRepo))
		r.Get("/raw", s.handlePage(templates.VariantRaw))
		r.Get("/views/{viewID}/table", s.handleTable)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))

			r.Post("/views/{viewID}/toggle", s.handleToggle)
			r.Post("/views/{viewID}/unmount", s.handleUnmount)
			r.Delete("/views/{viewID}", s.handleUnmount)

			r.Get("/api/views/{viewID}", s.handleViewState)
			r.Get("/healthz", s.handleHealth)
		})
	})
}

// Start begins listening for HTTP requests.
// It returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	csp := "default-src 'self'; script-src 'self' 'unsafe-inline' " + templates.HTMXOrigin +
		"; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		if s.cfg.Security.EnableCSP {
			w.Header().Set("Content-Security-Policy", csp)
		}
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window

	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every window until stopped.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if time.Since(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1,
			lastReset: time.Now(),
		}
		return true
	}

	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by client IP.
// TrustedRealIP has already rewritten RemoteAddr for proxied requests.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(appmw.ClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			respondUserError(w, r, errmsg.MapError(errRateLimited), http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
