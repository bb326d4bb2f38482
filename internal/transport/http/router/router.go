package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/middleware"
	"github.com/baechuer/real-time-ressys/services/account-service/internal/transport/http/response"
)

type HealthHandler interface {
	Healthz(w http.ResponseWriter, r *http.Request)
	Readyz(w http.ResponseWriter, r *http.Request)
}

type AccountHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	LinkID(w http.ResponseWriter, r *http.Request)
	UserWithPosts(w http.ResponseWriter, r *http.Request)
	DeleteUser(w http.ResponseWriter, r *http.Request)
}

type RateLimitConfig struct {
	Enabled       bool
	RegisterLimit int
	LoginLimit    int
	Window        time.Duration
}

type Deps struct {
	Health  HealthHandler
	Account AccountHandler

	RateLimit RateLimitConfig
	// Limiter is the shared Redis limiter; nil falls back to an in-process limiter.
	Limiter middleware.RateLimiter
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Account == nil {
		return nil, fmt.Errorf("nil Account handler")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog)

	r.Get("/healthz", deps.Health.Healthz)
	r.Get("/readyz", deps.Health.Readyz)

	r.With(limitFor(deps, "register", deps.RateLimit.RegisterLimit)).Post("/register", deps.Account.Register)
	r.With(limitFor(deps, "login", deps.RateLimit.LoginLimit)).Post("/login", deps.Account.Login)
	r.Post("/link_id", deps.Account.LinkID)
	r.Get("/user_with_posts/{user_email}", deps.Account.UserWithPosts)
	r.Delete("/delete_user/{user_email}", deps.Account.DeleteUser)

	return r, nil
}

func limitFor(deps Deps, route string, limit int) func(http.Handler) http.Handler {
	if !deps.RateLimit.Enabled || limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RateLimit(deps.Limiter, middleware.Limit{
		Route:    route,
		Requests: limit,
		Window:   deps.RateLimit.Window,
	}, response.WriteError)
}
