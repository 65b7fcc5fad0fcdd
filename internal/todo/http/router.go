package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/todo/internal/todo/service"
	"github.com/aussiebroadwan/todo/internal/todo/store"
	"github.com/aussiebroadwan/todo/pkg/httpx"
	"github.com/aussiebroadwan/todo/pkg/jwtx"
	"github.com/aussiebroadwan/todo/pkg/slogx"

	_ "github.com/aussiebroadwan/todo/api/todo" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	AuthService *service.AuthService
	TaskService *service.TaskService

	// AuthLimit applies per IP across the /auth endpoints, APILimit per
	// account on the task endpoints.
	AuthLimit httpx.RateLimitConfig
	APILimit  httpx.RateLimitConfig
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	corsOrigins []string,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		AuthLimit:    httpx.AuthLimit,
		APILimit:     httpx.APILimit,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(corsOrigins),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerTasks()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Todo API
//	@version		0.1.0
//	@description	To-do list service with rotating refresh-token sessions.
//	@description
//	@description				Access tokens are HS256 JWTs valid for one hour. Refresh tokens are opaque, single use and valid for seven days.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/todo
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService}

	// One bucket per IP shared by every credential-accepting endpoint.
	limit := httpx.RateLimitByIP(r.AuthLimit)

	r.Mux.Handle("POST /auth/register", httpx.Chain(http.HandlerFunc(h.HandleRegister), limit))
	r.Mux.Handle("POST /auth/login", httpx.Chain(http.HandlerFunc(h.HandleLogin), limit))
	r.Mux.Handle("POST /auth/refresh-token", httpx.Chain(http.HandlerFunc(h.HandleRefresh), limit))
	r.Mux.Handle("POST /auth/logout", httpx.Chain(http.HandlerFunc(h.HandleLogout), limit))

	r.Mux.Handle("GET /auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(r.APILimit),
		),
	)
}

func (r *Router) registerTasks() {
	h := &TaskHandler{TaskService: r.TaskService}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByAccount(r.APILimit),
		)
	}

	r.Mux.Handle("GET /tasks", secured(h.HandleList))
	r.Mux.Handle("POST /tasks", secured(h.HandleCreate))
	r.Mux.Handle("GET /tasks/{id}", secured(h.HandleGet))
	r.Mux.Handle("PUT /tasks/{id}/toggle", secured(h.HandleToggle))
	r.Mux.Handle("DELETE /tasks/{id}", secured(h.HandleDelete))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
