package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/lostfound/internal/auth/service"
	"github.com/aussiebroadwan/lostfound/internal/auth/store"
	"github.com/aussiebroadwan/lostfound/internal/auth/verification"
	"github.com/aussiebroadwan/lostfound/pkg/authsdk"
	"github.com/aussiebroadwan/lostfound/pkg/httpx"
	"github.com/aussiebroadwan/lostfound/pkg/jwtx"
	"github.com/aussiebroadwan/lostfound/pkg/slogx"
	"github.com/go-chi/cors"

	_ "github.com/aussiebroadwan/lostfound/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware
	handler     http.Handler

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	dev          bool

	AuthService      *service.AuthService
	TwoFactorService *service.TwoFactorService
	UserService      *service.UserService
	Verification     verification.Verifier

	// AllowedOrigins enables CORS with credentials for these origins.
	AllowedOrigins []string

	// Cache is pinged by /readyz when set.
	Cache Pinger
}

// NewRouter creates a router. verifier checks access tokens. dev echoes
// internal error messages to clients.
func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	dev bool,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		dev:          dev,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers every route. Call it once after the services are set.
func (r *Router) ApplyRoutes() {
	if len(r.AllowedOrigins) > 0 {
		r.middlewares = append(r.middlewares, cors.Handler(cors.Options{
			AllowedOrigins:   r.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type", slogx.RequestIDHeader},
			ExposedHeaders:   []string{slogx.RequestIDHeader, "Retry-After"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.registerAuth()
	r.registerProfile()
	r.registerTwoFactor()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())

	r.handler = httpx.Chain(r.Mux, r.middlewares...)
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Lost & Found Authentication Service API
//	@version					0.1.0
//	@description				Password login with cookie sessions and optional TOTP two-factor authentication.
//	@description
//	@description				Sessions are two HttpOnly cookies: a short-lived accessToken and a refreshToken.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/lostfound
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						accessToken
//	@description				HS256 access token set by /auth/login or /auth/login-2fa.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.handler == nil {
		httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
		return
	}
	r.handler.ServeHTTP(w, req)
}

func (r *Router) authn() httpx.Middleware {
	return httpx.CookieAuthnMiddleware(authsdk.AccessTokenCookie, r.verifier)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService: r.AuthService,
		Verifier:    r.Verification,
		Dev:         r.dev,
	}

	// Credential endpoints - strict limit per IP and account
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)
	r.Mux.Handle("POST /auth/login-2fa",
		httpx.Chain(http.HandlerFunc(h.HandleLoginTwoFactor),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// Session upkeep - lenient
	r.Mux.Handle("POST /auth/refresh-token",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerProfile() {
	h := &ProfileHandler{UserService: r.UserService, Dev: r.dev}

	r.Mux.Handle("GET /auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			r.authn(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PUT /auth/profile",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.authn(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerTwoFactor() {
	h := &TwoFactorHandler{TwoFactorService: r.TwoFactorService, Dev: r.dev}

	secured := func(fn http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(fn,
			r.authn(),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("POST /2fa/setup", secured(h.HandleSetup, httpx.ModerateLimit))
	r.Mux.Handle("POST /2fa/enable", secured(h.HandleEnable, httpx.StrictLimit))
	r.Mux.Handle("POST /2fa/verify", secured(h.HandleVerify, httpx.StrictLimit))
	r.Mux.Handle("POST /2fa/disable", secured(h.HandleDisable, httpx.StrictLimit))
	r.Mux.Handle("POST /2fa/regenerate-backup-codes", secured(h.HandleRegenerateBackupCodes, httpx.StrictLimit))
	r.Mux.Handle("GET /2fa/status", secured(h.HandleStatus, httpx.LenientLimit))
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.Cache),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
