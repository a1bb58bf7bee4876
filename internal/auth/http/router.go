package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tally/internal/auth/service"
	"github.com/aussiebroadwan/tally/internal/auth/store"
	"github.com/aussiebroadwan/tally/internal/auth/throttle"
	"github.com/aussiebroadwan/tally/pkg/httpx"
	"github.com/aussiebroadwan/tally/pkg/slogx"

	_ "github.com/aussiebroadwan/tally/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	throttle     throttle.Throttle

	// KeyExtractor groups requests for rate limiting. Defaults to the peer IP.
	KeyExtractor httpx.KeyExtractor

	CredentialService *service.CredentialService
	PasswordService   *service.PasswordService
	SessionService    *service.SessionService
	UserService       *service.UserService
}

func NewRouter(buildVersion string, st store.Store, th throttle.Throttle, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		throttle:     th,
		KeyExtractor: httpx.IPKeyExtractor,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSignup()
	r.registerLogin()
	r.registerPassword()
	r.registerUser()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title						Tally Authentication Service API
//	@version					0.1.0
//	@description				Account signup, login and password management for Tally.
//	@description
//	@description				Sessions are signed JWTs passed as bearer tokens.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tally
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
//	@description				Session token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) strict() httpx.Middleware {
	return httpx.RateLimitMiddleware(httpx.StrictLimit, r.KeyExtractor)
}

func (r *Router) registerSignup() {
	h := &SignupHandler{Credentials: r.CredentialService}

	r.Mux.Handle("POST /v1/auth/signup", httpx.Chain(http.HandlerFunc(h.HandleSignup), r.strict()))
	r.Mux.Handle("POST /v1/auth/signup/verify", httpx.Chain(http.HandlerFunc(h.HandleVerify), r.strict()))
	r.Mux.Handle("POST /v1/auth/signup/resend", httpx.Chain(http.HandlerFunc(h.HandleResend), r.strict()))
}

func (r *Router) registerLogin() {
	h := &LoginHandler{Credentials: r.CredentialService}

	r.Mux.Handle("POST /v1/auth/login", httpx.Chain(http.HandlerFunc(h.HandleLogin), r.strict()))
	r.Mux.Handle("POST /v1/auth/login/verify", httpx.Chain(http.HandlerFunc(h.HandleVerify), r.strict()))
}

func (r *Router) registerPassword() {
	h := &PasswordHandler{Passwords: r.PasswordService}

	r.Mux.Handle("POST /v1/auth/password/forgot", httpx.Chain(http.HandlerFunc(h.HandleForgot), r.strict()))
	r.Mux.Handle("POST /v1/auth/password/reset", httpx.Chain(http.HandlerFunc(h.HandleReset), r.strict()))

	// Code checks are brute-forceable, so the gated change endpoints stay strict.
	gate := RequireSession(r.SessionService)
	byUser := httpx.RateLimitMiddleware(httpx.StrictLimit,
		httpx.CompositeKeyExtractor(":", httpx.UserIDKeyExtractor, r.KeyExtractor))

	r.Mux.Handle("POST /v1/user/password/change-request",
		httpx.Chain(http.HandlerFunc(h.HandleChangeRequest), gate, byUser))
	r.Mux.Handle("POST /v1/user/password/change-verify",
		httpx.Chain(http.HandlerFunc(h.HandleChangeVerify), gate, byUser))
}

func (r *Router) registerUser() {
	h := &MeHandler{Users: r.UserService}

	gate := RequireSession(r.SessionService)
	byUser := httpx.RateLimitMiddleware(httpx.ModerateLimit,
		httpx.CompositeKeyExtractor(":", httpx.UserIDKeyExtractor, r.KeyExtractor))

	r.Mux.Handle("GET /v1/user/me", httpx.Chain(http.HandlerFunc(h.HandleGet), gate, byUser))
	r.Mux.Handle("PUT /v1/user/me", httpx.Chain(http.HandlerFunc(h.HandleUpdate), gate, byUser))
}

func (r *Router) registerSystem() {
	lenient := httpx.RateLimitMiddleware(httpx.LenientLimit, r.KeyExtractor)

	var th Pinger
	if r.throttle != nil {
		th = r.throttle
	}

	r.Mux.Handle("GET /livez", httpx.Chain(LivezHandler(r.startTime, r.buildVersion), lenient))
	r.Mux.Handle("GET /readyz", httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, th), lenient))
}
