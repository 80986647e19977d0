package http

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/aussiebroadwan/circle/api/social" // Swagger docs
	"github.com/aussiebroadwan/circle/internal/social/authn"
	"github.com/aussiebroadwan/circle/internal/social/metrics"
	"github.com/aussiebroadwan/circle/internal/social/push"
	"github.com/aussiebroadwan/circle/internal/social/service"
	"github.com/aussiebroadwan/circle/internal/social/sessioncache"
	"github.com/aussiebroadwan/circle/internal/social/store"
	"github.com/aussiebroadwan/circle/pkg/httpx"
	"github.com/aussiebroadwan/circle/pkg/slogx"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	cache sessioncache.Cache
	gate  *authn.Gate

	UserService         *service.UserService
	SessionService      *service.SessionService
	FollowService       *service.FollowService
	RatingService       *service.RatingService
	NotificationService *service.NotificationService

	// Optional pieces; nil disables the matching endpoint.
	Hub      *push.Hub
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer

	Cookies            Cookies
	PushOriginPatterns []string

	// HandoffSecret is shared with the external issuer. Empty rejects every
	// handoff.
	HandoffSecret string
}

func NewRouter(
	buildVersion string,
	st store.Store,
	cache sessioncache.Cache,
	gate *authn.Gate,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		cache:        cache,
		gate:         gate,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerFollows()
	r.registerRatings()
	r.registerNotifications()
	r.registerPush()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Circle Social Service API
//	@version		0.1.0
//	@description	Accounts, follow graph, ratings and notifications for the circle community.
//	@description
//	@description	Sessions are carried in the accessToken and refreshToken cookies. Requests relayed by the
//	@description	external identity provider may instead send a bearer token with the X-User-Id header.
//
//	@contact.name	AussieBroadWAN Team
//	@contact.url	https://github.com/aussiebroadwan/circle
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host			localhost:8080
//	@BasePath		/
//
//	@schemes		http https
//
//	@securityDefinitions.apikey	CookieAuth
//	@in							cookie
//	@name						accessToken
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// handle registers h under pattern, recording metrics with the pattern as
// the route label.
func (r *Router) handle(pattern string, h http.Handler, mw ...httpx.Middleware) {
	chain := append([]httpx.Middleware{r.Metrics.Middleware(pattern)}, mw...)
	r.Mux.Handle(pattern, httpx.Chain(h, chain...))
}

func (r *Router) registerUsers() {
	h := &UserHandler{
		Users:    r.UserService,
		Sessions: r.SessionService,
		Cookies:  r.Cookies,
	}

	// Credential and email flows - strict, keyed by IP and the email field
	r.handle("POST /user/signup", http.HandlerFunc(h.HandleSignup),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)
	r.handle("POST /user/login", http.HandlerFunc(h.HandleLogin),
		httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
	)
	r.handle("POST /user/email-auth", http.HandlerFunc(h.HandleSendEmailAuth),
		httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
	)
	r.handle("POST /user/email-auth/check", http.HandlerFunc(h.HandleCheckEmailAuth),
		httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
	)
	r.handle("POST /user/password-reset", http.HandlerFunc(h.HandleResetPassword),
		httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
	)

	// Refresh runs behind the refresh gate only
	r.handle("POST /user/refresh", http.HandlerFunc(h.HandleRefresh),
		r.gate.Refresh(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)

	r.handle("POST /user/logout", http.HandlerFunc(h.HandleLogout),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.handle("GET /user/info", http.HandlerFunc(h.HandleInfo),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
	r.handle("GET /user/{userId}", http.HandlerFunc(h.HandleProfile),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
	r.handle("PATCH /user/edit", http.HandlerFunc(h.HandleEdit),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.handle("PATCH /user/delete", http.HandlerFunc(h.HandleDelete),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.StrictLimit),
	)

	// External issuer handoff - strict by IP, issuer only
	r.handle("POST /auth/spring-auth",
		&HandoffHandler{Sessions: r.SessionService, Cookies: r.Cookies},
		httpx.RateLimitByIP(httpx.StrictLimit),
		authn.RequireIssuer(r.HandoffSecret),
	)
}

func (r *Router) registerFollows() {
	h := &FollowHandler{Follows: r.FollowService}

	r.handle("GET /follow/{userId}/followers", http.HandlerFunc(h.HandleFollowers),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
	r.handle("GET /follow/{userId}/following", http.HandlerFunc(h.HandleFollowing),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
	r.handle("POST /follow/{userId}", http.HandlerFunc(h.HandleCreate),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.handle("DELETE /follow/{userId}/unfollow", http.HandlerFunc(h.HandleUnfollow),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.handle("DELETE /follow/{userId}/unfollower", http.HandlerFunc(h.HandleRemoveFollower),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
}

func (r *Router) registerRatings() {
	h := &RatingHandler{Ratings: r.RatingService}

	r.handle("POST /rating", http.HandlerFunc(h.HandleCreate),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.handle("PATCH /rating/{ratingId}", http.HandlerFunc(h.HandleEdit),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.handle("GET /rating/{ratedUserId}", http.HandlerFunc(h.HandleGet),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
	r.handle("DELETE /rating/{userId}", http.HandlerFunc(h.HandleDelete),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
}

func (r *Router) registerNotifications() {
	h := &NotificationHandler{Notifications: r.NotificationService}

	r.handle("GET /notification", http.HandlerFunc(h.HandleList),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
	r.handle("GET /notification/unread-count", http.HandlerFunc(h.HandleUnreadCount),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.LenientLimit),
	)
	r.handle("PATCH /notification/{id}/read", http.HandlerFunc(h.HandleMarkRead),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.handle("DELETE /notification/{id}", http.HandlerFunc(h.HandleDelete),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
	r.handle("DELETE /notification", http.HandlerFunc(h.HandleDeleteAll),
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
}

func (r *Router) registerPush() {
	if r.Hub == nil {
		return
	}
	r.handle("GET /ws",
		&push.Handler{Hub: r.Hub, OriginPatterns: r.PushOriginPatterns},
		r.gate.Access(),
		httpx.RateLimitByUser(httpx.ModerateLimit),
	)
}

func (r *Router) registerSystem() {
	// Health and scrape endpoints - monitoring polls often
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cache, r.Hub),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	if r.Gatherer != nil {
		r.Mux.Handle("GET /metrics",
			httpx.Chain(metrics.Handler(r.Gatherer),
				httpx.RateLimitByIP(httpx.PublicLimit),
			),
		)
	}
}
