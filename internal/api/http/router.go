package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/cinefeed/cinefeed/internal/api/service"
	"github.com/cinefeed/cinefeed/internal/api/store"
	"github.com/cinefeed/cinefeed/pkg/httpx"
	"github.com/cinefeed/cinefeed/pkg/jwtx"
	"github.com/cinefeed/cinefeed/pkg/slogx"

	_ "github.com/cinefeed/cinefeed/api/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	tokens       *jwtx.Service
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	AuthService      *service.AuthService
	UserService      *service.UserService
	MovieService     *service.MovieService
	WatchlistService *service.WatchlistService
	RatingService    *service.RatingService
}

func NewRouter(tokens *jwtx.Service, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		tokens:       tokens,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	auth := &AuthMiddleware{Tokens: r.tokens, Users: r.UserService}

	r.registerAuth(auth)
	r.registerUsers(auth)
	r.registerMovies(auth)
	r.registerWatchlists(auth)
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			CineFeed API
//	@version		0.1.0
//	@description	Movie recommendation REST API: accounts, JWT sessions, TMDB-backed
//	@description	search and discovery, watchlists, ratings and reviews.
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

func (r *Router) registerAuth(auth *AuthMiddleware) {
	h := &AuthHandler{AuthService: r.AuthService}

	// Credential endpoints carry the strict IP limit against brute force.
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// The refresh gate authenticates from the JSON body, not a header.
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.StrictLimit),
			auth.RefreshGate(),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			auth.Require(),
		),
	)
	r.Mux.Handle("GET /v1/auth/profile",
		httpx.Chain(http.HandlerFunc(h.HandleProfile),
			auth.Require(),
		),
	)
}

func (r *Router) registerUsers(auth *AuthMiddleware) {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("GET /v1/users/profile",
		httpx.Chain(http.HandlerFunc(h.HandleGetProfile),
			auth.Require(),
		),
	)
	r.Mux.Handle("PATCH /v1/users/profile",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateProfile),
			auth.Require(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/users/preferences",
		httpx.Chain(http.HandlerFunc(h.HandleUpdatePreferences),
			auth.Require(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/users/favorites/{movieId}",
		httpx.Chain(http.HandlerFunc(h.HandleAddFavorite),
			auth.Require(),
		),
	)
	r.Mux.Handle("DELETE /v1/users/favorites/{movieId}",
		httpx.Chain(http.HandlerFunc(h.HandleRemoveFavorite),
			auth.Require(),
		),
	)
}

func (r *Router) registerMovies(auth *AuthMiddleware) {
	h := &MoviesHandler{MovieService: r.MovieService, RatingService: r.RatingService}

	r.Mux.Handle("GET /v1/movies/search",
		httpx.Chain(http.HandlerFunc(h.HandleSearch),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/movies/filter",
		httpx.Chain(http.HandlerFunc(h.HandleFilter),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// Popularity and recommendations personalise when a token is present but
	// never require one.
	r.Mux.Handle("GET /v1/movies/popular",
		httpx.Chain(http.HandlerFunc(h.HandlePopular),
			auth.Optional(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/movies/recommendations",
		httpx.Chain(http.HandlerFunc(h.HandleRecommendations),
			auth.Optional(),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("GET /v1/movies/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDetails),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/movies/{id}/ratings",
		httpx.Chain(http.HandlerFunc(h.HandleListRatings),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/movies/{id}/ratings",
		httpx.Chain(http.HandlerFunc(h.HandleSubmitRating),
			auth.Require(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PUT /v1/movies/{id}/ratings",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateRating),
			auth.Require(),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/genres",
		httpx.Chain(http.HandlerFunc(h.HandleGenres),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerWatchlists(auth *AuthMiddleware) {
	h := &WatchlistsHandler{WatchlistService: r.WatchlistService}

	r.Mux.Handle("POST /v1/watchlists",
		httpx.Chain(http.HandlerFunc(h.HandleCreate), auth.Require()))
	r.Mux.Handle("GET /v1/watchlists",
		httpx.Chain(http.HandlerFunc(h.HandleList), auth.Require()))
	r.Mux.Handle("GET /v1/watchlists/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleGet), auth.Require()))
	r.Mux.Handle("PUT /v1/watchlists/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleRename), auth.Require()))
	r.Mux.Handle("DELETE /v1/watchlists/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleDelete), auth.Require()))
	r.Mux.Handle("POST /v1/watchlists/{id}/movies",
		httpx.Chain(http.HandlerFunc(h.HandleAddMovie), auth.Require()))
	r.Mux.Handle("DELETE /v1/watchlists/{id}/movies/{movieId}",
		httpx.Chain(http.HandlerFunc(h.HandleRemoveMovie), auth.Require()))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
