// Package api provides the HTTP API server and handlers for the BookCourier marketplace.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookcourier/bookcourier-server/internal/auth"
	domainerrors "github.com/bookcourier/bookcourier-server/internal/errors"
	"github.com/bookcourier/bookcourier-server/internal/http/response"
	"github.com/bookcourier/bookcourier-server/internal/ratelimit"
	"github.com/bookcourier/bookcourier-server/internal/store"
)

// DocumentCounter reports the size of the discovery index.
type DocumentCounter interface {
	DocumentCount() (uint64, error)
}

// Options holds the optional parts of the server.
type Options struct {
	// ClientDomain is the only origin allowed by CORS.
	ClientDomain string
	// Limiter throttles write requests per IP. Nil disables throttling.
	Limiter *ratelimit.KeyedRateLimiter
	// Index is checked by the health endpoint. Nil reports degraded.
	Index   DocumentCounter
	Version string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    store.Store
	services *Services
	router   *chi.Mux
	api      huma.API
	index    DocumentCounter
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, verifier auth.Verifier, opts Options, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.ClientDomain},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(identityMiddleware(verifier))
	if opts.Limiter != nil {
		router.Use(RateLimitMiddleware(opts.Limiter, logger))
	}

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", logger)
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusMethodNotAllowed,
			response.Fail(domainerrors.CodeInvalidInput, "method not allowed", nil), logger)
	})

	version := opts.Version
	if version == "" {
		version = "dev"
	}

	humaConfig := huma.DefaultConfig("BookCourier API", version)
	humaConfig.Info.Description = "Secondhand book marketplace: catalog, orders, hosted checkout, and wishlists."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:   "http",
			Scheme: "bearer",
		},
	}
	// Bodies are wrapped in the envelope instead of carrying a $schema link.
	humaConfig.CreateHooks = nil
	humaConfig.Transformers = []huma.Transformer{EnvelopeTransformer}

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:    st,
		services: services,
		router:   router,
		api:      api,
		index:    opts.Index,
		logger:   logger,
	}

	api.UseMiddleware(policyMiddleware(api, services.Users))

	s.registerHealthRoutes()
	s.registerBookRoutes()
	s.registerSearchRoutes()
	s.registerUserRoutes()
	s.registerOrderRoutes()
	s.registerCheckoutRoutes()
	s.registerWishlistRoutes()
	s.registerInvoiceRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// bearer marks an operation as taking a bearer token in the OpenAPI document.
var bearer = []map[string][]string{{"bearer": {}}}
