package handler

import (
	"net/http"

	"catalog-annotations/internal/config"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

const requestIDHeader = "X-Request-ID"

// NewRouter creates a new HTTP router with all routes configured
func NewRouter(container *config.Container) http.Handler {
	router := mux.NewRouter()
	router.Use(requestID)

	// API prefix
	api := router.PathPrefix("/api/v1").Subrouter()

	// Health check endpoint (no auth required)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "catalog-annotations"})
	}).Methods("GET")

	// Initialize handlers
	authHandler := NewAuthHandler()
	catalogHandler := NewCatalogHandler(container)
	annotationHandler := NewAnnotationHandler(container)

	// Protected routes (require authentication)
	protected := api.PathPrefix("").Subrouter()
	protected.Use(NewAuthMiddleware(container.AuthService, container.Logger).Middleware)

	protected.HandleFunc("/auth/profile", authHandler.GetProfile).Methods("GET")
	protected.HandleFunc("/auth/validate", authHandler.ValidateToken).Methods("GET")

	// Catalog routes; stream must be registered before {name}.
	protected.HandleFunc("/catalog", catalogHandler.List).Methods("GET")
	protected.HandleFunc("/catalog/stream", catalogHandler.Stream).Methods("GET")
	protected.HandleFunc("/catalog/{name}", catalogHandler.Detail).Methods("GET")
	protected.HandleFunc("/catalog/{name}/{kind:favorite|dislike}/toggle", catalogHandler.Toggle).Methods("POST")

	protected.HandleFunc("/annotations/{kind}", annotationHandler.List).Methods("GET")

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:8081", // Expo dev server
			"http://localhost:19006",
			"http://localhost:3000",
		},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			requestIDHeader,
		},
		ExposedHeaders: []string{
			requestIDHeader,
		},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	})

	return c.Handler(router)
}

// requestID echoes the caller's request id or assigns a new one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
			r.Header.Set(requestIDHeader, id)
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}
