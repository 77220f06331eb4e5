package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"hubspot-proxy/internal/handlers"
	"hubspot-proxy/internal/metrics"
	"hubspot-proxy/internal/middleware"
)

// SetupRoutes configures all HTTP routes for the application
func SetupRoutes(router *mux.Router, h *handlers.Handlers, rateLimit func(http.Handler) http.Handler) {
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware)

	// Operational endpoints are never rate limited
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	api := router.NewRoute().Subrouter()
	if rateLimit != nil {
		api.Use(rateLimit)
	}

	api.HandleFunc("/auth/login", h.HandleLogin).Methods("GET")
	api.HandleFunc("/auth/callback", h.HandleCallback).Methods("GET")
	api.HandleFunc("/auth/status", h.HandleStatus).Methods("GET")
	api.HandleFunc("/auth/logout", h.HandleLogout).Methods("POST", "GET")

	api.HandleFunc("/contacts", h.GetContacts).Methods("GET")
	api.HandleFunc("/contacts/{id}", h.GetContact).Methods("GET")
	api.HandleFunc("/accounts", h.GetAccounts).Methods("GET")
	api.HandleFunc("/accounts/{id}", h.GetAccount).Methods("GET")
}
