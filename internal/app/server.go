package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"hubspot-proxy/internal/handlers"
	"hubspot-proxy/internal/server"
)

// Handler builds the routed HTTP handler for the app
func (app *App) Handler() http.Handler {
	opts := []handlers.Option{}
	if app.Storage != nil {
		opts = append(opts, handlers.WithHealthCheck("storage", app.Storage))
	}
	if app.RedisClient != nil {
		opts = append(opts, handlers.WithHealthCheck("redis", app.RedisClient))
	}

	h := handlers.New(app.Gateway, app.Contacts, app.Accounts, opts...)

	router := mux.NewRouter()
	SetupRoutes(router, h, app.InitializeRateLimiter())
	return router
}

// RunServer creates the HTTP server with all handlers configured
func (app *App) RunServer() *server.Server {
	return server.New(app.Handler(), app.Config.Port, app.Config.TLSCertFile, app.Config.TLSKeyFile)
}
