package router

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lazythumb/lazythumb/internal/middleware"
	"github.com/lazythumb/lazythumb/internal/middleware/metrics"
	"github.com/lazythumb/lazythumb/internal/setup"
)

// New creates and configures the mux router with all the routes.
func New(deps *setup.Dependencies) *mux.Router {
	r := mux.NewRouter()

	// Gzip helps the JSON API; already-compressed image payloads pass
	// through untouched.
	r.Use(handlers.CompressHandler)
	r.Use(middleware.SecurityHeaders(deps.Config.Public.Http.SecureCookies))
	r.Use(metrics.Middleware)

	h := deps.Handler
	authMw := deps.AuthMiddleware

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/health", h.Health).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/sizes", h.GetSizes).Methods("GET")
	v1.Handle("/media", authMw.NeedAuth()(http.HandlerFunc(h.UploadMedia))).Methods("POST")
	v1.HandleFunc("/media/{id}", h.GetMedia).Methods("GET")
	v1.Handle("/media/{id}", authMw.AdminOnly()(http.HandlerFunc(h.DeleteMedia))).Methods("DELETE")

	// Public media files. Misses inside this prefix are what trigger
	// on-demand variant generation.
	r.PathPrefix(deps.MediaPrefix + "/").HandlerFunc(h.ServeMedia).Methods("GET", "HEAD")

	return r
}
