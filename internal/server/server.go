/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and wires the
state controller, the notification hub and the preference store into
the echo router.
*/
package server

import (
	"fmt"
	"net/http"
	"time"

	"PalavraCerta/internal/database"
	"PalavraCerta/internal/notify"
	"PalavraCerta/internal/palavra"
	"PalavraCerta/internal/store"
	"github.com/gorilla/sessions"
)

// Deps are the services the HTTP layer needs.
type Deps struct {
	Controller *palavra.Controller
	Hub        *notify.Hub
	Store      *store.Store

	// DB is nil unless the postgres store driver is in use.
	DB database.Service

	// Sessions signs the session cookie.
	Sessions sessions.Store

	RateLimitRPS float64
	AllowOrigins []string
}

// Server defines the configuration and dependencies for the HTTP service.
type Server struct {
	// port specifies the TCP port the server will listen on.
	port int

	ctrl     *palavra.Controller
	hub      *notify.Hub
	store    *store.Store
	db       database.Service
	sessions sessions.Store

	rateLimitRPS float64
	allowOrigins []string
	startTime    time.Time
}

// New builds a Server from its dependencies.
func New(port int, deps Deps) *Server {
	origins := deps.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"https://*", "http://*"}
	}
	hub := deps.Hub
	if hub == nil {
		hub = notify.NewHub(origins...)
	}
	return &Server{
		port:         port,
		ctrl:         deps.Controller,
		hub:          hub,
		store:        deps.Store,
		db:           deps.DB,
		sessions:     deps.Sessions,
		rateLimitRPS: deps.RateLimitRPS,
		allowOrigins: origins,
		startTime:    time.Now(),
	}
}

// NewServer returns a configured *http.Server serving the application routes
// with production network timeouts.
func NewServer(port int, deps Deps) *http.Server {
	app := New(port, deps)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", app.port),
		Handler:      app.RegisterRoutes(),
		IdleTimeout:  time.Minute,      // Time to wait for the next request on keep-alive connections.
		ReadTimeout:  10 * time.Second, // Maximum duration for reading the entire request.
		WriteTimeout: 30 * time.Second, // Maximum duration before timing out writes of the response.
	}
}
