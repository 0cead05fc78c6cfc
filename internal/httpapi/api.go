// Package httpapi is the HTTP layer: the ordered request pipeline
// (admission, containment, authentication, logging, authorization) and the
// login + user CRUD handlers behind it.
package httpapi

import (
	"net/http"

	"github.com/LeiMuu/UserManagementAPI/internal/auth"
	"github.com/LeiMuu/UserManagementAPI/internal/gate"
	"github.com/LeiMuu/UserManagementAPI/internal/obs"
	"github.com/LeiMuu/UserManagementAPI/internal/users"
)

// Options tunes the parts of the API that are not injected collaborators.
type Options struct {
	Version string
	// Login throttle, per client IP.
	LoginPerSecond int
	LoginBurst     int
}

// API wires the pipeline stages around a ServeMux.
type API struct {
	mux      *http.ServeMux
	store    users.Store
	tokens   *auth.TokenService
	verifier auth.CredentialVerifier
	gate     *gate.Gate
	version  string
}

// New registers all routes. Protected handlers are wrapped with the
// authorization stage here so the protected-route set is visible in one
// place.
func New(store users.Store, tokens *auth.TokenService, verifier auth.CredentialVerifier, g *gate.Gate, opts Options) *API {
	a := &API{
		mux:      http.NewServeMux(),
		store:    store,
		tokens:   tokens,
		verifier: verifier,
		gate:     g,
		version:  opts.Version,
	}

	perSecond, burst := opts.LoginPerSecond, opts.LoginBurst
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 5
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.Handle("/auth/login", RateLimit(http.HandlerFunc(a.handleLogin), burst, perSecond))

	a.mux.HandleFunc("/users", requireIdentity(a.handleUsersCollection))
	a.mux.HandleFunc("/users/", requireIdentity(a.handleUserResource))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "resource not found")
	})

	return a
}

// Handler returns the full pipeline. Stage order is a fixed, visible list:
// admission must wrap all other work, containment must wrap anything that
// can panic, authentication must precede authorization and dispatch, and
// logging wraps the handler so it observes the final status code.
func (a *API) Handler() http.Handler {
	stages := []Middleware{
		obs.Instrument,
		a.Admission,
		Recover,
		RequestID,
		a.withAuth,
		LoggingJSON,
	}
	return chain(a.mux, stages...)
}

// Healthz is the liveness probe.
func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "user-api",
		"version": a.version,
	})
}
