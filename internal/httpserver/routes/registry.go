package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/launchbar/internal/httpserver/deps"
	"github.com/MrSnakeDoc/launchbar/internal/httpserver/mw"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler

	// Guard builds a middleware once the dependencies are known.
	Guard func(d deps.Deps) Middleware
)

type entry struct {
	reg    Registrar
	guards []Guard
}

var registry []entry

// guarded restricts API routes to allowed clients and hosts.
var guarded = []Guard{
	func(d deps.Deps) Middleware { return mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger) },
	func(d deps.Deps) Middleware { return mw.EnforceHost(d.AllowedHosts, d.Logger) },
}

// Register a registrar with optional per-route guards.
func Register(reg Registrar, guards ...Guard) {
	registry = append(registry, entry{reg: reg, guards: guards})
}

// RegisterAll mounts every registered route on r. Called once from server.New().
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, e := range registry {
		if len(e.guards) == 0 {
			e.reg(r, d)
			continue
		}
		mws := make([]Middleware, 0, len(e.guards))
		for _, g := range e.guards {
			mws = append(mws, g(d))
		}
		e.reg(r.With(mws...), d)
	}
}
