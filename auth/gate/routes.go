package gate

import (
	"sync"

	"github.com/gorilla/mux"
)

// RouteMarker tells whether a route requires authentication.
type RouteMarker interface {
	RequiresAuthentication(route string) bool
}

// RouteTable is a RouteMarker built at route registration time.
//
// Routes are identified by name. Every route requires authentication unless marked public,
// including unnamed routes.
type RouteTable struct {
	public map[string]struct{}

	mu sync.RWMutex
}

// NewRouteTable returns a RouteTable with the given routes marked public.
func NewRouteTable(public ...string) *RouteTable {
	t := &RouteTable{
		public: make(map[string]struct{}, len(public)),
	}

	for _, name := range public {
		t.MarkPublic(name)
	}

	return t
}

// MarkPublic exempts the named route from authentication.
//
// It panics if name is empty.
func (t *RouteTable) MarkPublic(name string) {
	if name == "" {
		panic("marking route public: route name is empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.public[name] = struct{}{}
}

// Public marks route public and returns it. Route must be named.
//
//	table.Public(router.Path("/login").Methods("POST").Name("login").HandlerFunc(h))
func (t *RouteTable) Public(route *mux.Route) *mux.Route {
	t.MarkPublic(route.GetName())

	return route
}

// RequiresAuthentication implements RouteMarker.
func (t *RouteTable) RequiresAuthentication(route string) bool {
	if route == "" {
		return true
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	_, public := t.public[route]

	return !public
}
