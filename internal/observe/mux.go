package observe

import (
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Router is the subset of http.ServeMux that Mux decorates.
type Router interface {
	Handle(pattern string, handler http.Handler)
	http.Handler
}

// Mux registers every route with server telemetry, naming spans after the
// route pattern rather than the concrete request path.
type Mux struct {
	routes Router
}

func NewMux(routes Router) *Mux {
	return &Mux{routes: routes}
}

func (mux *Mux) Handle(pattern string, handler http.Handler) {
	method, route := SplitPattern(pattern)

	mux.routes.Handle(pattern, otelhttp.NewHandler(handler, route,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			if method == "" {
				return r.Method + " " + route
			}
			return method + " " + route
		}),
	))
}

func (mux *Mux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux.routes.ServeHTTP(w, r)
}

// SplitPattern separates the method prefix of a ServeMux pattern from its
// route. The method is empty when the pattern does not start with one.
func SplitPattern(pattern string) (method string, route string) {
	method, route, found := strings.Cut(pattern, " ")
	if !found || !isMethod(method) {
		return "", pattern
	}
	return method, strings.TrimSpace(route)
}

func isMethod(s string) bool {
	switch s {
	case http.MethodConnect, http.MethodDelete, http.MethodGet, http.MethodHead,
		http.MethodOptions, http.MethodPatch, http.MethodPost, http.MethodPut, http.MethodTrace:
		return true
	}
	return false
}
