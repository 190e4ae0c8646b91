package kit

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const unmatchedRoute = "unmatched"

// RouteLabel names a request by its chi route pattern so metrics stay bounded
// no matter what paths clients probe. Requests that matched no route share
// one label.
func RouteLabel(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return unmatchedRoute
	}
	if rp := rc.RoutePattern(); rp != "" {
		return rp
	}
	return unmatchedRoute
}
