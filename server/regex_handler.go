// A simple http.Handler that can match wildcard routes, and call the
// appropriate handler.
package server

import (
	"net/http"
	"regexp"
	"strings"
)

type route struct {
	pattern *regexp.Regexp
	methods []string
	handler http.Handler
}

// RegexpHandler routes requests to the first route whose pattern matches the
// path. A matching route with the wrong method gets a 405, and no matching
// route gets a 404.
type RegexpHandler struct {
	routes []*route
}

func (h *RegexpHandler) Handler(pattern *regexp.Regexp, methods []string, handler http.Handler) {
	h.routes = append(h.routes, &route{
		pattern: pattern,
		methods: methods,
		handler: handler,
	})
}

func (h *RegexpHandler) HandleFunc(pattern *regexp.Regexp, methods []string, handler func(http.ResponseWriter, *http.Request)) {
	h.Handler(pattern, methods, http.HandlerFunc(handler))
}

func (h *RegexpHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, route := range h.routes {
		if !route.pattern.MatchString(r.URL.Path) {
			continue
		}
		upperMethod := strings.ToUpper(r.Method)
		for _, method := range route.methods {
			if strings.ToUpper(method) == upperMethod {
				route.handler.ServeHTTP(w, r)
				return
			}
		}
		allow := strings.Join(append(append([]string{}, route.methods...), "OPTIONS"), ", ")
		w.Header().Set("Allow", allow)
		if upperMethod == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, new405(r))
		return
	}
	notFound(w, new404(r))
}
