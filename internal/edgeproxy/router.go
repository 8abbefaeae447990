package edgeproxy

import (
	"context"
	"errors"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/andrebq/authbox/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

var (
	methods = []string{
		"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS", "HEAD",
	}
)

// AsHandler sends /api/v1/ calls to apiCalls and everything else to userCalls.
func AsHandler(ctx context.Context, apiCalls *url.URL, userCalls *url.URL) (http.Handler, error) {
	if apiCalls == nil || userCalls == nil {
		return nil, errors.New("edgeproxy: both upstreams are required")
	}
	log := logutil.GetOrDefault(ctx)
	router := httprouter.New()

	apiProxy := httputil.NewSingleHostReverseProxy(apiCalls)
	userProxy := httputil.NewSingleHostReverseProxy(userCalls)
	for _, p := range []*httputil.ReverseProxy{apiProxy, userProxy} {
		p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			log := logutil.GetOrDefault(r.Context())
			log.Error().Err(err).Str("path", r.URL.Path).Msg("Upstream unavailable")
			w.WriteHeader(http.StatusBadGateway)
		}
	}

	for _, m := range methods {
		router.Handler(m, "/api/v1/*rest", apiProxy)
	}
	router.RedirectTrailingSlash = false
	router.HandleMethodNotAllowed = false
	// delegate to userProxy if not found
	router.NotFound = userProxy

	return logutil.Middleware(log, router), nil
}
