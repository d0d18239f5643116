// Package rest implements the transport layer for the upstream catalog API:
// routes, the HTTP client with background roster bootstrap, and the error
// taxonomy surfaced to callers.
package rest

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/catchkit/pokecat/catalog"
)

// Route identifies one remote resource by normalized path. It is an
// immutable value, compared by all three fields, and is the cache key.
type Route struct {
	Path   string
	Method string
	Query  string
}

// NewRoute builds a GET route for path with optional query parameters
func NewRoute(path string, params url.Values) Route {
	r := Route{Path: path, Method: http.MethodGet}
	if len(params) > 0 {
		r.Query = params.Encode()
	}
	return r
}

// ResourceRoute builds the route for a single resource addressed by name or id
func ResourceRoute(cat catalog.Category, identifier string) Route {
	return Route{Path: cat.Path() + "/" + identifier, Method: http.MethodGet}
}

// ListingRoute builds the roster listing route for a category. The whole
// category is requested in one page via a large limit.
func ListingRoute(cat catalog.Category, limit int) Route {
	return Route{Path: cat.Path(), Method: http.MethodGet, Query: "limit=" + strconv.Itoa(limit)}
}

// PingRoute is the no-op route used to measure latency
func PingRoute() Route {
	return Route{Path: "/", Method: http.MethodGet}
}

// URL renders the route against a base like "https://pokeapi.co/api/v2"
func (r Route) URL(base string) string {
	u := strings.TrimSuffix(base, "/") + r.Path
	if r.Query != "" {
		u += "?" + r.Query
	}
	return u
}

// Tail returns the last path segment, the caller-supplied identifier part
func (r Route) Tail() string {
	p := strings.TrimSuffix(r.Path, "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// WithTail returns a copy of the route with the last path segment replaced
func (r Route) WithTail(tail string) Route {
	p := strings.TrimSuffix(r.Path, "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		r.Path = p[:i+1] + tail
		return r
	}
	r.Path = tail
	return r
}

func (r Route) String() string {
	if r.Query != "" {
		return r.Method + " " + r.Path + "?" + r.Query
	}
	return r.Method + " " + r.Path
}

// NamedResource is one entry of a category listing response
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// listingPage is the shape of a category listing response
type listingPage struct {
	Results []NamedResource `json:"results"`
}
