package rest

import (
	"errors"
	"fmt"
)

// ErrClientClosed is returned when operations are attempted on a closed client
var ErrClientClosed = errors.New("rest: client is closed")

// StatusClass buckets upstream HTTP status codes. Novel codes fall into
// ClassUnknown so new upstream behavior degrades gracefully.
type StatusClass int

const (
	ClassUnknown StatusClass = iota
	ClassBadRequest
	ClassUnauthorized
	ClassForbidden
	ClassNotFound
	ClassMethodNotAllowed
)

var classNames = map[StatusClass]string{
	ClassUnknown:          "unknown error",
	ClassBadRequest:       "bad request",
	ClassUnauthorized:     "unauthorized",
	ClassForbidden:        "forbidden",
	ClassNotFound:         "not found",
	ClassMethodNotAllowed: "method not allowed",
}

func (c StatusClass) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return classNames[ClassUnknown]
}

// classify maps a status code to its bucket
func classify(status int) StatusClass {
	switch status {
	case 400:
		return ClassBadRequest
	case 401:
		return ClassUnauthorized
	case 403:
		return ClassForbidden
	case 404:
		return ClassNotFound
	case 405:
		return ClassMethodNotAllowed
	default:
		return ClassUnknown
	}
}

// HTTPError is a non-2xx response from the upstream API
type HTTPError struct {
	Status int
	Reason string
	Route  Route
}

// NewHTTPError builds an HTTPError for the given status and route
func NewHTTPError(status int, reason string, route Route) *HTTPError {
	return &HTTPError{Status: status, Reason: reason, Route: route}
}

// Class returns the status bucket of this error
func (e *HTTPError) Class() StatusClass {
	return classify(e.Status)
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("rest: %s: %s | %s | %d", e.Class(), e.Reason, e.Route, e.Status)
}

// AssetError is a failed binary fetch: non-2xx response or a content type
// outside the allow-list. It is deliberately distinct from HTTPError so
// callers can special-case missing media.
type AssetError struct {
	URL         string
	Status      int
	ContentType string
	Reason      string
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("rest: asset not found: %s | %s | %d | %s", e.Reason, e.URL, e.Status, e.ContentType)
}

// ErrNilSink is returned when a Client is built without a roster sink
var ErrNilSink = errors.New("rest: roster sink must not be nil")

// ErrInvalidBaseURL returns an error for an unparsable base URL
func ErrInvalidBaseURL(base string, err error) error {
	return fmt.Errorf("rest: invalid base url %q: %w", base, err)
}

// ErrInvalidPageLimit returns an error for an invalid listing page limit
func ErrInvalidPageLimit(limit int) error {
	return fmt.Errorf("rest: invalid page limit: %d (must be >= 1)", limit)
}

// ErrInvalidAssetCacheSize returns an error for an invalid asset cache size
func ErrInvalidAssetCacheSize(size int) error {
	return fmt.Errorf("rest: invalid asset cache size: %d (must be >= 1)", size)
}

// ErrRequest wraps a transport-level failure (DNS, connection, body read)
func ErrRequest(route Route, err error) error {
	return fmt.Errorf("rest: request failed: %s: %w", route, err)
}

// ErrDecodeListing wraps a malformed category listing payload
func ErrDecodeListing(category string, err error) error {
	return fmt.Errorf("rest: decoding %s listing: %w", category, err)
}
