package cache

import (
	"strconv"
	"strings"

	"github.com/catchkit/pokecat/catalog"
	"github.com/catchkit/pokecat/rest"
)

// Endpoint is one roster entry: the full name/id record for a resource,
// built from a category listing
type Endpoint struct {
	DisplayName string
	NumericID   int
	SourcePath  string
}

// LoadRoster replaces the roster wholesale from a category listing. Both the
// display name and the stringified numeric id alias the same endpoint. The
// previous roster, if any, becomes unreachable in one step; a listing that
// fails to parse leaves it untouched.
func (c *Cache[V]) LoadRoster(docs []rest.NamedResource) error {
	roster := make(map[string]Endpoint, 2*len(docs))
	endpoints := make([]Endpoint, 0, len(docs))
	ids := make([]string, 0, len(docs))
	names := make([]string, 0, len(docs))

	for _, doc := range docs {
		id, err := trailingID(doc.URL)
		if err != nil {
			return err
		}
		ep := Endpoint{DisplayName: doc.Name, NumericID: id, SourcePath: doc.URL}
		idKey := strconv.Itoa(id)
		roster[idKey] = ep
		ids = append(ids, idKey)
		if doc.Name != "" {
			roster[doc.Name] = ep
			names = append(names, doc.Name)
		}
		endpoints = append(endpoints, ep)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.roster = roster
	c.rosterKeys = append(ids, names...)
	c.endpoints = endpoints
	c.rosterLoaded = true
	return nil
}

// RosterLoaded reports whether a roster has been applied to this cache
func (c *Cache[V]) RosterLoaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rosterLoaded
}

// RosterLen returns the number of roster endpoints
func (c *Cache[V]) RosterLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.endpoints)
}

// HasRosterKey reports whether key (a display name or stringified id) is a
// known roster key; the match is case-sensitive
func (c *Cache[V]) HasRosterKey(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.roster[key]
	return ok
}

// RosterKeys returns every roster key (ids first, then names) in roster load
// order. The order is the tie-breaker for suggestion ranking.
func (c *Cache[V]) RosterKeys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.rosterKeys))
	copy(out, c.rosterKeys)
	return out
}

// Endpoint resolves a roster key to its endpoint record
func (c *Cache[V]) Endpoint(key string) (Endpoint, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ep, ok := c.roster[key]
	return ep, ok
}

// Endpoints returns the roster in load order
func (c *Cache[V]) Endpoints() []Endpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Endpoint, len(c.endpoints))
	copy(out, c.endpoints)
	return out
}

// CanonicalIdentifier returns the identifier this category keys an endpoint
// by: the display name for ordinary categories, the numeric id for
// numeric-only ones (and for entries whose listing carries no name)
func (c *Cache[V]) CanonicalIdentifier(ep Endpoint) string {
	return c.canonicalKey(ep)
}

func (c *Cache[V]) canonicalKey(ep Endpoint) string {
	if c.cat.Keying == catalog.KeyByTrailingID || ep.DisplayName == "" {
		return strconv.Itoa(ep.NumericID)
	}
	return ep.DisplayName
}

// trailingID extracts the numeric id segment from a listing URL such as
// "https://pokeapi.co/api/v2/berry/1/"
func trailingID(rawURL string) (int, error) {
	p := strings.TrimSuffix(rawURL, "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		p = p[i+1:]
	}
	id, err := strconv.Atoi(p)
	if err != nil {
		return 0, ErrMalformedListingURL(rawURL)
	}
	return id, nil
}
