package cache

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/catchkit/pokecat/rest"
)

// DecodeFunc re-decodes one persisted value. The cache itself holds no
// deserialization logic; restore re-applies the category's decode function
// per value.
type DecodeFunc[V any] func(data []byte) (V, error)

// Save serializes the cached entries, keyed by route path, as a JSON object
// with 4-space indentation. Non-ASCII text is written literally.
func (c *Cache[V]) Save(w io.Writer) error {
	c.mu.Lock()
	snapshot := make(map[string]V, len(c.entries))
	for route, el := range c.entries {
		snapshot[route.Path] = el.Value.(*cacheEntry[V]).value
	}
	c.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(snapshot); err != nil {
		return ErrSave(err)
	}
	return nil
}

// Restore reads a Save-format document and re-decodes every value through
// decode. Existing live entries win over persisted ones. Capacity grows to
// fit the restored set so a restore never silently drops entries.
func (c *Cache[V]) Restore(r io.Reader, decode DecodeFunc[V]) error {
	if decode == nil {
		return ErrNilDecode
	}

	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return ErrRestore(err)
	}
	decoded := make(map[string]V, len(raw))
	for path, payload := range raw {
		v, err := decode(payload)
		if err != nil {
			return ErrRestore(err)
		}
		decoded[path] = v
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(decoded) > c.capacity {
		c.capacity = len(decoded)
	}
	for path, v := range decoded {
		route := c.canonicalLocked(rest.Route{Path: path, Method: http.MethodGet})
		if _, ok := c.entries[route]; ok {
			continue
		}
		el := c.order.PushFront(&cacheEntry[V]{route: route, value: v})
		c.entries[route] = el
	}
	for len(c.entries) > c.capacity {
		c.evictOldestLocked()
	}
	return nil
}
