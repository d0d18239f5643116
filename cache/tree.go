package cache

import (
	"encoding/json"

	"github.com/catchkit/pokecat/catalog"
	"github.com/catchkit/pokecat/rest"
)

// Tree composes one Cache per catalog category, grouped by domain, under a
// shared capacity policy with per-domain override. Its shape is fixed at
// construction from the catalog table, and every construction allocates
// fresh leaves: a leaf is never shared between two trees.
//
// Tree implements rest.RosterSink, so the transport can feed bootstrap
// listings straight into it.
type Tree struct {
	leaves map[catalog.Category]*Cache[json.RawMessage]
}

// NewTree builds a tree with every leaf at the given capacity
func NewTree(capacity int) (*Tree, error) {
	if capacity < 1 {
		return nil, ErrInvalidCapacity(capacity)
	}
	leaves := make(map[catalog.Category]*Cache[json.RawMessage])
	for _, cat := range catalog.Categories() {
		leaf, err := New[json.RawMessage](cat, capacity)
		if err != nil {
			return nil, err
		}
		leaves[cat] = leaf
	}
	return &Tree{leaves: leaves}, nil
}

// Leaf returns the cache for one category
func (t *Tree) Leaf(cat catalog.Category) (*Cache[json.RawMessage], bool) {
	leaf, ok := t.leaves[cat]
	return leaf, ok
}

// SetSize pushes a new shared capacity to every leaf. Existing overflow is
// pruned lazily by each leaf on its next insert.
func (t *Tree) SetSize(capacity int) error {
	if capacity < 1 {
		return ErrInvalidCapacity(capacity)
	}
	for _, leaf := range t.leaves {
		if err := leaf.Resize(capacity); err != nil {
			return err
		}
	}
	return nil
}

// SetDomainSize overrides the capacity for one domain's leaves only
func (t *Tree) SetDomainSize(d catalog.Domain, capacity int) error {
	if capacity < 1 {
		return ErrInvalidCapacity(capacity)
	}
	for cat, leaf := range t.leaves {
		if cat.Domain != d {
			continue
		}
		if err := leaf.Resize(capacity); err != nil {
			return err
		}
	}
	return nil
}

// LoadDocuments dispatches a category listing to the matching leaf's roster
func (t *Tree) LoadDocuments(cat catalog.Category, docs []rest.NamedResource) error {
	leaf, ok := t.leaves[cat]
	if !ok {
		return ErrUnknownCategory(cat.Name)
	}
	return leaf.LoadRoster(docs)
}
