// Package catalog defines the closed table of upstream resource categories.
//
// Every remote resource kind (berry, move, machine, ...) is one Category,
// grouped under a Domain. The table is fixed at compile time: cache trees are
// shaped from it and the transport schedules one roster bootstrap task per
// entry. Lookups go through the table, never through reflection or
// string-built attribute access.
package catalog

// Domain groups related categories, mirroring the upstream API sections
type Domain int

const (
	DomainBerry Domain = iota
	DomainContest
	DomainEncounter
	DomainEvolution
	DomainGame
	DomainItem
	DomainLocation
	DomainMachine
	DomainMove
	DomainPokemon
)

var domainNames = map[Domain]string{
	DomainBerry:     "berry",
	DomainContest:   "contest",
	DomainEncounter: "encounter",
	DomainEvolution: "evolution",
	DomainGame:      "game",
	DomainItem:      "item",
	DomainLocation:  "location",
	DomainMachine:   "machine",
	DomainMove:      "move",
	DomainPokemon:   "pokemon",
}

func (d Domain) String() string {
	if name, ok := domainNames[d]; ok {
		return name
	}
	return "unknown"
}

// Keying selects how a category's roster keys its entries
type Keying int

const (
	// KeyByName keys the roster by the display name from the listing
	KeyByName Keying = iota
	// KeyByTrailingID keys the roster by the numeric id segment of the
	// listing URL; used by categories whose entries have no usable name
	KeyByTrailingID
)

// Category identifies one resource kind in the upstream catalog
type Category struct {
	Name   string
	Domain Domain
	Keying Keying
}

// Path returns the REST path prefix for this category
func (c Category) Path() string {
	return "/" + c.Name
}

func (c Category) String() string {
	return c.Name
}

// categories is the full fixed table. Order is stable: it determines the
// order bootstrap tasks are scheduled in.
var categories = []Category{
	{Name: "berry", Domain: DomainBerry},
	{Name: "berry-firmness", Domain: DomainBerry},
	{Name: "berry-flavor", Domain: DomainBerry},

	{Name: "contest-type", Domain: DomainContest},
	{Name: "contest-effect", Domain: DomainContest, Keying: KeyByTrailingID},
	{Name: "super-contest-effect", Domain: DomainContest, Keying: KeyByTrailingID},

	{Name: "encounter-method", Domain: DomainEncounter},
	{Name: "encounter-condition", Domain: DomainEncounter},
	{Name: "encounter-condition-value", Domain: DomainEncounter},

	{Name: "evolution-chain", Domain: DomainEvolution, Keying: KeyByTrailingID},
	{Name: "evolution-trigger", Domain: DomainEvolution},

	{Name: "generation", Domain: DomainGame},
	{Name: "pokedex", Domain: DomainGame},
	{Name: "version", Domain: DomainGame},
	{Name: "version-group", Domain: DomainGame},

	{Name: "item", Domain: DomainItem},
	{Name: "item-attribute", Domain: DomainItem},
	{Name: "item-category", Domain: DomainItem},
	{Name: "item-fling-effect", Domain: DomainItem},
	{Name: "item-pocket", Domain: DomainItem},

	{Name: "location", Domain: DomainLocation},
	{Name: "location-area", Domain: DomainLocation},
	{Name: "pal-park-area", Domain: DomainLocation},
	{Name: "region", Domain: DomainLocation},

	{Name: "machine", Domain: DomainMachine, Keying: KeyByTrailingID},

	{Name: "move", Domain: DomainMove},
	{Name: "move-ailment", Domain: DomainMove},
	{Name: "move-battle-style", Domain: DomainMove},
	{Name: "move-category", Domain: DomainMove},
	{Name: "move-damage-class", Domain: DomainMove},
	{Name: "move-learn-method", Domain: DomainMove},
	{Name: "move-target", Domain: DomainMove},

	{Name: "ability", Domain: DomainPokemon},
	{Name: "characteristic", Domain: DomainPokemon, Keying: KeyByTrailingID},
	{Name: "egg-group", Domain: DomainPokemon},
	{Name: "gender", Domain: DomainPokemon},
	{Name: "growth-rate", Domain: DomainPokemon},
	{Name: "nature", Domain: DomainPokemon},
	{Name: "pokeathlon-stat", Domain: DomainPokemon},
	{Name: "pokemon", Domain: DomainPokemon},
	{Name: "pokemon-color", Domain: DomainPokemon},
	{Name: "pokemon-form", Domain: DomainPokemon},
	{Name: "pokemon-habitat", Domain: DomainPokemon},
	{Name: "pokemon-shape", Domain: DomainPokemon},
	{Name: "pokemon-species", Domain: DomainPokemon},
	{Name: "stat", Domain: DomainPokemon},
	{Name: "type", Domain: DomainPokemon},
}

var byName = func() map[string]Category {
	m := make(map[string]Category, len(categories))
	for _, c := range categories {
		m[c.Name] = c
	}
	return m
}()

// Categories returns the full category table in stable order
// The returned slice is a copy and safe to modify
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Lookup resolves a category by its REST name
func Lookup(name string) (Category, bool) {
	c, ok := byName[name]
	return c, ok
}

// DomainCategories returns the categories belonging to one domain
func DomainCategories(d Domain) []Category {
	var out []Category
	for _, c := range categories {
		if c.Domain == d {
			out = append(out, c)
		}
	}
	return out
}
