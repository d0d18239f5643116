// Package resolver validates caller identifiers against a category roster
// and produces similarity-ranked suggestions on a miss.
package resolver

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/catchkit/pokecat/rest"
)

const (
	// MaxSuggestions bounds the suggestion list; rosters can exceed 10,000
	// entries and the error message must stay readable
	MaxSuggestions = 10
	// SimilarityThreshold is the minimum normalized similarity for a
	// candidate to be suggested
	SimilarityThreshold = 0.5
)

// Roster is the read-only roster view the resolver needs. cache.Cache
// implements it.
type Roster interface {
	RosterLoaded() bool
	HasRosterKey(key string) bool
	RosterKeys() []string
}

// Validate checks an identifier against a category roster. It succeeds when
// no roster has been loaded yet (the roster may still be bootstrapping) or
// when the identifier matches a roster key exactly, case-sensitively.
// Otherwise it fails with a *NotFoundError carrying suggestions.
func Validate(roster Roster, identifier string, route rest.Route) error {
	if !roster.RosterLoaded() {
		return nil
	}
	if roster.HasRosterKey(identifier) {
		return nil
	}
	return &NotFoundError{
		Identifier:  identifier,
		Route:       route,
		Suggestions: Suggest(identifier, roster.RosterKeys(), MaxSuggestions, SimilarityThreshold),
	}
}

// Suggest ranks candidates by similarity to identifier, descending, keeping
// those at or above threshold and at most limit of them. Ties keep the
// candidates' original order.
func Suggest(identifier string, candidates []string, limit int, threshold float64) []string {
	type scored struct {
		key string
		sim float64
	}
	matches := make([]scored, 0, limit)
	for _, key := range candidates {
		if sim := Similarity(identifier, key); sim >= threshold {
			matches = append(matches, scored{key: key, sim: sim})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].sim > matches[j].sim
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.key
	}
	return out
}

// Similarity is the case-insensitive normalized edit-distance similarity of
// two strings: 1 for equal, 0 for nothing in common.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1
	}
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
