package model

import (
	"encoding/json"
	"sort"

	"github.com/nbd-wtf/go-nostr"
)

// FilterShape identifies which single shape a Filter holds. The relay
// commander (C1) never issues a mixed filter.
type FilterShape uint8

const (
	FilterByIDs FilterShape = iota
	FilterByAuthors
)

// Filter is the abstract deletion predicate passed to the relay commander.
// It carries a set (no duplicates, order-independent) of either event ids
// or author public keys, never both.
type Filter struct {
	Shape   FilterShape
	IDs     []EventID
	Authors []PublicKey
}

// NewIDsFilter builds a by-ids Filter from a set of event ids, deduplicated
// and sorted for deterministic JSON output.
func NewIDsFilter(ids map[EventID]struct{}) Filter {
	return Filter{Shape: FilterByIDs, IDs: sortedKeys(ids)}
}

// NewAuthorsFilter builds a by-authors Filter from a set of public keys,
// deduplicated and sorted for deterministic JSON output.
func NewAuthorsFilter(authors map[PublicKey]struct{}) Filter {
	return Filter{Shape: FilterByAuthors, Authors: sortedKeys(authors)}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Empty reports whether the filter's set is empty. The aggregator and
// commander never issue an empty filter.
func (f Filter) Empty() bool {
	switch f.Shape {
	case FilterByIDs:
		return len(f.IDs) == 0
	case FilterByAuthors:
		return len(f.Authors) == 0
	default:
		return true
	}
}

// JSON renders the filter as the Nostr filter object strfry expects on its
// --filter= flag: {"ids":[...]} or {"authors":[...]}.
func (f Filter) JSON() ([]byte, error) {
	nf := nostr.Filter{}
	switch f.Shape {
	case FilterByIDs:
		nf.IDs = f.IDs
	case FilterByAuthors:
		nf.Authors = f.Authors
	}
	return json.Marshal(nf)
}
