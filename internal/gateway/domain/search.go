package domain

import (
	"encoding/json"
	"slices"
)

// SearchType is the kind of upstream search being requested.
type SearchType string

const (
	SearchFlights  SearchType = "flights"
	SearchHotels   SearchType = "hotels"
	SearchPackages SearchType = "packages"
)

// SearchTypes lists every type the gateway accepts.
var SearchTypes = []SearchType{SearchFlights, SearchHotels, SearchPackages}

func (t SearchType) Valid() bool { return slices.Contains(SearchTypes, t) }

// Scope returns the scope a credential needs to run this search type.
func (t SearchType) Scope() string { return "search:" + string(t) }

// SearchResult is what the upstream executor returns. Payload is opaque to
// the gateway.
type SearchResult struct {
	Payload   json.RawMessage `json:"payload"`
	Providers []string        `json:"providers,omitempty"`
	Excluded  map[string]int  `json:"excluded,omitempty"`
}
