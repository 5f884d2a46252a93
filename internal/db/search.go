package db

import "encoding/json"

// DocQuery is a rendered search request.
type DocQuery struct {
	Index string
	// Body is the backend-native request body.
	Body map[string]any
}

// DocResult is the output of a search request.
type DocResult struct {
	// Total counts every match, not only the returned window.
	Total int
	Hits  []DocHit
}

// DocHit is a single document hit.
type DocHit struct {
	ID     string
	Score  float64
	Source json.RawMessage
}
