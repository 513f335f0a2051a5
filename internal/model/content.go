package model

import "time"

// ContentItem is a recommendation record in the discovery corpus.
// Counters are denormalized from engagement rows and are only mutated
// through the engagement repository, never assigned directly.
type ContentItem struct {
	ItemID      string    `json:"itemId"`
	AuthorID    string    `json:"authorId"`
	Title       string    `json:"title"`
	Body        string    `json:"body,omitempty"`
	Tags        []string  `json:"tags"`
	Likes       int       `json:"likes"`
	Saves       int       `json:"saves"`
	Comments    int       `json:"comments"`
	Reshares    int       `json:"reshares"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// ContentResponse is the API shape for a ranked or searched item.
type ContentResponse struct {
	ItemID        string    `json:"itemId"`
	AuthorID      string    `json:"authorId"`
	Title         string    `json:"title"`
	Tags          []string  `json:"tags"`
	Likes         int       `json:"likes"`
	Saves         int       `json:"saves"`
	Comments      int       `json:"comments"`
	Reshares      int       `json:"reshares"`
	// Pointers so a real score of exactly 0 still serializes; nil means
	// the score was not computed for this response.
	TrendingScore *float64  `json:"trendingScore,omitempty"`
	TrustScore    *float64  `json:"trustScore,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SearchFilters are the AND-combined predicates for a discovery query.
// Zero values mean "not filtered on".
type SearchFilters struct {
	Text          string   `json:"text"`
	AuthorID      string   `json:"authorId"`
	Tags          []string `json:"tags"`
	MinTrustScore float64  `json:"minTrustScore"`
	HasMinTrust   bool     `json:"-"`
	Offset        int      `json:"offset"`
	Limit         int      `json:"limit"`
}

// SearchResponse is a paginated discovery result.
type SearchResponse struct {
	Items      []ContentResponse `json:"items"`
	TotalCount int               `json:"totalCount"`
	HasMore    bool              `json:"hasMore"`
}

// StatsResponse is the API response for global platform statistics.
type StatsResponse struct {
	TotalItems       int            `json:"totalItems"`
	TotalRequests    int            `json:"totalRequests"`
	TotalEngagements int            `json:"totalEngagements"`
	TotalViewers     int            `json:"totalViewers"`
	ActiveViewers24h int            `json:"activeViewers24h"`
	TopTags          map[string]int `json:"topTags"`
}
