package model

// Engagement kinds stored per (item, viewer) pair.
const (
	EngagementLike     = "like"
	EngagementBookmark = "bookmark"
)

// EngagementState is a viewer's relationship to one item, rebuilt from
// server truth at session start and reconciled after every toggle.
type EngagementState struct {
	HasLiked      bool `json:"hasLiked"`
	HasBookmarked bool `json:"hasBookmarked"`
}

// ToggleRequest is the API request body for like/bookmark toggles.
type ToggleRequest struct {
	ItemID   string `json:"itemId"`
	ViewerID string `json:"viewerId"`
}

// ToggleLikeResponse carries the authoritative state after a like
// toggle. Callers reconcile their optimistic local state against it.
type ToggleLikeResponse struct {
	Count int  `json:"count"`
	Liked bool `json:"liked"`
}

// ToggleBookmarkResponse carries the authoritative state after a
// bookmark toggle.
type ToggleBookmarkResponse struct {
	Bookmarked bool `json:"bookmarked"`
}
